package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seriesResponse(entity, facet string, observations ...Observation) SeriesResponse {
	return SeriesResponse{
		Data: map[string]map[string]Series{
			PopulationVariable: {entity: {Observations: observations, Facet: facet}},
		},
		Facets: FacetStore{facet: {ImportName: facet, Unit: "Person"}},
	}
}

func TestDenominatorSet_PrefersNumeratorFacet(t *testing.T) {
	def := seriesResponse("geoId/06", "census", obs("2020", 100))
	set := DenominatorSet{
		ByFacet: map[string]SeriesResponse{"wb": seriesResponse("geoId/06", "wb", obs("2020", 200))},
		Default: &def,
	}

	den, ok := set.Select(PopulationVariable, "geoId/06", "wb")
	require.True(t, ok)
	assert.Equal(t, 200.0, den.Series.Observations[0].Float())
	assert.Equal(t, "wb", den.Facet.ImportName)
	assert.Equal(t, PopulationVariable, den.Variable)
}

func TestDenominatorSet_FallsBackToDefault(t *testing.T) {
	def := seriesResponse("geoId/06", "census", obs("2020", 100))
	set := DenominatorSet{
		ByFacet: map[string]SeriesResponse{"wb": seriesResponse("geoId/06", "wb")},
		Default: &def,
	}

	den, ok := set.Select(PopulationVariable, "geoId/06", "wb")
	require.True(t, ok, "empty per-facet series falls back")
	assert.Equal(t, "census", den.Facet.ImportName)

	den, ok = set.Select(PopulationVariable, "geoId/06", "unknown")
	require.True(t, ok)
	assert.Equal(t, "census", den.Facet.ImportName)
}

func TestDenominatorSet_NoData(t *testing.T) {
	def := seriesResponse("geoId/06", "census", obs("2020", 100))
	set := DenominatorSet{Default: &def}

	_, ok := set.Select(PopulationVariable, "geoId/36", "")
	assert.False(t, ok)

	_, ok = DenominatorSet{}.Select(PopulationVariable, "geoId/06", "census")
	assert.False(t, ok)
	assert.True(t, DenominatorSet{}.Empty())
}
