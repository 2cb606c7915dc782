package domain

// PopulationVariable is the denominator used for per-capita values.
const PopulationVariable = "Count_Person"

// DenominatorSet holds the denominator series responses resolved for a
// numerator response: one per numerator facet, plus an unfiltered default.
type DenominatorSet struct {
	ByFacet map[string]SeriesResponse
	Default *SeriesResponse
}

// Empty reports whether the set holds no responses at all.
func (d DenominatorSet) Empty() bool {
	return len(d.ByFacet) == 0 && d.Default == nil
}

// Denominator is a resolved denominator series and the facet that describes it.
type Denominator struct {
	Variable string
	Series   Series
	Facet    StatMetadata
}

// Select picks the denominator series for an entity. The series fetched for
// the numerator's facet wins when it has observations; otherwise the
// unfiltered default is used. The second result is false when neither has data.
func (d DenominatorSet) Select(variable, entity, numeratorFacet string) (Denominator, bool) {
	if resp, ok := d.ByFacet[numeratorFacet]; ok && numeratorFacet != "" {
		if den, ok := denominatorFrom(resp, variable, entity); ok {
			return den, true
		}
	}
	if d.Default != nil {
		return denominatorFrom(*d.Default, variable, entity)
	}
	return Denominator{}, false
}

func denominatorFrom(resp SeriesResponse, variable, entity string) (Denominator, bool) {
	series, ok := resp.Lookup(variable, entity)
	if !ok {
		return Denominator{}, false
	}
	observed := Series{Observations: series.Observed(), Facet: series.Facet}
	if len(observed.Observations) == 0 {
		return Denominator{}, false
	}
	facet, _ := resp.Facets.Lookup(series.Facet)
	return Denominator{Variable: variable, Series: observed, Facet: facet}, true
}
