package export

import (
	"encoding/json"
	"testing"

	"github.com/couchcryptid/datacommons-client/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func sampleRow() domain.DataRow {
	return domain.DataRow{
		Entity: domain.EntityRecord{
			DCID:       "geoId/06",
			Properties: domain.Properties{"name": strPtr("California"), "isoCode": nil},
		},
		Variable: domain.VariableRecord{
			DCID:       "Count_Person",
			Properties: domain.Properties{"name": strPtr("Total population")},
			Observation: domain.ObservationRecord{
				Date:  strPtr("2020"),
				Value: floatPtr(39538223),
				Metadata: domain.ObservationMetadata{
					Unit: strPtr("Person"),
				},
			},
		},
	}
}

func TestFlatten_DataRow(t *testing.T) {
	got, err := Flatten(sampleRow(), "")
	require.NoError(t, err)

	assert.Equal(t, "geoId/06", got["entity__dcid"])
	assert.Equal(t, "California", got["entity__properties__name"])
	assert.Equal(t, json.Number("39538223"), got["variable__observation__value"])
	assert.Equal(t, "Person", got["variable__observation__metadata__unit"])

	assert.Contains(t, got, "entity__properties__isoCode")
	assert.Nil(t, got["entity__properties__isoCode"])
	assert.Contains(t, got, "variable__observation__metadata__importName")
	assert.NotContains(t, got, "variable__perCapita")
	assert.NotContains(t, got, "entity")
}

func TestFlatten_CustomDelimiter(t *testing.T) {
	got, err := Flatten(sampleRow(), ".")
	require.NoError(t, err)
	assert.Equal(t, "geoId/06", got["entity.dcid"])
	assert.Equal(t, "2020", got["variable.observation.date"])
}

func TestFlatten_ArraysUseIndexKeys(t *testing.T) {
	got, err := Flatten(map[string]any{"a": []any{"x", map[string]any{"b": 1}}}, "_")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a_0": "x", "a_1_b": json.Number("1")}, got)
}

func TestFlatten_Unmarshalable(t *testing.T) {
	_, err := Flatten(map[string]any{"ch": make(chan int)}, "")
	require.Error(t, err)
}
