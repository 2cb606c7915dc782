package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Observation is a single dated measurement for one variable about one entity.
type Observation struct {
	Date            string   `json:"date"`
	Value           *float64 `json:"value,omitempty"`
	Facet           string   `json:"facet,omitempty"`
	UnitDisplayName string   `json:"unitDisplayName,omitempty"`
}

// IsEmpty reports whether the observation carries neither a date nor a value.
// The API encodes a missing observation as an empty object.
func (o Observation) IsEmpty() bool {
	return o.Date == "" && o.Value == nil
}

// Float returns the observation value, or 0 when the value is absent.
func (o Observation) Float() float64 {
	if o.Value == nil {
		return 0
	}
	return *o.Value
}

// Series is an ascending-by-date sequence of observations sharing one facet.
type Series struct {
	Observations []Observation `json:"series"`
	Facet        string        `json:"facet,omitempty"`
}

// Observed returns the observations that carry a value, preserving order.
func (s Series) Observed() []Observation {
	out := make([]Observation, 0, len(s.Observations))
	for _, o := range s.Observations {
		if o.Value != nil {
			out = append(out, o)
		}
	}
	return out
}

// StatMetadata describes the provenance and methodology of a set of observations.
type StatMetadata struct {
	ImportName        string   `json:"importName,omitempty"`
	ProvenanceURL     string   `json:"provenanceUrl,omitempty"`
	MeasurementMethod string   `json:"measurementMethod,omitempty"`
	ObservationPeriod string   `json:"observationPeriod,omitempty"`
	ScalingFactor     *float64 `json:"scalingFactor,omitempty"`
	Unit              string   `json:"unit,omitempty"`
	UnitDisplayName   string   `json:"unitDisplayName,omitempty"`
}

// UnmarshalJSON accepts scalingFactor as either a JSON number or a numeric string.
func (m *StatMetadata) UnmarshalJSON(data []byte) error {
	type alias StatMetadata
	aux := struct {
		*alias
		ScalingFactor json.RawMessage `json:"scalingFactor,omitempty"`
	}{alias: (*alias)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	m.ScalingFactor = nil
	raw := strings.TrimSpace(string(aux.ScalingFactor))
	if raw == "" || raw == "null" {
		return nil
	}
	raw = strings.Trim(raw, `"`)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("parse scalingFactor %q: %w", raw, err)
	}
	m.ScalingFactor = &v
	return nil
}

// Scale returns the scaling factor, defaulting to 1 when absent or zero.
func (m StatMetadata) Scale() float64 {
	if m.ScalingFactor == nil || *m.ScalingFactor == 0 {
		return 1
	}
	return *m.ScalingFactor
}

// FacetStore maps an opaque facet id to its metadata.
type FacetStore map[string]StatMetadata

// Lookup returns the facet for id. An empty id is never found.
func (s FacetStore) Lookup(id string) (StatMetadata, bool) {
	if id == "" {
		return StatMetadata{}, false
	}
	m, ok := s[id]
	return m, ok
}

// IDs returns the facet ids in sorted order.
func (s FacetStore) IDs() []string {
	return sortedKeys(s)
}

// PointResponse is the payload of the observations/point endpoints.
type PointResponse struct {
	Data   map[string]map[string]Observation `json:"data"`
	Facets FacetStore                        `json:"facets"`
}

// Lookup returns the observation for a variable and entity. Empty observations are absent.
func (r PointResponse) Lookup(variable, entity string) (Observation, bool) {
	obs, ok := r.Data[variable][entity]
	if !ok || obs.IsEmpty() {
		return Observation{}, false
	}
	return obs, true
}

// Entities returns every entity dcid that appears under any variable, sorted.
func (r PointResponse) Entities() []string {
	seen := make(map[string]struct{})
	for _, byEntity := range r.Data {
		for entity := range byEntity {
			seen[entity] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// SeriesResponse is the payload of the observations/series endpoints.
type SeriesResponse struct {
	Data   map[string]map[string]Series `json:"data"`
	Facets FacetStore                   `json:"facets"`
}

// Lookup returns the series for a variable and entity. A series with no
// observations is absent.
func (r SeriesResponse) Lookup(variable, entity string) (Series, bool) {
	s, ok := r.Data[variable][entity]
	if !ok || len(s.Observations) == 0 {
		return Series{}, false
	}
	return s, true
}

// Entities returns every entity dcid that appears under any variable, sorted.
func (r SeriesResponse) Entities() []string {
	seen := make(map[string]struct{})
	for _, byEntity := range r.Data {
		for entity := range byEntity {
			seen[entity] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// NodePropval is one value of a node property as returned by the propvals endpoints.
type NodePropval struct {
	ProvenanceID string `json:"provenanceId,omitempty"`
	Value        string `json:"value,omitempty"`
	DCID         string `json:"dcid,omitempty"`
	Name         string `json:"name,omitempty"`
}
