package domain

import "encoding/json"

// ObservationMetadata is the facet information attached to an output observation.
type ObservationMetadata struct {
	ImportName      *string  `json:"importName"`
	ProvenanceURL   *string  `json:"provenanceUrl"`
	ScalingFactor   *float64 `json:"scalingFactor"`
	Unit            *string  `json:"unit"`
	UnitDisplayName *string  `json:"unitDisplayName"`
}

// MarshalJSON writes an empty object when no facet field is known, so
// placeholder records carry no metadata columns.
func (m ObservationMetadata) MarshalJSON() ([]byte, error) {
	if m == (ObservationMetadata{}) {
		return []byte("{}"), nil
	}
	type plain ObservationMetadata
	return json.Marshal(plain(m))
}

// ObservationRecord is an observation as it appears in an output row.
type ObservationRecord struct {
	Date     *string             `json:"date"`
	Value    *float64            `json:"value"`
	Metadata ObservationMetadata `json:"metadata"`
}

// PerCapitaRecord describes the denominator observation used for a
// per-capita value and the value itself.
type PerCapitaRecord struct {
	DCID           string            `json:"dcid"`
	Properties     Properties        `json:"properties"`
	Observation    ObservationRecord `json:"observation"`
	PerCapitaValue float64           `json:"perCapitaValue"`
}

// VariableRecord is one variable and its observation in an output row.
type VariableRecord struct {
	DCID        string            `json:"dcid"`
	Properties  Properties        `json:"properties"`
	Observation ObservationRecord `json:"observation"`
	PerCapita   *PerCapitaRecord  `json:"perCapita,omitempty"`
}

// EntityRecord is the entity part of an output row.
type EntityRecord struct {
	DCID       string     `json:"dcid"`
	Properties Properties `json:"properties"`
}

// DataRow is one entity, variable and observation combination.
type DataRow struct {
	Entity   EntityRecord   `json:"entity"`
	Variable VariableRecord `json:"variable"`
}

// EntityGroupedRow holds every requested variable for a single entity.
type EntityGroupedRow struct {
	Entity    EntityRecord              `json:"entity"`
	Variables map[string]VariableRecord `json:"variables"`
}

// RowInput gathers what BuildRow needs to assemble a row.
type RowInput struct {
	Entity        string
	EntityProps   []string
	Variable      string
	VariableProps []string
	EntityTable   NodePropertyTable
	VariableTable NodePropertyTable
	Observation   Observation
	Facet         StatMetadata
}

// BuildRow assembles a DataRow without a per-capita record.
func BuildRow(in RowInput) DataRow {
	return DataRow{
		Entity: EntityRecord{
			DCID:       in.Entity,
			Properties: in.EntityTable.PropertiesFor(in.Entity, in.EntityProps),
		},
		Variable: VariableRecord{
			DCID:        in.Variable,
			Properties:  in.VariableTable.PropertiesFor(in.Variable, in.VariableProps),
			Observation: NewObservationRecord(in.Observation, in.Facet),
		},
	}
}

// NewObservationRecord combines an observation with its facet. The
// observation's unit display name takes precedence over the facet's.
func NewObservationRecord(obs Observation, facet StatMetadata) ObservationRecord {
	rec := ObservationRecord{
		Metadata: ObservationMetadata{
			ImportName:    nonEmpty(facet.ImportName),
			ProvenanceURL: nonEmpty(facet.ProvenanceURL),
			Unit:          nonEmpty(facet.Unit),
		},
	}
	if obs.Date != "" {
		rec.Date = stringPtr(obs.Date)
	}
	if obs.Value != nil {
		rec.Value = float64Ptr(*obs.Value)
	}
	if facet.ScalingFactor != nil {
		rec.Metadata.ScalingFactor = float64Ptr(*facet.ScalingFactor)
	}
	rec.Metadata.UnitDisplayName = nonEmpty(obs.UnitDisplayName)
	if rec.Metadata.UnitDisplayName == nil {
		rec.Metadata.UnitDisplayName = nonEmpty(facet.UnitDisplayName)
	}
	return rec
}

// NewPerCapitaRecord builds the per-capita sub-record from a matched ratio.
// The denominator variable's name comes from names.
func NewPerCapitaRecord(den Denominator, ratio Ratio, names NodePropertyTable) *PerCapitaRecord {
	return &PerCapitaRecord{
		DCID:           den.Variable,
		Properties:     names.PropertiesFor(den.Variable, []string{NameProperty}),
		Observation:    NewObservationRecord(ratio.Denominator, den.Facet),
		PerCapitaValue: ratio.Value,
	}
}

// PlaceholderVariable is the record used for a variable with no observation.
func PlaceholderVariable(variable string, props []string, table NodePropertyTable) VariableRecord {
	return VariableRecord{
		DCID:       variable,
		Properties: table.PropertiesFor(variable, props),
	}
}

// GroupByEntity groups rows by entity in first-appearance order and fills a
// placeholder for every requested variable missing from an entity's rows.
func GroupByEntity(rows []DataRow, variables []string, placeholder func(variable string) VariableRecord) []EntityGroupedRow {
	var order []string
	groups := make(map[string]*EntityGroupedRow)
	for _, row := range rows {
		g, ok := groups[row.Entity.DCID]
		if !ok {
			g = &EntityGroupedRow{Entity: row.Entity, Variables: make(map[string]VariableRecord)}
			groups[row.Entity.DCID] = g
			order = append(order, row.Entity.DCID)
		}
		g.Variables[row.Variable.DCID] = row.Variable
	}

	out := make([]EntityGroupedRow, 0, len(order))
	for _, id := range order {
		g := groups[id]
		for _, v := range variables {
			if _, ok := g.Variables[v]; !ok {
				g.Variables[v] = placeholder(v)
			}
		}
		out = append(out, *g)
	}
	return out
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return stringPtr(s)
}
