package domain

// FacetPatch holds the facet fields an override may replace. Nil fields are left alone.
type FacetPatch struct {
	ImportName        *string  `json:"importName,omitempty" yaml:"importName,omitempty"`
	ProvenanceURL     *string  `json:"provenanceUrl,omitempty" yaml:"provenanceUrl,omitempty"`
	MeasurementMethod *string  `json:"measurementMethod,omitempty" yaml:"measurementMethod,omitempty"`
	ObservationPeriod *string  `json:"observationPeriod,omitempty" yaml:"observationPeriod,omitempty"`
	ScalingFactor     *float64 `json:"scalingFactor,omitempty" yaml:"scalingFactor,omitempty"`
	UnitDisplayName   *string  `json:"unitDisplayName,omitempty" yaml:"unitDisplayName,omitempty"`
}

// FacetOverride maps a unit code to the patch applied to every facet with that unit.
type FacetOverride map[string]FacetPatch

// DefaultFacetOverride corrects facets published in millions of constant USD
// whose scaling factor is missing from the upstream metadata.
var DefaultFacetOverride = FacetOverride{
	"SDG_CON_USD_M": {ScalingFactor: float64Ptr(0.000001)},
}

// OverrideFacetValues returns a new store in which every facet whose unit
// matches a key of override has the patch merged in. The input store is not
// modified. An empty override returns a copy of the store.
func OverrideFacetValues(store FacetStore, override FacetOverride) FacetStore {
	out := make(FacetStore, len(store))
	for id, facet := range store {
		patch, ok := override[facet.Unit]
		if facet.Unit == "" || !ok {
			out[id] = facet
			continue
		}
		out[id] = patch.apply(facet)
	}
	return out
}

func (p FacetPatch) apply(m StatMetadata) StatMetadata {
	if p.ImportName != nil {
		m.ImportName = *p.ImportName
	}
	if p.ProvenanceURL != nil {
		m.ProvenanceURL = *p.ProvenanceURL
	}
	if p.MeasurementMethod != nil {
		m.MeasurementMethod = *p.MeasurementMethod
	}
	if p.ObservationPeriod != nil {
		m.ObservationPeriod = *p.ObservationPeriod
	}
	if p.ScalingFactor != nil {
		v := *p.ScalingFactor
		m.ScalingFactor = &v
	}
	if p.UnitDisplayName != nil {
		m.UnitDisplayName = *p.UnitDisplayName
	}
	return m
}

func float64Ptr(v float64) *float64 { return &v }

func stringPtr(s string) *string { return &s }
