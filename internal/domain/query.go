package domain

// Selector names the entities a query covers: either an explicit dcid list
// or every entity of ChildType contained in ParentEntity.
type Selector struct {
	Entities     []string
	ParentEntity string
	ChildType    string
}

// EntitiesSelector selects an explicit list of entities.
func EntitiesSelector(dcids ...string) Selector {
	return Selector{Entities: dcids}
}

// WithinSelector selects every entity of childType contained in parent.
func WithinSelector(parent, childType string) Selector {
	return Selector{ParentEntity: parent, ChildType: childType}
}

// Within reports whether the selector is a containment query.
func (s Selector) Within() bool {
	return s.ParentEntity != ""
}

// PointQuery requests the observation closest to Date (latest when empty).
type PointQuery struct {
	Selector
	Variables []string
	Date      string
	FacetIDs  []string
}

// SeriesQuery requests full time series.
type SeriesQuery struct {
	Selector
	Variables []string
	FacetIDs  []string
}
