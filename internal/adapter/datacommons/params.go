package datacommons

import (
	"net/url"

	"github.com/couchcryptid/datacommons-client/internal/domain"
)

// EncodeParams serializes query parameters deterministically. List values are
// repeated once per element in order, empty values are dropped and keys are
// sorted, so logically equal queries always produce the same string.
func EncodeParams(params map[string][]string) string {
	v := url.Values{}
	for key, values := range params {
		for _, s := range values {
			if s != "" {
				v.Add(key, s)
			}
		}
	}
	return v.Encode()
}

func selectorParams(s domain.Selector) map[string][]string {
	if s.Within() {
		return map[string][]string{
			"parentEntity": {s.ParentEntity},
			"childType":    {s.ChildType},
		}
	}
	return map[string][]string{"entities": s.Entities}
}

func pointParams(q domain.PointQuery) map[string][]string {
	p := selectorParams(q.Selector)
	p["variables"] = q.Variables
	p["date"] = []string{q.Date}
	p["facetIds"] = q.FacetIDs
	return p
}

func seriesParams(q domain.SeriesQuery) map[string][]string {
	p := selectorParams(q.Selector)
	p["variables"] = q.Variables
	p["facetIds"] = q.FacetIDs
	return p
}
