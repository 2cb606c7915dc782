package export

import (
	"fmt"

	"github.com/couchcryptid/datacommons-client/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// DefaultGeoJSONProperty is the entity property holding simplified geometry.
const DefaultGeoJSONProperty = "geoJsonCoordinatesDP1"

// GeoJSONOptions controls GeoJSON rendering.
type GeoJSONOptions struct {
	// Property names the entity property with the geometry JSON string.
	Property string
	// Delimiter joins nested feature property names.
	Delimiter string
	// DisableRewind keeps the geometry winding exactly as published.
	DisableRewind bool
}

// GeometryProperty returns the configured geometry property or the default.
func (o GeoJSONOptions) GeometryProperty() string {
	if o.Property == "" {
		return DefaultGeoJSONProperty
	}
	return o.Property
}

// GeoJSON builds a feature per row whose geometry property holds a string.
// The geometry is removed from a copy of the row before its properties are
// flattened. A geometry string that is not valid GeoJSON is an error.
func GeoJSON(rows []domain.EntityGroupedRow, opts GeoJSONOptions) (*geojson.FeatureCollection, error) {
	prop := opts.GeometryProperty()
	fc := geojson.NewFeatureCollection()
	for _, row := range rows {
		raw := row.Entity.Properties[prop]
		if raw == nil {
			continue
		}
		g, err := geojson.UnmarshalGeometry([]byte(*raw))
		if err != nil {
			return nil, fmt.Errorf("parse %s geometry for %s: %w", prop, row.Entity.DCID, err)
		}
		geometry := g.Geometry()
		if !opts.DisableRewind {
			geometry = Rewind(geometry)
		}

		stripped := row
		stripped.Entity.Properties = row.Entity.Properties.Clone()
		delete(stripped.Entity.Properties, prop)
		props, err := Flatten(stripped, opts.Delimiter)
		if err != nil {
			return nil, fmt.Errorf("feature properties for %s: %w", row.Entity.DCID, err)
		}

		f := geojson.NewFeature(geometry)
		f.Properties = props
		fc.Append(f)
	}
	return fc, nil
}

// Rewind orders polygon rings clockwise for exteriors and counter-clockwise
// for holes, and lines counter-clockwise, the convention d3-geo expects. The
// geometry is modified in place and returned.
func Rewind(g orb.Geometry) orb.Geometry {
	switch geom := g.(type) {
	case orb.Polygon:
		rewindPolygon(geom)
	case orb.MultiPolygon:
		for _, p := range geom {
			rewindPolygon(p)
		}
	case orb.LineString:
		rewindLine(geom)
	case orb.MultiLineString:
		for _, l := range geom {
			rewindLine(l)
		}
	case orb.Collection:
		for i := range geom {
			geom[i] = Rewind(geom[i])
		}
	}
	return g
}

func rewindPolygon(p orb.Polygon) {
	for i, ring := range p {
		if len(ring) == 0 {
			continue
		}
		want := orb.CCW
		if i == 0 {
			want = orb.CW
		}
		if o := ring.Orientation(); o != 0 && o != want {
			ring.Reverse()
		}
	}
}

// rewindLine treats the line as an implicitly closed ring.
func rewindLine(l orb.LineString) {
	if len(l) == 0 {
		return
	}
	if orb.Ring(l).Orientation() == orb.CW {
		l.Reverse()
	}
}
