package pipeline

import (
	"context"

	"github.com/couchcryptid/datacommons-client/internal/domain"
	"github.com/couchcryptid/datacommons-client/internal/export"
	"github.com/paulmach/orb/geojson"
)

// GetCSV renders GetDataRows as CSV.
func (c *Client) GetCSV(ctx context.Context, params RowsParams, opts export.CSVOptions) (string, error) {
	rows, err := c.GetDataRows(ctx, params)
	if err != nil {
		return "", err
	}
	return export.CSV(rows, opts)
}

// GetCSVSeries renders GetDataRowSeries as CSV.
func (c *Client) GetCSVSeries(ctx context.Context, params SeriesParams, opts export.CSVOptions) (string, error) {
	rows, err := c.GetDataRowSeries(ctx, params)
	if err != nil {
		return "", err
	}
	return export.CSV(rows, opts)
}

// GetCSVGroupedByEntity renders GetDataRowsGroupedByEntity as CSV, one line per entity.
func (c *Client) GetCSVGroupedByEntity(ctx context.Context, params RowsParams, opts export.CSVOptions) (string, error) {
	rows, err := c.GetDataRowsGroupedByEntity(ctx, params)
	if err != nil {
		return "", err
	}
	return export.CSV(rows, opts)
}

// GetGeoJSON fetches entity-grouped rows with the geometry property added to
// the entity properties and renders them as a FeatureCollection.
func (c *Client) GetGeoJSON(ctx context.Context, params RowsParams, opts export.GeoJSONOptions) (*geojson.FeatureCollection, error) {
	geometryProp := opts.GeometryProperty()
	props := append([]string{geometryProp}, propsOrDefault(params.EntityProps, domain.DefaultEntityProps)...)
	params.EntityProps = props

	rows, err := c.GetDataRowsGroupedByEntity(ctx, params)
	if err != nil {
		return nil, err
	}
	return export.GeoJSON(rows, opts)
}
