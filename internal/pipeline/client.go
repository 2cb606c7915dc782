package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/couchcryptid/datacommons-client/internal/domain"
	"github.com/couchcryptid/datacommons-client/internal/observability"
	"golang.org/x/sync/errgroup"
)

// DataSource is the part of the Data Commons API the enrichment client reads from.
type DataSource interface {
	ObservationsPoint(ctx context.Context, q domain.PointQuery) (domain.PointResponse, error)
	ObservationsSeries(ctx context.Context, q domain.SeriesQuery) (domain.SeriesResponse, error)
	NodePropvalsOut(ctx context.Context, dcids []string, prop string) (map[string][]domain.NodePropval, error)
}

// RowsParams selects point observations to enrich.
type RowsParams struct {
	domain.Selector
	Variables []string
	// Date selects the observation closest to it; empty means latest.
	Date     string
	FacetIDs []string
	// EntityProps and VariableProps default to DefaultEntityProps and
	// DefaultVariableProps when nil.
	EntityProps        []string
	VariableProps      []string
	PerCapitaVariables []string
}

// SeriesParams selects time series to enrich.
type SeriesParams struct {
	domain.Selector
	Variables          []string
	FacetIDs           []string
	EntityProps        []string
	VariableProps      []string
	PerCapitaVariables []string
	// StartDate and EndDate bound the returned observations inclusively.
	StartDate string
	EndDate   string
}

// Client turns Data Commons observations into enriched data rows. It holds
// only immutable configuration and is safe for concurrent use.
type Client struct {
	source        DataSource
	facetOverride domain.FacetOverride
	logger        *slog.Logger
	metrics       *observability.Metrics
}

// NewClient creates an enrichment client. A nil override applies
// domain.DefaultFacetOverride; pass an empty override to disable it.
func NewClient(source DataSource, override domain.FacetOverride, logger *slog.Logger, metrics *observability.Metrics) *Client {
	if override == nil {
		override = domain.DefaultFacetOverride
	}
	return &Client{
		source:        source,
		facetOverride: override,
		logger:        logger,
		metrics:       metrics,
	}
}

// metadata is everything resolved about the nodes of a response.
type metadata struct {
	entities      domain.NodePropertyTable
	variables     domain.NodePropertyTable
	population    domain.NodePropertyTable
	entityProps   []string
	variableProps []string
	perCapita     map[string]bool
}

// pointResult keeps the variable table around for the grouped view.
type pointResult struct {
	rows []domain.DataRow
	meta metadata
}

// GetDataRows fetches the latest (or Date-closest) observation of every
// variable for every selected entity. Pairs without an observation produce no row.
func (c *Client) GetDataRows(ctx context.Context, params RowsParams) ([]domain.DataRow, error) {
	res, err := c.dataRows(ctx, params)
	if err != nil {
		return nil, err
	}
	return res.rows, nil
}

func (c *Client) dataRows(ctx context.Context, params RowsParams) (pointResult, error) {
	point, err := c.source.ObservationsPoint(ctx, domain.PointQuery{
		Selector:  params.Selector,
		Variables: params.Variables,
		Date:      params.Date,
		FacetIDs:  params.FacetIDs,
	})
	if err != nil {
		return pointResult{}, fmt.Errorf("fetch point observations: %w", err)
	}
	point.Facets = domain.OverrideFacetValues(point.Facets, c.facetOverride)
	entities := point.Entities()

	meta, err := c.resolveMetadata(ctx, entities, params.Variables, params.EntityProps, params.VariableProps, params.PerCapitaVariables)
	if err != nil {
		return pointResult{}, err
	}

	denoms, err := c.denominatorsFor(ctx, meta, point.Facets, params.Selector)
	if err != nil {
		return pointResult{}, err
	}

	rows := make([]domain.DataRow, 0, len(entities)*len(params.Variables))
	for _, entity := range entities {
		for _, variable := range params.Variables {
			obs, ok := point.Lookup(variable, entity)
			if !ok {
				continue
			}
			facet, _ := point.Facets.Lookup(obs.Facet)
			row := domain.BuildRow(meta.rowInput(entity, variable, obs, facet))
			if meta.perCapita[variable] {
				row.Variable.PerCapita = c.pointPerCapita(denoms, entity, obs, facet, meta.population)
			}
			rows = append(rows, row)
		}
	}
	c.metrics.RowsProduced.WithLabelValues("point").Add(float64(len(rows)))
	return pointResult{rows: rows, meta: meta}, nil
}

func (c *Client) pointPerCapita(denoms domain.DenominatorSet, entity string, obs domain.Observation, facet domain.StatMetadata, names domain.NodePropertyTable) *domain.PerCapitaRecord {
	if obs.Value == nil {
		return nil
	}
	den, ok := denoms.Select(domain.PopulationVariable, entity, obs.Facet)
	if !ok {
		c.metrics.PerCapitaMisses.Inc()
		return nil
	}
	ratio, ok := domain.PointRatio(obs, den.Series.Observations, facet.Scale())
	if !ok {
		c.metrics.PerCapitaMisses.Inc()
		return nil
	}
	return domain.NewPerCapitaRecord(den, ratio, names)
}

// GetDataRowSeries fetches full series and emits one row per observation,
// optionally bounded by StartDate and EndDate. Observations without a value
// still produce a row but never carry a per-capita record.
func (c *Client) GetDataRowSeries(ctx context.Context, params SeriesParams) ([]domain.DataRow, error) {
	series, err := c.source.ObservationsSeries(ctx, domain.SeriesQuery{
		Selector:  params.Selector,
		Variables: params.Variables,
		FacetIDs:  params.FacetIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch series observations: %w", err)
	}
	series.Facets = domain.OverrideFacetValues(series.Facets, c.facetOverride)
	entities := series.Entities()

	meta, err := c.resolveMetadata(ctx, entities, params.Variables, params.EntityProps, params.VariableProps, params.PerCapitaVariables)
	if err != nil {
		return nil, err
	}

	denoms, err := c.denominatorsFor(ctx, meta, series.Facets, params.Selector)
	if err != nil {
		return nil, err
	}

	filter := params.StartDate != "" || params.EndDate != ""
	var rows []domain.DataRow
	for _, entity := range entities {
		for _, variable := range params.Variables {
			s, ok := series.Lookup(variable, entity)
			if !ok {
				continue
			}
			facet, _ := series.Facets.Lookup(s.Facet)
			observed := s.Observed()

			var den domain.Denominator
			var ratios []domain.Ratio
			if meta.perCapita[variable] {
				if d, ok := denoms.Select(domain.PopulationVariable, entity, s.Facet); ok {
					den = d
					ratios = domain.ComputeRatio(observed, d.Series.Observations, facet.Scale())
				} else {
					c.metrics.PerCapitaMisses.Inc()
				}
			}

			// ratios is indexed by position among the valued observations.
			k := 0
			for _, obs := range s.Observations {
				var ratio *domain.Ratio
				if obs.Value != nil {
					if k < len(ratios) {
						ratio = &ratios[k]
					}
					k++
				}
				if filter && !domain.InDateRange(obs.Date, params.StartDate, params.EndDate) {
					continue
				}
				row := domain.BuildRow(meta.rowInput(entity, variable, obs, facet))
				if ratio != nil {
					row.Variable.PerCapita = domain.NewPerCapitaRecord(den, *ratio, meta.population)
				}
				rows = append(rows, row)
			}
		}
	}
	c.metrics.RowsProduced.WithLabelValues("series").Add(float64(len(rows)))
	return rows, nil
}

// GetDataRowsGroupedByEntity returns one record per entity holding every
// requested variable. Variables without an observation get a placeholder.
func (c *Client) GetDataRowsGroupedByEntity(ctx context.Context, params RowsParams) ([]domain.EntityGroupedRow, error) {
	res, err := c.dataRows(ctx, params)
	if err != nil {
		return nil, err
	}
	return domain.GroupByEntity(res.rows, params.Variables, func(variable string) domain.VariableRecord {
		return domain.PlaceholderVariable(variable, res.meta.variableProps, res.meta.variables)
	}), nil
}

// resolveMetadata fetches entity, variable and population properties. The
// three lookups are independent and run concurrently.
func (c *Client) resolveMetadata(ctx context.Context, entities, variables, entityProps, variableProps, perCapitaVariables []string) (metadata, error) {
	meta := metadata{
		entityProps:   propsOrDefault(entityProps, domain.DefaultEntityProps),
		variableProps: propsOrDefault(variableProps, domain.DefaultVariableProps),
		perCapita:     make(map[string]bool),
		population:    domain.NodePropertyTable{},
	}
	for _, v := range perCapitaVariables {
		if slices.Contains(variables, v) {
			meta.perCapita[v] = true
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := c.resolveNodeProperties(gctx, entities, meta.entityProps)
		if err != nil {
			return fmt.Errorf("entity properties: %w", err)
		}
		meta.entities = t
		return nil
	})
	g.Go(func() error {
		t, err := c.resolveNodeProperties(gctx, variables, meta.variableProps)
		if err != nil {
			return fmt.Errorf("variable properties: %w", err)
		}
		meta.variables = t
		return nil
	})
	if len(meta.perCapita) > 0 {
		g.Go(func() error {
			t, err := c.resolveNodeProperties(gctx, []string{domain.PopulationVariable}, domain.DefaultVariableProps)
			if err != nil {
				return fmt.Errorf("population properties: %w", err)
			}
			meta.population = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return metadata{}, err
	}
	return meta, nil
}

func (m metadata) rowInput(entity, variable string, obs domain.Observation, facet domain.StatMetadata) domain.RowInput {
	return domain.RowInput{
		Entity:        entity,
		EntityProps:   m.entityProps,
		Variable:      variable,
		VariableProps: m.variableProps,
		EntityTable:   m.entities,
		VariableTable: m.variables,
		Observation:   obs,
		Facet:         facet,
	}
}

func (c *Client) denominatorsFor(ctx context.Context, meta metadata, facets domain.FacetStore, sel domain.Selector) (domain.DenominatorSet, error) {
	var variables []string
	if len(meta.perCapita) > 0 {
		variables = []string{domain.PopulationVariable}
	}
	return c.resolveDenominators(ctx, variables, facets.IDs(), sel)
}

func propsOrDefault(props, def []string) []string {
	if props == nil {
		return def
	}
	return props
}
