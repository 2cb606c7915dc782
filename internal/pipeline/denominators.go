package pipeline

import (
	"context"
	"fmt"

	"github.com/couchcryptid/datacommons-client/internal/domain"
	"golang.org/x/sync/errgroup"
)

// resolveDenominators fetches the denominator series once per numerator
// facet, restricted to that facet, plus one unrestricted default. The fetches
// are independent and run concurrently. No variables means no requests.
func (c *Client) resolveDenominators(ctx context.Context, variables, facetIDs []string, sel domain.Selector) (domain.DenominatorSet, error) {
	if len(variables) == 0 {
		return domain.DenominatorSet{}, nil
	}

	byFacet := make([]domain.SeriesResponse, len(facetIDs))
	var def domain.SeriesResponse

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range facetIDs {
		g.Go(func() error {
			resp, err := c.source.ObservationsSeries(gctx, domain.SeriesQuery{
				Selector:  sel,
				Variables: variables,
				FacetIDs:  []string{id},
			})
			if err != nil {
				return fmt.Errorf("fetch denominators for facet %s: %w", id, err)
			}
			resp.Facets = domain.OverrideFacetValues(resp.Facets, c.facetOverride)
			byFacet[i] = resp
			return nil
		})
	}
	g.Go(func() error {
		resp, err := c.source.ObservationsSeries(gctx, domain.SeriesQuery{
			Selector:  sel,
			Variables: variables,
		})
		if err != nil {
			return fmt.Errorf("fetch default denominators: %w", err)
		}
		resp.Facets = domain.OverrideFacetValues(resp.Facets, c.facetOverride)
		def = resp
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.DenominatorSet{}, err
	}

	set := domain.DenominatorSet{
		ByFacet: make(map[string]domain.SeriesResponse, len(facetIDs)),
		Default: &def,
	}
	for i, id := range facetIDs {
		set.ByFacet[id] = byFacet[i]
	}
	c.logger.Debug("resolved denominators", "variables", variables, "facets", len(facetIDs))
	return set, nil
}
