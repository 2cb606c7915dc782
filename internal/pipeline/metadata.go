package pipeline

import (
	"context"
	"fmt"

	"github.com/couchcryptid/datacommons-client/internal/domain"
)

// resolveNodeProperties fetches the first value of every prop for every id,
// one request per property in order. Empty ids or props make no request.
func (c *Client) resolveNodeProperties(ctx context.Context, ids, props []string) (domain.NodePropertyTable, error) {
	table := domain.NodePropertyTable{}
	if len(ids) == 0 || len(props) == 0 {
		return table, nil
	}
	for _, prop := range props {
		values, err := c.source.NodePropvalsOut(ctx, ids, prop)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", prop, err)
		}
		table[prop] = domain.FirstValues(values)
	}
	return table, nil
}
