// Package export renders enriched data rows as flat records, CSV text and
// GeoJSON feature collections.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// DefaultDelimiter joins nested key paths when flattening.
const DefaultDelimiter = "__"

// Flatten converts v to its JSON shape and joins nested object keys with
// delimiter, producing a single-level map of scalars. Numbers are kept as
// json.Number so they render exactly as they were encoded.
func Flatten(v any, delimiter string) (map[string]any, error) {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("flatten: marshal: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("flatten: decode: %w", err)
	}
	out := make(map[string]any)
	flattenInto(out, "", tree, delimiter)
	return out, nil
}

func flattenInto(out map[string]any, prefix string, node any, delimiter string) {
	switch n := node.(type) {
	case map[string]any:
		for k, child := range n {
			flattenInto(out, joinKey(prefix, k, delimiter), child, delimiter)
		}
	case []any:
		for i, child := range n {
			flattenInto(out, joinKey(prefix, strconv.Itoa(i), delimiter), child, delimiter)
		}
	default:
		if prefix != "" {
			out[prefix] = n
		}
	}
}

func joinKey(prefix, key, delimiter string) string {
	if prefix == "" {
		return key
	}
	return prefix + delimiter + key
}
