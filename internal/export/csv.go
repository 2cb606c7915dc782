package export

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// CSVOptions controls CSV rendering.
type CSVOptions struct {
	// Delimiter joins nested field names. Defaults to DefaultDelimiter.
	Delimiter string
	// TransformHeader, when set, renames every header column.
	TransformHeader func(column string) string
}

// CSV flattens each row and renders the result. The header is the sorted
// union of all flattened keys; strings are always quoted with embedded
// quotes doubled, numbers and booleans are written bare and nulls are
// empty. Lines are joined with "\n". No rows render as the empty string.
func CSV[T any](rows []T, opts CSVOptions) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}

	flat := make([]map[string]any, 0, len(rows))
	columns := make(map[string]struct{})
	for i := range rows {
		rec, err := Flatten(rows[i], opts.Delimiter)
		if err != nil {
			return "", fmt.Errorf("row %d: %w", i, err)
		}
		for k := range rec {
			columns[k] = struct{}{}
		}
		flat = append(flat, rec)
	}

	header := make([]string, 0, len(columns))
	for k := range columns {
		header = append(header, k)
	}
	slices.Sort(header)

	lines := make([]string, 0, len(flat)+1)
	names := make([]any, len(header))
	for i, col := range header {
		if opts.TransformHeader != nil {
			col = opts.TransformHeader(col)
		}
		names[i] = col
	}
	lines = append(lines, encodeCSVRow(names))

	fields := make([]any, len(header))
	for _, rec := range flat {
		for i, col := range header {
			fields[i] = rec[col]
		}
		lines = append(lines, encodeCSVRow(fields))
	}
	return strings.Join(lines, "\n"), nil
}

func encodeCSVRow(fields []any) string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = encodeCSVValue(f)
	}
	return strings.Join(out, ",")
}

func encodeCSVValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return `"` + strings.ReplaceAll(val, `"`, `""`) + `"`
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
