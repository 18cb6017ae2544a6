package output

import (
	"encoding/json"
	"fmt"

	"github.com/workloadsec/aiomigrate/pkg/platform"
)

// RecordsTable builds a table with one row per record. Missing fields are
// shown as empty cells.
func RecordsTable(records []platform.Record, columns ...string) Data {
	data := Data{Headers: columns}
	for _, r := range records {
		row := make([]string, len(columns))
		for i, col := range columns {
			if v, ok := r[col]; ok && v != nil {
				row[i] = fmt.Sprint(v)
			}
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}

// Plain converts decoded platform data into values every encoder renders
// naturally: json.Number becomes int64 or float64 and records become plain
// maps.
func Plain(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case platform.Record:
		return Plain(map[string]any(t))
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Plain(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Plain(val)
		}
		return out
	case []platform.Record:
		out := make([]any, len(t))
		for i, r := range t {
			out[i] = Plain(r)
		}
		return out
	}
	return v
}

