package platform

import (
	"encoding/json"
	"math"
	"strconv"
)

// Field names shared by every platform object.
const (
	FieldID   = "ID"
	FieldName = "name"
)

// Record is one platform object as an open field bag. Numbers decoded from
// the wire are json.Number so IDs are never rounded through float64.
type Record map[string]any

// ID returns the platform-local object ID.
func (r Record) ID() (int, bool) {
	return r.IntField(FieldID)
}

// Name returns the object name, or "" when absent.
func (r Record) Name() string {
	return r.StringField(FieldName)
}

// Has reports whether the field is present, even if null.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// IntField returns a numeric field as int. Absent, null and non-numeric
// values report false.
func (r Record) IntField(key string) (int, bool) {
	return AsInt(r[key])
}

// StringField returns a string field, or "" when absent or not a string.
func (r Record) StringField(key string) string {
	s, _ := r[key].(string)
	return s
}

// Map returns a nested object field.
func (r Record) Map(key string) (Record, bool) {
	switch v := r[key].(type) {
	case Record:
		return v, true
	case map[string]any:
		return Record(v), true
	}
	return nil, false
}

// Slice returns an array field.
func (r Record) Slice(key string) ([]any, bool) {
	v, ok := r[key].([]any)
	return v, ok
}

// Clone returns a deep copy so callers can rewrite nested blocks without
// touching cached records.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return cloneValue(map[string]any(r)).(Record)
}

// Without returns a shallow copy minus the given keys.
func (r Record) Without(keys ...string) Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Record:
		return cloneValue(map[string]any(t))
	case map[string]any:
		out := make(Record, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}

// AsInt converts a decoded JSON number to int.
func AsInt(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := strconv.ParseInt(string(n), 10, 64)
		if err != nil {
			return 0, false
		}
		return int(i), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

// AsRecord converts a decoded nested object to a Record.
func AsRecord(v any) (Record, bool) {
	switch t := v.(type) {
	case Record:
		return t, true
	case map[string]any:
		return Record(t), true
	}
	return nil, false
}
