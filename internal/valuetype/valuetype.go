// Package valuetype converts raw configuration input to typed values and back,
// driven by the type tag recorded next to each stored entry.
package valuetype

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Type is the tag stored alongside a configuration value.
type Type string

const (
	String Type = "string"
	Int    Type = "int"
	Float  Type = "float"
	Bool   Type = "bool"
	Array  Type = "array"
	JSON   Type = "json"
	Date   Type = "date"
)

// DateLayout is the canonical persisted form of date values (always UTC).
const DateLayout = time.DateTime

var allTypes = []Type{String, Int, Float, Bool, Array, JSON, Date}

// Types returns every known tag in declaration order.
func Types() []Type {
	out := make([]Type, len(allTypes))
	copy(out, allTypes)
	return out
}

// Parse resolves a tag name. Unknown names are an error.
func Parse(s string) (Type, error) {
	t := Type(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown value type %q", s)
	}
	return t, nil
}

// Valid reports whether t is one of the known tags.
func (t Type) Valid() bool {
	for _, known := range allTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (t Type) String() string { return string(t) }

// Coerce converts raw into the representation for t. It never fails: numeric
// garbage becomes zero and an unparseable date becomes an absent Value.
func (t Type) Coerce(raw any) Value {
	switch t {
	case String:
		return Some(toString(raw))
	case Int:
		return Some(toInt(raw))
	case Float:
		return Some(toFloat(raw))
	case Bool:
		return Some(toBool(raw))
	case Array:
		return Some(toArray(raw))
	case JSON:
		return Some(raw)
	case Date:
		ts, ok := toDate(raw)
		if !ok {
			return None()
		}
		return Some(ts)
	default:
		return None()
	}
}

// Storable returns the form of v that is written to the JSON value column.
// Dates are rendered with DateLayout rather than stored as time values.
func (t Type) Storable(v Value) any {
	raw, ok := v.Get()
	if !ok {
		return nil
	}
	if ts, isTime := raw.(time.Time); isTime {
		return ts.UTC().Format(DateLayout)
	}
	return raw
}

func toString(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
	s, err := cast.ToStringE(raw)
	if err != nil {
		return fmt.Sprint(raw)
	}
	return s
}

func toInt(raw any) int64 {
	switch v := raw.(type) {
	case string:
		return parseIntString(v)
	case json.Number:
		return parseIntString(v.String())
	case float64:
		return truncate(v)
	case float32:
		return truncate(float64(v))
	}
	n, err := cast.ToInt64E(raw)
	if err != nil {
		return 0
	}
	return n
}

func parseIntString(s string) int64 {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return truncate(f)
	}
	return 0
}

// truncate drops the fraction of f, saturating at the int64 bounds.
func truncate(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

func toFloat(raw any) float64 {
	switch v := raw.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return f
	}
	f, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0
	}
	return f
}

// truthy lists the strings accepted as true; anything else is false.
var truthy = map[string]bool{
	"1":    true,
	"true": true,
	"yes":  true,
	"on":   true,
}

func toBool(raw any) bool {
	if b, ok := raw.(bool); ok {
		return b
	}
	if raw == nil {
		return false
	}
	s, err := cast.ToStringE(raw)
	if err != nil {
		return false
	}
	return truthy[strings.ToLower(strings.TrimSpace(s))]
}

func toArray(raw any) any {
	switch v := raw.(type) {
	case nil:
		return []any{}
	case []any, map[string]any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	}
	return []any{raw}
}

func toDate(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return v, true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false
		}
		if ts, err := time.ParseInLocation(DateLayout, s, time.UTC); err == nil {
			return ts, true
		}
		ts, err := cast.ToTimeE(s)
		if err != nil {
			slog.Warn("Failed to parse date value", "value", v, "error", err)
			return time.Time{}, false
		}
		return ts, true
	case float64:
		return time.Unix(truncate(v), 0).UTC(), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			slog.Warn("Failed to parse date value", "value", v, "error", err)
			return time.Time{}, false
		}
		return time.Unix(truncate(f), 0).UTC(), true
	}
	ts, err := cast.ToTimeE(raw)
	if err != nil {
		slog.Warn("Failed to parse date value", "value", raw, "error", err)
		return time.Time{}, false
	}
	return ts, true
}
