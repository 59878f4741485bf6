// Package pivot holds the table transform pipeline behind the tracktable
// viewer: sorting, paging and grouping of rows, plus the small state stores
// (column order, hidden columns, sort spec, pager) the viewer mutates.
//
// Every state type is a value. Operations return a new value and never
// modify the receiver or the rows they were given, so a view can be rebuilt
// from the current state at any time.
package pivot

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Row is one input record, keyed by field name. Values are scalars
// (string, bool or a numeric type).
type Row map[string]any

// Column describes a table column.
type Column struct {
	Key   string
	Label string
}

// Schema names the grouping column, the per-group secondary field and the
// reorderable detail columns.
type Schema struct {
	Primary   Column
	Secondary string
	Details   []Column
}

// DefaultSchema matches the time-tracking export tracktable was built for.
func DefaultSchema() Schema {
	return Schema{
		Primary:   Column{Key: "name", Label: "Employee Name"},
		Secondary: "role",
		Details: []Column{
			{Key: "project_name", Label: "Project Name"},
			{Key: "client", Label: "Client"},
			{Key: "project_manager", Label: "Project Manager"},
			{Key: "number_of_session", Label: "Number of Session"},
			{Key: "total_minutes", Label: "Total Track Time"},
		},
	}
}

// DetailKeys returns the detail column identifiers in schema order.
func (s Schema) DetailKeys() []string {
	keys := make([]string, len(s.Details))
	for i, c := range s.Details {
		keys[i] = c.Key
	}
	return keys
}

// Label returns the display label for key, falling back to the key itself.
func (s Schema) Label(key string) string {
	if key == s.Primary.Key {
		return s.Primary.Label
	}
	for _, c := range s.Details {
		if c.Key == key {
			return c.Label
		}
	}
	return key
}

// HasDetail reports whether key is a detail column.
func (s Schema) HasDetail(key string) bool {
	for _, c := range s.Details {
		if c.Key == key {
			return true
		}
	}
	return false
}

// Text formats a field of r for display. Missing fields render empty.
func (r Row) Text(field string) string {
	return FormatValue(r[field])
}

// FormatValue renders a scalar the way it appears in a cell.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	default:
		return fmt.Sprint(x)
	}
}

// Compare orders two scalars: numbers numerically, strings lexically, and a
// number against a numeric string (or blank text, read as zero) numerically.
// Values that cannot be ordered against each other (missing fields, text
// against numbers) compare equal.
func Compare(a, b any) int {
	if fa, ok := toNumber(a); ok {
		if fb, ok := toNumber(b); ok {
			return compareFloats(fa, fb)
		}
		if sb, ok := b.(string); ok {
			if fb, ok := parseNumber(sb); ok {
				return compareFloats(fa, fb)
			}
		}
		return 0
	}

	sa, ok := a.(string)
	if !ok {
		return 0
	}
	if fb, ok := toNumber(b); ok {
		if fa, ok := parseNumber(sa); ok {
			return compareFloats(fa, fb)
		}
		return 0
	}
	if sb, ok := b.(string); ok {
		return strings.Compare(sa, sb)
	}
	return 0
}

func compareFloats(a, b float64) int {
	switch {
	case math.IsNaN(a) || math.IsNaN(b):
		return 0
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func toNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

// parseNumber reads s as a number for comparison against one. Blank text
// counts as zero, so empty cells order before positive numbers.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
