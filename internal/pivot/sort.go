package pivot

import (
	"slices"
	"strings"
)

// Direction is a sort direction.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Sort indicator symbols shown in header cells.
const (
	IndicatorAsc  = "▲"
	IndicatorDesc = "▼"
	IndicatorNone = "○"
)

// SortSpec selects the sort column. The zero value means "no sort".
type SortSpec struct {
	Key       string
	Direction Direction
}

// IsZero reports whether no sort column is set.
func (s SortSpec) IsZero() bool { return s.Key == "" }

// Toggle returns the spec after a header click on key: the same key sorted
// ascending flips to descending, anything else sorts key ascending.
func (s SortSpec) Toggle(key string) SortSpec {
	if s.Key == key && s.Direction == Ascending {
		return SortSpec{Key: key, Direction: Descending}
	}
	return SortSpec{Key: key, Direction: Ascending}
}

// Indicator returns the header symbol for key under this spec.
func (s SortSpec) Indicator(key string) string {
	if s.Key != key || key == "" {
		return IndicatorNone
	}
	if s.Direction == Descending {
		return IndicatorDesc
	}
	return IndicatorAsc
}

// Sort returns rows ordered by spec. The sort is stable and the direction
// flips the comparison, so rows with equal keys keep their input order in
// both directions. A zero spec returns a copy in input order.
func Sort(rows []Row, spec SortSpec) []Row {
	out := slices.Clone(rows)
	if spec.IsZero() {
		return out
	}
	slices.SortStableFunc(out, func(a, b Row) int {
		c := Compare(a[spec.Key], b[spec.Key])
		if spec.Direction == Descending {
			return -c
		}
		return c
	})
	return out
}

// Search keeps the rows where any of fields contains query, ignoring case.
// An empty query keeps every row.
func Search(rows []Row, query string, fields []string) []Row {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return slices.Clone(rows)
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(r.Text(f)), query) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
