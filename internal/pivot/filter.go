package pivot

import "slices"

// FilterSet is the set of detail columns hidden from display. It is always a
// subset of its universe; an empty set shows every column.
type FilterSet struct {
	universe []string
	hidden   []string
}

// NewFilterSet returns an empty filter over universe.
func NewFilterSet(universe []string) FilterSet {
	return FilterSet{universe: dedupe(universe, nil)}
}

// Hide adds id to the hidden set.
func (f FilterSet) Hide(id string) FilterSet {
	if f.IsHidden(id) || !slices.Contains(f.universe, id) {
		return f
	}
	f.hidden = append(slices.Clone(f.hidden), id)
	return f
}

// Show removes id from the hidden set.
func (f FilterSet) Show(id string) FilterSet {
	i := slices.Index(f.hidden, id)
	if i < 0 {
		return f
	}
	f.hidden = slices.Delete(slices.Clone(f.hidden), i, i+1)
	return f
}

// ShowAll clears the hidden set.
func (f FilterSet) ShowAll() FilterSet {
	f.hidden = nil
	return f
}

// HideAll hides the whole universe.
func (f FilterSet) HideAll() FilterSet {
	f.hidden = slices.Clone(f.universe)
	return f
}

// IsHidden reports whether id is hidden.
func (f FilterSet) IsHidden(id string) bool { return slices.Contains(f.hidden, id) }

// AllShown reports whether nothing is hidden. It drives the "Select All"
// checkbox.
func (f FilterSet) AllShown() bool { return len(f.hidden) == 0 }

// Hidden returns the hidden identifiers in the order they were hidden.
func (f FilterSet) Hidden() []string { return slices.Clone(f.hidden) }

// Visible returns the identifiers of order that are not hidden, in order.
func (f FilterSet) Visible(order ColumnOrder) []string {
	out := make([]string, 0, order.Len())
	for _, id := range order.ids {
		if !f.IsHidden(id) {
			out = append(out, id)
		}
	}
	return out
}
