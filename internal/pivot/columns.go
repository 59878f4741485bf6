package pivot

import "slices"

// ColumnOrder is the display order of the detail columns. It never holds an
// identifier twice and never holds one outside its universe.
type ColumnOrder struct {
	universe []string
	ids      []string
}

// NewColumnOrder starts with every identifier of universe, in order.
func NewColumnOrder(universe []string) ColumnOrder {
	u := dedupe(universe, nil)
	return ColumnOrder{universe: u, ids: slices.Clone(u)}
}

// IDs returns a copy of the current order.
func (o ColumnOrder) IDs() []string { return slices.Clone(o.ids) }

// Universe returns a copy of every identifier the order may hold.
func (o ColumnOrder) Universe() []string { return slices.Clone(o.universe) }

// Len returns the number of identifiers in the order.
func (o ColumnOrder) Len() int { return len(o.ids) }

// Contains reports whether id is currently in the order.
func (o ColumnOrder) Contains(id string) bool { return slices.Contains(o.ids, id) }

// Index returns the position of id, or -1.
func (o ColumnOrder) Index(id string) int { return slices.Index(o.ids, id) }

// ToggleOrRemove removes id when present and appends it at the end when
// absent. Unknown identifiers are ignored.
func (o ColumnOrder) ToggleOrRemove(id string) ColumnOrder {
	if i := o.Index(id); i >= 0 {
		o.ids = slices.Delete(slices.Clone(o.ids), i, i+1)
		return o
	}
	if !slices.Contains(o.universe, id) {
		return o
	}
	o.ids = append(slices.Clone(o.ids), id)
	return o
}

// Reorder moves source so it sits immediately before target's current
// position. It is a no-op when either identifier is absent or they are equal.
func (o ColumnOrder) Reorder(source, target string) ColumnOrder {
	if source == target {
		return o
	}
	from, to := o.Index(source), o.Index(target)
	if from < 0 || to < 0 {
		return o
	}
	ids := slices.Delete(slices.Clone(o.ids), from, from+1)
	to = slices.Index(ids, target)
	o.ids = slices.Insert(ids, to, source)
	return o
}

// ReplaceAll swaps in a whole new order. Unknown and repeated identifiers are
// dropped.
func (o ColumnOrder) ReplaceAll(ids []string) ColumnOrder {
	o.ids = dedupe(ids, o.universe)
	return o
}

// dedupe returns ids without repeats, keeping only members of allowed when
// allowed is non-nil.
func dedupe(ids, allowed []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		if allowed != nil && !slices.Contains(allowed, id) {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
