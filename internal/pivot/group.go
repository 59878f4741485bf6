package pivot

// Group is a run of rows sharing a grouping key, rendered under one shared
// primary cell.
type Group struct {
	Key  string
	Rows []Row
}

// Paginate returns the rows on page (1-based) for the given page size. Pages
// past the end, page numbers below 1 and non-positive sizes give an empty
// slice.
func Paginate(rows []Row, page, size int) []Row {
	if page < 1 || size <= 0 {
		return []Row{}
	}
	start := (page - 1) * size
	if start >= len(rows) {
		return []Row{}
	}
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	out := make([]Row, end-start)
	copy(out, rows[start:end])
	return out
}

// GroupByKey partitions rows by the text of keyField. Groups appear in the
// order their key is first seen and rows keep their relative order.
func GroupByKey(rows []Row, keyField string) []Group {
	groups := []Group{}
	index := make(map[string]int)
	for _, r := range rows {
		k := r.Text(keyField)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].Rows = append(groups[i].Rows, r)
	}
	return groups
}
