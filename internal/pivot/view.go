package pivot

import "fmt"

// State is everything a table instance owns. Each instance keeps its own
// State and replaces it wholesale on every transition.
type State struct {
	Sort   SortSpec
	Order  ColumnOrder
	Filter FilterSet
	Pager  Pager
	Query  string
}

// NewState returns the mount-time state for schema: no sort, every detail
// column shown in schema order, page 1.
func NewState(schema Schema, pageSize int) State {
	keys := schema.DetailKeys()
	return State{
		Order:  NewColumnOrder(keys),
		Filter: NewFilterSet(keys),
		Pager:  NewPager(pageSize),
	}
}

// VisibleColumns returns the detail columns to render, in display order.
func (s State) VisibleColumns() []string {
	return s.Filter.Visible(s.Order)
}

// HeaderCell is one rendered header column.
type HeaderCell struct {
	Column
	Indicator string
	Primary   bool
}

// GroupView is one group on the current page.
type GroupView struct {
	Key       string
	Secondary string
	Rows      []Row
}

// View is the render-ready result of running the pipeline over a state.
type View struct {
	Header    []HeaderCell
	Groups    []GroupView
	Total     int
	Page      int
	PageCount int
	PageSize  int
	// First and Last are the 1-based positions of the page's rows within
	// Total; both are 0 for an empty result.
	First int
	Last  int
}

// Summary renders the "Showing X to Y of N entries" footer text.
func (v View) Summary() string {
	return fmt.Sprintf("Showing %d to %d of %d entries", v.First, v.Last, v.Total)
}

// RowCount returns the number of rows on the page.
func (v View) RowCount() int {
	n := 0
	for _, g := range v.Groups {
		n += len(g.Rows)
	}
	return n
}

// Filtered runs the search stage alone. Its length is the total used for
// paging.
func Filtered(rows []Row, schema Schema, state State) []Row {
	fields := append([]string{schema.Primary.Key, schema.Secondary}, schema.DetailKeys()...)
	return Search(rows, state.Query, fields)
}

// Build runs search, sort, paginate and group over rows. The returned
// state has its pager clamped to the filtered row count.
func Build(rows []Row, schema Schema, state State) (View, State) {
	filtered := Filtered(rows, schema, state)
	total := len(filtered)
	state.Pager = state.Pager.Clamp(total)

	sorted := Sort(filtered, state.Sort)
	page := Paginate(sorted, state.Pager.Current, state.Pager.PageSize)

	v := View{
		Total:     total,
		Page:      state.Pager.Current,
		PageCount: state.Pager.PageCount(total),
		PageSize:  state.Pager.PageSize,
	}
	if len(page) > 0 {
		v.First = (state.Pager.Current-1)*state.Pager.PageSize + 1
		v.Last = v.First + len(page) - 1
	}

	v.Header = append(v.Header, HeaderCell{
		Column:    schema.Primary,
		Indicator: state.Sort.Indicator(schema.Primary.Key),
		Primary:   true,
	})
	for _, key := range state.VisibleColumns() {
		v.Header = append(v.Header, HeaderCell{
			Column:    Column{Key: key, Label: schema.Label(key)},
			Indicator: state.Sort.Indicator(key),
		})
	}

	for _, g := range GroupByKey(page, schema.Primary.Key) {
		gv := GroupView{Key: g.Key, Rows: g.Rows}
		if schema.Secondary != "" {
			gv.Secondary = g.Rows[0].Text(schema.Secondary)
		}
		v.Groups = append(v.Groups, gv)
	}
	return v, state
}
