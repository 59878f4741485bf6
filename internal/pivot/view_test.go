package pivot

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sessions() []Row {
	var rows []Row
	people := []struct{ name, role string }{
		{"Alice", "Developer"},
		{"Bob", "Designer"},
		{"Carol", "Manager"},
	}
	for i := 0; i < 25; i++ {
		p := people[i%3]
		rows = append(rows, Row{
			"name":              p.name,
			"role":              p.role,
			"project_name":      fmt.Sprintf("Project %02d", i),
			"client":            "Acme",
			"project_manager":   "Dana",
			"number_of_session": float64(i % 4),
			"total_minutes":     float64(i * 10),
		})
	}
	return rows
}

func TestBuild_DefaultState(t *testing.T) {
	schema := DefaultSchema()
	v, st := Build(sessions(), schema, NewState(schema, 10))

	if v.Total != 25 || v.PageCount != 3 || v.Page != 1 {
		t.Fatalf("got total=%d pages=%d page=%d", v.Total, v.PageCount, v.Page)
	}
	if v.RowCount() != 10 {
		t.Fatalf("page rows = %d, want 10", v.RowCount())
	}
	if st.Pager.Current != 1 {
		t.Fatalf("state page = %d", st.Pager.Current)
	}

	var labels []string
	for _, h := range v.Header {
		labels = append(labels, h.Label)
	}
	want := []string{"Employee Name", "Project Name", "Client", "Project Manager", "Number of Session", "Total Track Time"}
	if diff := cmp.Diff(want, labels); diff != "" {
		t.Fatalf("header (-want +got):\n%s", diff)
	}
	if !v.Header[0].Primary {
		t.Fatal("first header cell should be the primary column")
	}

	var keys []string
	for _, g := range v.Groups {
		keys = append(keys, g.Key)
	}
	if diff := cmp.Diff([]string{"Alice", "Bob", "Carol"}, keys); diff != "" {
		t.Fatalf("groups (-want +got):\n%s", diff)
	}
	if v.Groups[1].Secondary != "Designer" {
		t.Fatalf("secondary = %q", v.Groups[1].Secondary)
	}
	if v.Summary() != "Showing 1 to 10 of 25 entries" {
		t.Fatalf("summary = %q", v.Summary())
	}
}

func TestBuild_LastPageAndClamp(t *testing.T) {
	schema := DefaultSchema()
	st := NewState(schema, 10)
	st.Pager = st.Pager.Goto(7)

	v, st := Build(sessions(), schema, st)
	if v.Page != 3 || st.Pager.Current != 3 {
		t.Fatalf("page not clamped: view=%d state=%d", v.Page, st.Pager.Current)
	}
	if v.RowCount() != 5 {
		t.Fatalf("last page rows = %d, want 5", v.RowCount())
	}
	if v.Summary() != "Showing 21 to 25 of 25 entries" {
		t.Fatalf("summary = %q", v.Summary())
	}
}

func TestBuild_HiddenAndReorderedColumns(t *testing.T) {
	schema := DefaultSchema()
	st := NewState(schema, 10)
	st.Order = st.Order.Reorder("total_minutes", "project_name")
	st.Filter = st.Filter.Hide("client").Hide("project_manager")
	st.Sort = st.Sort.Toggle("total_minutes").Toggle("total_minutes")

	v, _ := Build(sessions(), schema, st)

	var keys []string
	for _, h := range v.Header[1:] {
		keys = append(keys, h.Key)
	}
	if diff := cmp.Diff([]string{"total_minutes", "project_name", "number_of_session"}, keys); diff != "" {
		t.Fatalf("visible columns (-want +got):\n%s", diff)
	}
	if v.Header[1].Indicator != IndicatorDesc {
		t.Fatalf("indicator = %q", v.Header[1].Indicator)
	}
	first := v.Groups[0].Rows[0]
	if first["total_minutes"] != float64(240) {
		t.Fatalf("expected largest total first, got %v", first["total_minutes"])
	}
}

func TestBuild_Empty(t *testing.T) {
	schema := DefaultSchema()
	v, _ := Build(nil, schema, NewState(schema, 10))
	if len(v.Groups) != 0 || v.PageCount != 1 || v.Page != 1 {
		t.Fatalf("unexpected empty view: %+v", v)
	}
	if v.Summary() != "Showing 0 to 0 of 0 entries" {
		t.Fatalf("summary = %q", v.Summary())
	}
}

func TestBuild_SearchChangesTotal(t *testing.T) {
	schema := DefaultSchema()
	st := NewState(schema, 10)
	st.Query = "bob"
	v, _ := Build(sessions(), schema, st)
	if v.Total != 8 || len(v.Groups) != 1 || v.Groups[0].Key != "Bob" {
		t.Fatalf("total=%d groups=%d", v.Total, len(v.Groups))
	}
}
