package table

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/imgajeed76/tracktable/internal/pivot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)

func stripANSI(s string) string { return ansiRe.ReplaceAllString(s, "") }

// sessions returns 25 rows for 5 people, 5 projects each.
func sessions() []pivot.Row {
	people := []struct{ name, role string }{
		{"Alice", "Developer"}, {"Bob", "Designer"}, {"Cara", "QA"}, {"Dan", "Developer"}, {"Eve", "PM"},
	}
	var rows []pivot.Row
	for i := 0; i < 25; i++ {
		p := people[i/5]
		rows = append(rows, pivot.Row{
			"name":              p.name,
			"role":              p.role,
			"project_name":      fmt.Sprintf("Project %02d", i),
			"client":            fmt.Sprintf("Client %d", i%3),
			"project_manager":   "Dana",
			"number_of_session": float64(i%4 + 1),
			"total_minutes":     float64((i * 37) % 100),
		})
	}
	return rows
}

func newTestModel(t *testing.T) tableModel {
	t.Helper()
	schema := pivot.DefaultSchema()
	m := newTableModel(sessions(), Settings{
		Title:  "sessions",
		Schema: schema,
		State:  pivot.NewState(schema, 10),
		Mouse:  true,
	})
	return send(t, m, tea.WindowSizeMsg{Width: 220, Height: 60})
}

func send(t *testing.T, m tableModel, msgs ...tea.Msg) tableModel {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(tableModel)
		require.True(t, ok)
	}
	return m
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keys(ss ...string) []tea.Msg {
	msgs := make([]tea.Msg, len(ss))
	for i, s := range ss {
		msgs[i] = keyMsg(s)
	}
	return msgs
}

// headerX returns a screen column inside header cell i.
func headerX(m tableModel, i int) int {
	return m.getColStartX(i) + 1 - m.scrollX
}

func press(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress}
}

func motion(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Button: tea.MouseButtonLeft, Action: tea.MouseActionMotion}
}

func release(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Button: tea.MouseButtonNone, Action: tea.MouseActionRelease}
}

// ═══════════════════════════════════════════════════════════════════════════
// Drag state machine
// ═══════════════════════════════════════════════════════════════════════════

func TestDragState(t *testing.T) {
	var d dragState
	assert.False(t, d.active())

	_, kind := d.release("a")
	assert.Equal(t, releaseNone, kind, "release without a drag")

	d = d.begin("a")
	assert.True(t, d.active())
	next, kind := d.release("a")
	assert.Equal(t, releaseClick, kind, "press and release in place is a click")
	assert.False(t, next.active())

	d = dragState{}.begin("a").over("b").over("a")
	_, kind = d.release("a")
	assert.Equal(t, releaseNone, kind, "dragged away and back is not a click")

	d = dragState{}.begin("a").over("c")
	assert.Equal(t, dragDragging, d.phase)
	_, kind = d.release("c")
	assert.Equal(t, releaseDrop, kind)

	d = dragState{}.begin("a").over("c")
	_, kind = d.release("")
	assert.Equal(t, releaseNone, kind, "release outside any header")

	assert.False(t, dragState{}.begin("").active(), "the grouping column cannot be dragged")
	assert.False(t, dragState{}.begin("a").cancel().active())
}

// ═══════════════════════════════════════════════════════════════════════════
// Dropdown
// ═══════════════════════════════════════════════════════════════════════════

func TestDropdownItems(t *testing.T) {
	order := pivot.NewColumnOrder([]string{"project_name", "client"})
	filter := pivot.NewFilterSet(order.IDs()).Hide("client")

	items := dropdownItems(order, filter)
	require.Len(t, items, 3)
	assert.Equal(t, dropdownItem{label: "Select All", checked: false}, items[0])
	assert.Equal(t, dropdownItem{id: "project_name", label: "Project Name", checked: true}, items[1])
	assert.Equal(t, dropdownItem{id: "client", label: "Client", checked: false}, items[2])

	filter = toggleItem(filter, items[0])
	assert.True(t, filter.AllShown(), "unchecked Select All shows everything")

	items = dropdownItems(order, filter)
	filter = toggleItem(filter, items[0])
	assert.ElementsMatch(t, []string{"project_name", "client"}, filter.Hidden(), "checked Select All hides everything")

	filter = toggleItem(filter, dropdownItem{id: "client", checked: false})
	assert.Equal(t, []string{"project_name"}, filter.Hidden())
}

func TestDropdownHitTesting(t *testing.T) {
	items := dropdownItems(pivot.NewColumnOrder([]string{"a", "b"}), pivot.NewFilterSet([]string{"a", "b"}))
	d := dropdown{}.toggleOpen(0, 4)
	w, h := d.size(items)
	assert.Equal(t, len(items)+2, h, "one line per item plus the border")

	assert.True(t, d.contains(items, 0, 4))
	assert.True(t, d.contains(items, w-1, 4+h-1))
	assert.False(t, d.contains(items, w, 4))
	assert.False(t, d.contains(items, 0, 3))

	assert.Equal(t, -1, d.itemAt(items, 4))
	assert.Equal(t, 0, d.itemAt(items, 5))
	assert.Equal(t, 2, d.itemAt(items, 7))

	assert.False(t, d.toggleOpen(0, 4).open)
	assert.False(t, dropdown{}.contains(items, 0, 4), "a closed dropdown contains nothing")
}

// ═══════════════════════════════════════════════════════════════════════════
// Printers
// ═══════════════════════════════════════════════════════════════════════════

func TestPages(t *testing.T) {
	schema := pivot.DefaultSchema()
	state := pivot.NewState(schema, 10)

	views := Pages(sessions(), schema, state, false)
	require.Len(t, views, 1)
	assert.Equal(t, 1, views[0].Page)

	views = Pages(sessions(), schema, state, true)
	require.Len(t, views, 3)
	total := 0
	for i, v := range views {
		assert.Equal(t, i+1, v.Page)
		total += v.RowCount()
	}
	assert.Equal(t, 25, total)
}

func TestPrintPlainTable(t *testing.T) {
	schema := pivot.DefaultSchema()
	state := pivot.NewState(schema, 10)
	state.Filter = state.Filter.Hide("client").Hide("project_manager")
	v, _ := pivot.Build(sessions(), schema, state)

	var buf bytes.Buffer
	PrintPlainTable(&buf, v)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	assert.True(t, strings.HasPrefix(lines[0], "Employee Name"))
	assert.NotContains(t, lines[0], "Client")
	assert.True(t, strings.HasPrefix(lines[2], "Alice"), "group key on the first row")
	assert.True(t, strings.HasPrefix(lines[3], "Developer"), "secondary on the second row")
	assert.Equal(t, "Showing 1 to 10 of 25 entries (page 1 of 3)", lines[len(lines)-1])
}

func TestPrintPlainTable_Empty(t *testing.T) {
	schema := pivot.DefaultSchema()
	v, _ := pivot.Build(nil, schema, pivot.NewState(schema, 10))

	var buf bytes.Buffer
	PrintPlainTable(&buf, v)
	assert.Equal(t, "No results found.\nShowing 0 to 0 of 0 entries\n", buf.String())
}

func TestPrintJSONResults(t *testing.T) {
	schema := pivot.DefaultSchema()
	state := pivot.NewState(schema, 10)
	state.Filter = state.Filter.HideAll().Show("total_minutes")
	v, _ := pivot.Build(sessions(), schema, state)

	var buf bytes.Buffer
	require.NoError(t, PrintJSONResults(&buf, []pivot.View{v}))

	var pages []jsonPage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &pages))
	require.Len(t, pages, 1)
	assert.Equal(t, []string{"name", "total_minutes"}, pages[0].Columns)
	assert.Equal(t, 25, pages[0].Total)
	require.Len(t, pages[0].Groups, 2)
	assert.Equal(t, "Alice", pages[0].Groups[0].Key)
	assert.Equal(t, "Developer", pages[0].Groups[0].Secondary)
	assert.Len(t, pages[0].Groups[0].Rows, 5)
	assert.Len(t, pages[0].Groups[0].Rows[0], 2)
}

func TestPrintRawResults(t *testing.T) {
	schema := pivot.DefaultSchema()
	state := pivot.NewState(schema, 5)
	state.Order = state.Order.ReplaceAll([]string{"total_minutes", "project_name"})
	v, _ := pivot.Build(sessions(), schema, state)

	var buf bytes.Buffer
	require.NoError(t, PrintRawResults(&buf, []pivot.View{v}))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	require.Len(t, lines, 6)
	assert.Equal(t, "Employee Name\tTotal Track Time\tProject Name", lines[0])
	assert.Equal(t, "Alice\t0\tProject 00", lines[1])
}

func TestPageWindow(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, pageWindow(1, 3))
	assert.Equal(t, []int{1, 2, 0, 10}, pageWindow(1, 10))
	assert.Equal(t, []int{1, 0, 4, 5, 6, 0, 10}, pageWindow(5, 10))
	assert.Equal(t, []int{1, 0, 9, 10}, pageWindow(10, 10))
}

// ═══════════════════════════════════════════════════════════════════════════
// Interactive model
// ═══════════════════════════════════════════════════════════════════════════

func TestTUI_InitialView(t *testing.T) {
	m := newTestModel(t)

	assert.Equal(t, 1, m.view.Page)
	assert.Equal(t, 3, m.view.PageCount)
	assert.Len(t, m.view.Header, 6)

	out := stripANSI(m.View())
	assert.Contains(t, out, "Employee Name")
	assert.Contains(t, out, "Showing 1 to 10 of 25 entries")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "Developer")
}

func TestTUI_KeyboardSortCycle(t *testing.T) {
	m := newTestModel(t)

	m = send(t, m, keys("right", "right", "right", "right", "right", "s")...)
	require.Equal(t, "total_minutes", m.view.Header[m.colCursor].Key)
	assert.Equal(t, pivot.SortSpec{Key: "total_minutes", Direction: pivot.Ascending}, m.state.Sort)
	assert.Equal(t, pivot.IndicatorAsc, m.view.Header[5].Indicator)

	m = send(t, m, keyMsg("s"))
	assert.Equal(t, pivot.Descending, m.state.Sort.Direction)

	m = send(t, m, keyMsg("s"))
	assert.Equal(t, pivot.Ascending, m.state.Sort.Direction)
}

func TestTUI_Paging(t *testing.T) {
	m := newTestModel(t)

	m = send(t, m, keys("n", "n", "n")...)
	assert.Equal(t, 3, m.view.Page, "next stops at the last page")
	assert.Equal(t, "Showing 21 to 25 of 25 entries", m.view.Summary())

	m = send(t, m, keys("p")...)
	assert.Equal(t, 2, m.view.Page)

	m = send(t, m, keys("9")...)
	assert.Equal(t, 3, m.view.Page, "a page past the end is clamped")

	m = send(t, m, keys("1")...)
	assert.Equal(t, 1, m.view.Page)

	m = send(t, m, keys(":", "2", "enter")...)
	assert.Equal(t, 2, m.view.Page)
	assert.Equal(t, tableModeNormal, m.mode)

	m = send(t, m, keys("z")...)
	assert.Equal(t, 20, m.view.PageSize)
	assert.Equal(t, 2, m.view.Page, "changing the page size keeps a valid page")
	assert.Equal(t, 2, m.view.PageCount)

	m = send(t, m, keys("z", "z", "z")...)
	assert.Equal(t, 10, m.view.PageSize, "page size wraps around")
}

func TestTUI_KeyboardMoveColumn(t *testing.T) {
	m := newTestModel(t)

	// Select Client (header 2) and drop it before Project Name (header 1)
	m = send(t, m, keys("right", "right", "m")...)
	require.Equal(t, tableModeMove, m.mode)
	m = send(t, m, keys("left", "m")...)

	assert.Equal(t, tableModeNormal, m.mode)
	assert.Equal(t, []string{"client", "project_name", "project_manager", "number_of_session", "total_minutes"}, m.state.Order.IDs())
	assert.Equal(t, "client", m.view.Header[m.colCursor].Key)
}

func TestTUI_KeyboardMoveCancel(t *testing.T) {
	m := newTestModel(t)
	before := m.state.Order.IDs()

	m = send(t, m, keys("right", "m", "right", "esc")...)
	assert.Equal(t, tableModeNormal, m.mode)
	assert.Equal(t, before, m.state.Order.IDs())

	// The grouping column cannot be moved
	m = send(t, m, keys("left", "left", "m")...)
	assert.Equal(t, tableModeNormal, m.mode)
}

func TestTUI_MouseDragReorder(t *testing.T) {
	m := newTestModel(t)

	src, dst := headerX(m, 4), headerX(m, 1) // Number of Session onto Project Name
	m = send(t, m, press(src, headerLine), motion(headerX(m, 3), headerLine), motion(dst, headerLine))
	assert.Equal(t, "project_name", m.drag.hover)
	m = send(t, m, release(dst, headerLine))

	assert.False(t, m.drag.active())
	assert.Equal(t, []string{"number_of_session", "project_name", "client", "project_manager", "total_minutes"}, m.state.Order.IDs())
	assert.True(t, m.state.Sort.IsZero(), "a drop is not a sort")
}

func TestTUI_MouseClickSorts(t *testing.T) {
	m := newTestModel(t)

	x := headerX(m, 5)
	m = send(t, m, press(x, headerLine), release(x, headerLine))
	assert.Equal(t, pivot.SortSpec{Key: "total_minutes", Direction: pivot.Ascending}, m.state.Sort)

	m = send(t, m, press(headerX(m, 0), headerLine))
	assert.Equal(t, pivot.SortSpec{Key: "name", Direction: pivot.Ascending}, m.state.Sort)
}

func TestTUI_MouseReleaseOutsideHeader(t *testing.T) {
	m := newTestModel(t)
	before := m.state.Order.IDs()

	m = send(t, m, press(headerX(m, 2), headerLine), motion(headerX(m, 2), 10), release(headerX(m, 2), 10))
	assert.Equal(t, before, m.state.Order.IDs())
	assert.True(t, m.state.Sort.IsZero())
	assert.False(t, m.drag.active())
}

func TestTUI_FilterDropdownKeyboard(t *testing.T) {
	m := newTestModel(t)

	m = send(t, m, keyMsg("f"))
	require.True(t, m.menu.open)
	require.Equal(t, tableModeFilter, m.mode)
	assert.Contains(t, stripANSI(m.View()), "Select All")
	assert.Contains(t, stripANSI(m.View()), "Number Of Session")

	// Uncheck Select All: every detail column hidden
	m = send(t, m, keyMsg("space"))
	assert.Len(t, m.view.Header, 1)

	// Re-check Project Name only
	m = send(t, m, keys("down", "space")...)
	assert.Len(t, m.view.Header, 2)
	assert.Equal(t, "project_name", m.view.Header[1].Key)

	m = send(t, m, keyMsg("esc"))
	assert.False(t, m.menu.open)
	assert.Equal(t, tableModeNormal, m.mode)
}

func TestTUI_FilterDropdownSendToEnd(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, keyMsg("f"))

	// Select All cannot be moved
	m = send(t, m, keyMsg("e"))
	assert.Equal(t, "project_name", m.view.Header[1].Key)

	m = send(t, m, keys("down", "e")...)
	assert.Equal(t, []string{"client", "project_manager", "number_of_session", "total_minutes", "project_name"},
		m.state.Order.IDs())
	assert.Equal(t, "project_name", m.view.Header[5].Key)
	assert.Equal(t, 5, m.menu.cursor)
	assert.True(t, m.menu.open)

	// The column is still visible and can be toggled where it now sits
	m = send(t, m, keyMsg("space"))
	assert.True(t, m.state.Filter.IsHidden("project_name"))
}

func TestTUI_FilterDropdownMouse(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, keyMsg("f"))

	// Click the first column's checkbox (border line, Select All, then it)
	m = send(t, m, press(2, bodyStart+2))
	assert.True(t, m.menu.open)
	assert.True(t, m.state.Filter.IsHidden("project_name"))
	assert.Len(t, m.view.Header, 5)

	// A press outside the box closes it without touching the filter
	m = send(t, m, press(200, 50))
	assert.False(t, m.menu.open)
	assert.Equal(t, tableModeNormal, m.mode)
	assert.Equal(t, []string{"project_name"}, m.state.Filter.Hidden())

	// With the dropdown closed an unrelated press does nothing to it
	m = send(t, m, press(200, 50))
	assert.False(t, m.menu.open)
}

func TestTUI_Search(t *testing.T) {
	m := newTestModel(t)

	m = send(t, m, keys("n")...)
	m = send(t, m, keys("/", "B", "o", "b")...)
	assert.Equal(t, "Bob", m.state.Query)
	assert.Equal(t, 5, m.view.Total)
	assert.Equal(t, 1, m.view.Page, "a new query starts on page 1")

	m = send(t, m, keyMsg("enter"))
	assert.Equal(t, tableModeNormal, m.mode)
	assert.Equal(t, "Bob", m.state.Query)

	m = send(t, m, keys("/", "esc")...)
	assert.Equal(t, "", m.state.Query)
	assert.Equal(t, 25, m.view.Total)
}

func TestTUI_PagerClick(t *testing.T) {
	m := newTestModel(t)

	segs := pagerSegments(m.view)
	x := 0
	for _, s := range segs {
		if s.kind == segPage && s.page == 3 {
			break
		}
		x += len([]rune(stripANSI(renderSegment(s))))
	}
	m = send(t, m, press(x+1, m.footerLine()))
	assert.Equal(t, 3, m.view.Page)
}

func TestTUI_RowCursorStaysOnPage(t *testing.T) {
	m := newTestModel(t)

	for i := 0; i < 20; i++ {
		m = send(t, m, keyMsg("down"))
	}
	assert.Equal(t, 9, m.cursor)

	row, g, ok := m.selectedRow()
	require.True(t, ok)
	assert.Equal(t, "Bob", g.Key)
	assert.Equal(t, "Project 09", row.Text("project_name"))

	m = send(t, m, keyMsg("n"))
	assert.Equal(t, 0, m.cursor)
}

func TestTUI_ExportKeysQuit(t *testing.T) {
	for k, want := range map[string]exitMode{"J": exitJSON, "R": exitRaw, "P": exitPlain} {
		m := newTestModel(t)
		next, cmd := m.Update(keyMsg(k))
		require.NotNil(t, cmd, k)
		assert.Equal(t, want, next.(tableModel).exitMode, k)
	}
}

func TestTUI_MouseDisabled(t *testing.T) {
	schema := pivot.DefaultSchema()
	m := newTableModel(sessions(), Settings{Schema: schema, State: pivot.NewState(schema, 10)})
	m = send(t, m, tea.WindowSizeMsg{Width: 220, Height: 60})

	x := headerX(m, 5)
	m = send(t, m, press(x, headerLine), release(x, headerLine))
	assert.True(t, m.state.Sort.IsZero())
}

func TestApplyViewport(t *testing.T) {
	assert.Equal(t, "cde", applyViewport("abcdefg", 2, 3))
	assert.Equal(t, "", applyViewport("abc", 0, 0))

	styled := "\x1b[1mbold\x1b[0m plain"
	assert.Equal(t, "ld plain", stripANSI(applyViewport(styled, 2, 20)))
}
