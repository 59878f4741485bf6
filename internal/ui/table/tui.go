package table

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/imgajeed76/tracktable/internal/pivot"
	"github.com/imgajeed76/tracktable/internal/ui/styles"
	"github.com/imgajeed76/tracktable/internal/util"
	"go.uber.org/zap"
)

// ═══════════════════════════════════════════════════════════════════════════
// Constants
// ═══════════════════════════════════════════════════════════════════════════

const (
	defaultColWidth   = 20
	defaultGroupWidth = 22
	minColWidth       = 3
)

// Screen rows of the fixed top area
const (
	titleLine  = 0
	barLine    = 1
	headerLine = 2
	ruleLine   = 3
	bodyStart  = 4
	footerSize = 2 // pager line + help line
)

// Table mode
type tableMode int

const (
	tableModeNormal tableMode = iota
	tableModeSearch
	tableModeGoto
	tableModeMove
	tableModeFilter
)

// exitMode is what happens once the viewer closes
type exitMode int

const (
	exitNormal exitMode = iota
	exitJSON
	exitRaw
	exitPlain
)

// ═══════════════════════════════════════════════════════════════════════════
// Model
// ═══════════════════════════════════════════════════════════════════════════

type tableModel struct {
	settings  Settings
	rows      []pivot.Row
	state     pivot.State
	view      pivot.View
	cursor    int // selected row on the current page
	colCursor int // selected header cell, 0 is the grouping column
	scrollX   int // horizontal scroll offset in characters
	scrollY   int // vertical scroll offset in body lines
	width     int // terminal width
	height    int // terminal height
	ready     bool
	mode      tableMode
	exitMode  exitMode // how to exit (for re-printing data)

	searchInput textinput.Model
	gotoInput   textinput.Model

	drag dragState
	menu dropdown

	// Status message (flash notification, e.g. after yank)
	statusMsg   string
	statusUntil time.Time

	log *zap.Logger
}

// ═══════════════════════════════════════════════════════════════════════════
// Key Bindings
// ═══════════════════════════════════════════════════════════════════════════

type tableKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	Sort        key.Binding
	Move        key.Binding
	Filter      key.Binding
	Toggle      key.Binding
	SendToEnd   key.Binding
	NextPage    key.Binding
	PrevPage    key.Binding
	FirstPage   key.Binding
	LastPage    key.Binding
	Goto        key.Binding
	PageSize    key.Binding
	Search      key.Binding
	Cancel      key.Binding
	Quit        key.Binding
	YankRow     key.Binding
	ExportJSON  key.Binding
	ExportRaw   key.Binding
	ExportPlain key.Binding
}

var tableKeys = tableKeyMap{
	Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:        key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev column")),
	Right:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next column")),
	Sort:        key.NewBinding(key.WithKeys("s", "enter"), key.WithHelp("s", "sort")),
	Move:        key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move column")),
	Filter:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "columns")),
	Toggle:      key.NewBinding(key.WithKeys(" ", "x", "enter"), key.WithHelp("space", "toggle")),
	SendToEnd:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "send column to end")),
	NextPage:    key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n", "next page")),
	PrevPage:    key.NewBinding(key.WithKeys("p", "pgup"), key.WithHelp("p", "prev page")),
	FirstPage:   key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first page")),
	LastPage:    key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last page")),
	Goto:        key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "go to page")),
	PageSize:    key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "page size")),
	Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	YankRow:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy row")),
	ExportJSON:  key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "print as JSON")),
	ExportRaw:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "print raw")),
	ExportPlain: key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "print table")),
}

// ═══════════════════════════════════════════════════════════════════════════
// Entry Point
// ═══════════════════════════════════════════════════════════════════════════

// RunTableTUI launches the interactive viewer. It blocks until the user
// quits. If the user requests an export (J/R/P), the page on screen is
// printed to stdout after the TUI exits.
func RunTableTUI(rows []pivot.Row, s Settings) error {
	s = s.withDefaults()
	m := newTableModel(rows, s)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if s.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	p := tea.NewProgram(m, opts...)
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	// Check if user requested output after exit
	if fm, ok := finalModel.(tableModel); ok {
		views := []pivot.View{fm.view}
		switch fm.exitMode {
		case exitJSON:
			return PrintJSONResults(os.Stdout, views)
		case exitRaw:
			return PrintRawResults(os.Stdout, views)
		case exitPlain:
			PrintPlainTable(os.Stdout, fm.view)
		}
	}

	return nil
}

func newTableModel(rows []pivot.Row, s Settings) tableModel {
	s = s.withDefaults()

	// Initialize search input
	si := textinput.New()
	si.Placeholder = "search..."
	si.CharLimit = 100
	si.Width = 30

	gi := textinput.New()
	gi.Placeholder = "page"
	gi.CharLimit = 6
	gi.Width = 8
	gi.Validate = func(s string) error {
		for _, r := range s {
			if r < '0' || r > '9' {
				return fmt.Errorf("not a number")
			}
		}
		return nil
	}

	m := tableModel{
		settings:    s,
		rows:        rows,
		state:       s.State,
		searchInput: si,
		gotoInput:   gi,
		log:         s.Logger,
	}
	m.searchInput.SetValue(m.state.Query)
	m.rebuild()
	return m
}

// rebuild reruns the pipeline after a state transition and keeps the
// cursors inside the new view.
func (m *tableModel) rebuild() {
	m.view, m.state = pivot.Build(m.rows, m.settings.Schema, m.state)

	if m.colCursor >= len(m.view.Header) {
		m.colCursor = len(m.view.Header) - 1
	}
	if m.colCursor < 0 {
		m.colCursor = 0
	}
	if n := m.view.RowCount(); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureRowVisible()
}

// ═══════════════════════════════════════════════════════════════════════════
// Bubble Tea Interface
// ═══════════════════════════════════════════════════════════════════════════

func (m tableModel) Init() tea.Cmd {
	return nil
}

func (m tableModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.ensureRowVisible()
		m.ensureColVisible()

	case statusClearMsg:
		// Clear the flash message if it has expired
		if !m.statusUntil.IsZero() && time.Now().After(m.statusUntil) {
			m.statusMsg = ""
			m.statusUntil = time.Time{}
		}
		return m, nil

	case tea.MouseMsg:
		if !m.settings.Mouse {
			return m, nil
		}
		return m.updateMouse(msg)

	case tea.KeyMsg:
		switch m.mode {
		case tableModeSearch:
			return m.updateSearch(msg)
		case tableModeGoto:
			return m.updateGoto(msg)
		case tableModeMove:
			return m.updateMove(msg)
		case tableModeFilter:
			return m.updateFilter(msg)
		}
		return m.updateNormal(msg)
	}

	return m, nil
}

func (m tableModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// 1-9 jump straight to a page
	if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		m.gotoPage(int(s[0] - '0'))
		return m, nil
	}

	switch {
	case key.Matches(msg, tableKeys.Quit):
		return m, tea.Quit

	case key.Matches(msg, tableKeys.Search):
		m.mode = tableModeSearch
		m.searchInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, tableKeys.Goto):
		m.mode = tableModeGoto
		m.gotoInput.SetValue("")
		m.gotoInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, tableKeys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.ensureRowVisible()
		}

	case key.Matches(msg, tableKeys.Down):
		if m.cursor < m.view.RowCount()-1 {
			m.cursor++
			m.ensureRowVisible()
		}

	case key.Matches(msg, tableKeys.Left):
		if m.colCursor > 0 {
			m.colCursor--
			m.ensureColVisible()
		}

	case key.Matches(msg, tableKeys.Right):
		if m.colCursor < len(m.view.Header)-1 {
			m.colCursor++
			m.ensureColVisible()
		}

	case key.Matches(msg, tableKeys.Sort):
		if m.colCursor < len(m.view.Header) {
			m.sortBy(m.view.Header[m.colCursor].Key)
		}

	case key.Matches(msg, tableKeys.Move):
		source := m.detailKey(m.colCursor)
		if source == "" {
			return m, m.setStatus("Only detail columns can be moved")
		}
		m.drag = m.drag.begin(source)
		m.mode = tableModeMove

	case key.Matches(msg, tableKeys.Filter):
		m.menu = m.menu.toggleOpen(0, bodyStart)
		m.mode = tableModeFilter
		m.ensureRowVisible()

	case key.Matches(msg, tableKeys.NextPage):
		m.state.Pager = m.state.Pager.Next(m.view.Total)
		m.pageChanged()

	case key.Matches(msg, tableKeys.PrevPage):
		m.state.Pager = m.state.Pager.Previous()
		m.pageChanged()

	case key.Matches(msg, tableKeys.FirstPage):
		m.gotoPage(1)

	case key.Matches(msg, tableKeys.LastPage):
		m.gotoPage(m.view.PageCount)

	case key.Matches(msg, tableKeys.PageSize):
		m.cyclePageSize()

	case key.Matches(msg, tableKeys.YankRow):
		cmd := m.yankRow()
		return m, cmd

	case key.Matches(msg, tableKeys.ExportJSON):
		m.exitMode = exitJSON
		return m, tea.Quit

	case key.Matches(msg, tableKeys.ExportRaw):
		m.exitMode = exitRaw
		return m, tea.Quit

	case key.Matches(msg, tableKeys.ExportPlain):
		m.exitMode = exitPlain
		return m, tea.Quit
	}

	return m, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Transitions
// ═══════════════════════════════════════════════════════════════════════════

func (m *tableModel) sortBy(column string) {
	m.state.Sort = m.state.Sort.Toggle(column)
	m.log.Debug("sort", zap.String("column", column), zap.Stringer("direction", m.state.Sort.Direction))
	m.rebuild()
}

func (m *tableModel) reorder(source, target string) {
	m.state.Order = m.state.Order.Reorder(source, target)
	m.log.Debug("reorder", zap.String("source", source), zap.String("target", target),
		zap.Strings("order", m.state.Order.IDs()))
	m.rebuild()
	m.colCursor = m.headerIndex(source)
	m.ensureColVisible()
}

// sendToEnd takes id out of the column order and appends it again, so it
// becomes the last detail column.
func (m *tableModel) sendToEnd(id string) {
	m.state.Order = m.state.Order.ToggleOrRemove(id).ToggleOrRemove(id)
	m.log.Debug("send to end", zap.String("column", id), zap.Strings("order", m.state.Order.IDs()))
	m.rebuild()
	m.ensureColVisible()
}

func (m *tableModel) gotoPage(n int) {
	m.state.Pager = m.state.Pager.Goto(n)
	m.pageChanged()
}

func (m *tableModel) pageChanged() {
	m.cursor = 0
	m.scrollY = 0
	m.rebuild()
	m.log.Debug("page", zap.Int("page", m.state.Pager.Current), zap.Int("pages", m.view.PageCount))
}

func (m *tableModel) cyclePageSize() {
	size := pivot.NextPageSize(m.settings.PageSizes, m.state.Pager.PageSize)
	m.state.Pager = m.state.Pager.SetPageSize(size)
	m.pageChanged()
}

func (m *tableModel) toggleColumn(item dropdownItem) {
	m.state.Filter = toggleItem(m.state.Filter, item)
	m.log.Debug("filter", zap.Strings("hidden", m.state.Filter.Hidden()))
	m.rebuild()
	m.ensureColVisible()
}

// ═══════════════════════════════════════════════════════════════════════════
// Search / Goto prompts
// ═══════════════════════════════════════════════════════════════════════════

func (m tableModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = tableModeNormal
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.setQuery("")
		return m, nil
	case tea.KeyEnter:
		m.mode = tableModeNormal
		m.searchInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	// Live filter as user types
	m.setQuery(m.searchInput.Value())

	return m, cmd
}

func (m *tableModel) setQuery(q string) {
	if q == m.state.Query {
		return
	}
	m.state.Query = q
	m.state.Pager = m.state.Pager.Goto(1)
	m.pageChanged()
}

func (m tableModel) updateGoto(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = tableModeNormal
		m.gotoInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.mode = tableModeNormal
		m.gotoInput.Blur()
		n, err := strconv.Atoi(m.gotoInput.Value())
		if err != nil {
			return m, m.setStatus("Not a page number")
		}
		m.gotoPage(n)
		return m, nil
	}

	var cmd tea.Cmd
	m.gotoInput, cmd = m.gotoInput.Update(msg)
	return m, cmd
}

// ═══════════════════════════════════════════════════════════════════════════
// Column move (keyboard drag)
// ═══════════════════════════════════════════════════════════════════════════

func (m tableModel) updateMove(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, tableKeys.Cancel):
		m.drag = m.drag.cancel()
		m.mode = tableModeNormal

	case key.Matches(msg, tableKeys.Left):
		if i := m.headerIndex(m.drag.hover); i > 1 {
			m.drag = m.drag.over(m.view.Header[i-1].Key)
			m.colCursor = i - 1
			m.ensureColVisible()
		}

	case key.Matches(msg, tableKeys.Right):
		if i := m.headerIndex(m.drag.hover); i >= 1 && i < len(m.view.Header)-1 {
			m.drag = m.drag.over(m.view.Header[i+1].Key)
			m.colCursor = i + 1
			m.ensureColVisible()
		}

	case key.Matches(msg, tableKeys.Move), key.Matches(msg, tableKeys.Sort):
		source, target := m.drag.source, m.drag.hover
		var kind releaseKind
		m.drag, kind = m.drag.release(target)
		m.mode = tableModeNormal
		if kind == releaseDrop {
			m.reorder(source, target)
		}
	}
	return m, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Column filter dropdown
// ═══════════════════════════════════════════════════════════════════════════

func (m tableModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := dropdownItems(m.state.Order, m.state.Filter)
	switch {
	case key.Matches(msg, tableKeys.Filter), key.Matches(msg, tableKeys.Cancel):
		m.closeMenu()
	case key.Matches(msg, tableKeys.Up):
		m.menu = m.menu.move(-1, len(items))
	case key.Matches(msg, tableKeys.Down):
		m.menu = m.menu.move(1, len(items))
	case key.Matches(msg, tableKeys.Toggle):
		if m.menu.cursor < len(items) {
			m.toggleColumn(items[m.menu.cursor])
		}
	case key.Matches(msg, tableKeys.SendToEnd):
		if m.menu.cursor < len(items) && items[m.menu.cursor].id != "" {
			m.sendToEnd(items[m.menu.cursor].id)
			m.menu.cursor = len(items) - 1
		}
	case msg.String() == "q" || msg.String() == "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m *tableModel) closeMenu() {
	m.menu = dropdown{}
	m.mode = tableModeNormal
	m.ensureRowVisible()
}

// ═══════════════════════════════════════════════════════════════════════════
// Mouse
// ═══════════════════════════════════════════════════════════════════════════

func (m tableModel) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	// While the dropdown is open every press goes to it: inside toggles an
	// item, outside closes it.
	if m.menu.open {
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			items := dropdownItems(m.state.Order, m.state.Filter)
			if !m.menu.contains(items, msg.X, msg.Y) {
				m.closeMenu()
				return m, nil
			}
			if i := m.menu.itemAt(items, msg.Y); i >= 0 {
				m.menu.cursor = i
				m.toggleColumn(items[i])
			}
		}
		return m, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if m.cursor > 0 {
			m.cursor--
			m.ensureRowVisible()
		}
		return m, nil
	case tea.MouseButtonWheelDown:
		if m.cursor < m.view.RowCount()-1 {
			m.cursor++
			m.ensureRowVisible()
		}
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		switch {
		case msg.Y == headerLine:
			i := m.headerAt(msg.X)
			switch {
			case i == 0:
				m.colCursor = 0
				m.sortBy(m.view.Header[0].Key)
			case i > 0:
				m.colCursor = i
				m.drag = m.drag.begin(m.detailKey(i))
			}
		case msg.Y == m.footerLine():
			m.clickPager(msg.X)
		default:
			if row := m.rowAt(msg.Y); row >= 0 {
				m.cursor = row
			}
		}

	case tea.MouseActionMotion:
		if m.drag.active() {
			m.drag = m.drag.over(m.dragTarget(msg))
		}

	case tea.MouseActionRelease:
		if m.drag.active() {
			source, target := m.drag.source, m.dragTarget(msg)
			var kind releaseKind
			m.drag, kind = m.drag.release(target)
			switch kind {
			case releaseDrop:
				m.reorder(source, target)
			case releaseClick:
				m.sortBy(source)
			}
		}
	}
	return m, nil
}

// dragTarget is the detail column under the pointer, or "".
func (m tableModel) dragTarget(msg tea.MouseMsg) string {
	if msg.Y != headerLine {
		return ""
	}
	return m.detailKey(m.headerAt(msg.X))
}

func (m *tableModel) clickPager(x int) {
	seg, ok := segmentAt(pagerSegments(m.view), x)
	if !ok || seg.disabled {
		return
	}
	switch seg.kind {
	case segPrev:
		m.state.Pager = m.state.Pager.Previous()
		m.pageChanged()
	case segNext:
		m.state.Pager = m.state.Pager.Next(m.view.Total)
		m.pageChanged()
	case segPage:
		m.gotoPage(seg.page)
	case segSize:
		m.cyclePageSize()
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Status Message (flash notification)
// ═══════════════════════════════════════════════════════════════════════════

type statusClearMsg struct{}

const statusDuration = 2 * time.Second

// setStatus sets a temporary status message that auto-clears.
func (m *tableModel) setStatus(msg string) tea.Cmd {
	m.statusMsg = msg
	m.statusUntil = time.Now().Add(statusDuration)
	return tea.Tick(statusDuration, func(t time.Time) tea.Msg {
		return statusClearMsg{}
	})
}

// ═══════════════════════════════════════════════════════════════════════════
// Clipboard (yank)
// ═══════════════════════════════════════════════════════════════════════════

// selectedRow returns the row under the cursor and the group it belongs to.
func (m tableModel) selectedRow() (pivot.Row, pivot.GroupView, bool) {
	i := m.cursor
	for _, g := range m.view.Groups {
		if i < len(g.Rows) {
			return g.Rows[i], g, true
		}
		i -= len(g.Rows)
	}
	return nil, pivot.GroupView{}, false
}

// yankRow copies the selected row's visible cells (tab-separated) to the
// clipboard.
func (m *tableModel) yankRow() tea.Cmd {
	row, _, ok := m.selectedRow()
	if !ok {
		return nil
	}
	cells := make([]string, len(m.view.Header))
	for i, h := range m.view.Header {
		cells[i] = oneLine(row.Text(h.Key))
	}
	if err := clipboard.WriteAll(strings.Join(cells, "\t")); err != nil {
		return m.setStatus(fmt.Sprintf("clipboard error: %s", err))
	}
	return m.setStatus(fmt.Sprintf("Copied row (%d columns)", len(cells)))
}

// ═══════════════════════════════════════════════════════════════════════════
// Geometry
// ═══════════════════════════════════════════════════════════════════════════

func (m tableModel) cellWidth(i int) int {
	w := m.settings.ColWidth
	if i == 0 {
		w = m.settings.GroupWidth
	}
	if w < minColWidth {
		w = minColWidth
	}
	return w
}

func (m tableModel) getColStartX(colIdx int) int {
	x := 0
	for i := 0; i < colIdx && i < len(m.view.Header); i++ {
		x += m.cellWidth(i) + 2 // +2 for column separator spacing
	}
	return x
}

func (m tableModel) getTotalWidth() int {
	return m.getColStartX(len(m.view.Header))
}

// headerAt maps a screen column on the header line to a header cell, or -1.
func (m tableModel) headerAt(x int) int {
	lx := x + m.scrollX
	for i := range m.view.Header {
		start := m.getColStartX(i)
		if lx >= start && lx < start+m.cellWidth(i) {
			return i
		}
	}
	return -1
}

func (m tableModel) headerIndex(key string) int {
	for i, h := range m.view.Header {
		if h.Key == key {
			return i
		}
	}
	return -1
}

// detailKey returns the key of header cell i if it is a detail column.
func (m tableModel) detailKey(i int) string {
	if i <= 0 || i >= len(m.view.Header) {
		return ""
	}
	return m.view.Header[i].Key
}

func (m tableModel) bodyTop() int {
	if !m.menu.open {
		return bodyStart
	}
	_, h := m.menu.size(dropdownItems(m.state.Order, m.state.Filter))
	return bodyStart + h
}

func (m tableModel) visibleBodyCount() int {
	count := m.height - m.bodyTop() - footerSize
	if count < 1 {
		count = 1
	}
	return count
}

func (m tableModel) footerLine() int {
	_, rowIdx := m.bodyLines()
	n := len(rowIdx) - m.scrollY
	if v := m.visibleBodyCount(); n > v {
		n = v
	}
	if n < 0 {
		n = 0
	}
	return m.bodyTop() + n
}

// rowAt maps a screen line to a page row index, or -1.
func (m tableModel) rowAt(y int) int {
	if y < m.bodyTop() || y >= m.bodyTop()+m.visibleBodyCount() {
		return -1
	}
	_, rowIdx := m.bodyLines()
	i := m.scrollY + y - m.bodyTop()
	if i < 0 || i >= len(rowIdx) {
		return -1
	}
	return rowIdx[i]
}

// ═══════════════════════════════════════════════════════════════════════════
// Scroll Helpers
// ═══════════════════════════════════════════════════════════════════════════

func (m *tableModel) ensureRowVisible() {
	_, rowIdx := m.bodyLines()
	line := 0
	for i, r := range rowIdx {
		if r == m.cursor {
			line = i
			break
		}
	}

	visible := m.visibleBodyCount()
	if line < m.scrollY {
		m.scrollY = line
	} else if line >= m.scrollY+visible {
		m.scrollY = line - visible + 1
	}

	maxY := len(rowIdx) - visible
	if maxY < 0 {
		maxY = 0
	}
	if m.scrollY > maxY {
		m.scrollY = maxY
	}
	if m.scrollY < 0 {
		m.scrollY = 0
	}
}

func (m *tableModel) ensureColVisible() {
	colStartX := m.getColStartX(m.colCursor)
	colEndX := colStartX + m.cellWidth(m.colCursor)
	viewportWidth := m.width

	if colStartX < m.scrollX {
		m.scrollX = colStartX
	} else if colEndX > m.scrollX+viewportWidth {
		m.scrollX = colEndX - viewportWidth
	}

	maxX := m.getTotalWidth() - m.width
	if maxX < 0 {
		maxX = 0
	}
	if m.scrollX > maxX {
		m.scrollX = maxX
	}
	if m.scrollX < 0 {
		m.scrollX = 0
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// ANSI-aware Viewport Slicing
// ═══════════════════════════════════════════════════════════════════════════

// applyViewport extracts a horizontal slice of a string, handling ANSI escape
// codes properly. It returns the portion of the string from visual column
// startX with the given width.
func applyViewport(s string, startX, width int) string {
	if width <= 0 {
		return ""
	}
	if startX < 0 {
		startX = 0
	}

	var result strings.Builder
	result.Grow(width + 64)

	visualPos, outputChars := 0, 0
	var activeStyles []string
	stylesApplied := false

	runes := []rune(s)
	for i := 0; i < len(runes) && outputChars < width; i++ {
		r := runes[i]

		if r == '\x1b' && i+1 < len(runes) && runes[i+1] == '[' {
			// Collect the whole CSI sequence up to its final letter
			j := i + 1
			for j < len(runes) && !((runes[j] >= 'A' && runes[j] <= 'Z') || (runes[j] >= 'a' && runes[j] <= 'z')) {
				j++
			}
			if j >= len(runes) {
				break
			}
			seq := string(runes[i : j+1])
			if runes[j] == 'm' {
				if seq == "\x1b[0m" || seq == "\x1b[m" {
					activeStyles = nil
				} else {
					activeStyles = append(activeStyles, seq)
				}
			}
			if visualPos >= startX {
				result.WriteString(seq)
			}
			i = j
			continue
		}

		if visualPos >= startX {
			if !stylesApplied && len(activeStyles) > 0 {
				for _, style := range activeStyles {
					result.WriteString(style)
				}
				stylesApplied = true
			}
			result.WriteRune(r)
			outputChars++
		}
		visualPos++
	}

	if len(activeStyles) > 0 && outputChars > 0 {
		result.WriteString("\x1b[0m")
	}

	return result.String()
}

// ═══════════════════════════════════════════════════════════════════════════
// View
// ═══════════════════════════════════════════════════════════════════════════

func (m tableModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	var sb strings.Builder

	// Title with table info
	title := fmt.Sprintf("%s: %d entries, %d groups on page", m.settings.Title, m.view.Total, len(m.view.Groups))
	sb.WriteString(styles.Render(styles.HeaderStyle.Foreground(styles.Accent), title))
	if hidden := m.state.Filter.Hidden(); len(hidden) > 0 {
		sb.WriteString(styles.MutedMsg(fmt.Sprintf("  [hidden: %s]", strings.Join(hidden, ", "))))
	}
	if !m.state.Sort.IsZero() {
		sb.WriteString(styles.MutedMsg(fmt.Sprintf("  [sort: %s %s]", m.state.Sort.Key, m.state.Sort.Direction)))
	}
	sb.WriteString("\n")

	// Prompt bar
	switch {
	case m.mode == tableModeSearch:
		sb.WriteString("/" + m.searchInput.View())
	case m.mode == tableModeGoto:
		sb.WriteString(fmt.Sprintf("go to page (1-%d): %s", m.view.PageCount, m.gotoInput.View()))
	case m.mode == tableModeMove:
		sb.WriteString(styles.MutedMsg(fmt.Sprintf("moving %s: ←→ choose target, m drop before target, esc cancel",
			m.settings.Schema.Label(m.drag.source))))
	case m.state.Query != "":
		sb.WriteString(styles.MutedMsg("filter: " + m.state.Query))
	}
	sb.WriteString("\n")

	sb.WriteString(applyViewport(m.renderHeader(), m.scrollX, m.width))
	sb.WriteString("\n")
	sb.WriteString(applyViewport(m.renderRule(), m.scrollX, m.width))
	sb.WriteString("\n")

	if m.menu.open {
		sb.WriteString(m.menu.render(dropdownItems(m.state.Order, m.state.Filter)))
		sb.WriteString("\n")
	}

	lines, _ := m.bodyLines()
	if len(lines) == 0 {
		sb.WriteString(styles.MutedMsg("No results found."))
		sb.WriteString("\n")
	}
	end := m.scrollY + m.visibleBodyCount()
	if end > len(lines) {
		end = len(lines)
	}
	for i := m.scrollY; i < end; i++ {
		sb.WriteString(applyViewport(lines[i], m.scrollX, m.width))
		sb.WriteString("\n")
	}

	// Footer
	sb.WriteString(renderPager(m.view))
	sb.WriteString("\n")
	if m.statusMsg != "" && time.Now().Before(m.statusUntil) {
		sb.WriteString(styles.SuccessMsg(m.statusMsg))
	} else {
		sb.WriteString(styles.MutedMsg(m.helpText()))
	}

	return sb.String()
}

func (m tableModel) helpText() string {
	switch m.mode {
	case tableModeSearch, tableModeGoto:
		return "enter confirm  esc cancel"
	case tableModeMove:
		return "←→ target  m drop  esc cancel"
	case tableModeFilter:
		return "↑↓ choose  space toggle  e send to end  f/esc close"
	}
	return "←→ column  s sort  m move  f columns  n/p page  : goto  z size  / search  y copy  J json  R raw  P table  q quit"
}

// ═══════════════════════════════════════════════════════════════════════════
// Render Table
// ═══════════════════════════════════════════════════════════════════════════

func (m tableModel) renderHeader() string {
	var sb strings.Builder
	for i, h := range m.view.Header {
		text := util.PadOrTruncate(h.Label+" "+h.Indicator, m.cellWidth(i))

		style := styles.HeaderStyle
		switch {
		case m.drag.active() && h.Key == m.drag.source:
			style = styles.DraggingHeaderStyle
		case m.drag.active() && h.Key == m.drag.hover:
			style = styles.DropTargetStyle
		case i == m.colCursor:
			style = styles.SelectedHeaderStyle
		}
		sb.WriteString(styles.Render(style, text))
		sb.WriteString("  ")
	}
	return sb.String()
}

func (m tableModel) renderRule() string {
	var sb strings.Builder
	for i := range m.view.Header {
		sep := strings.Repeat("─", m.cellWidth(i))
		if i == m.colCursor {
			sb.WriteString(styles.Render(styles.InfoStyle, sep))
		} else {
			sb.WriteString(styles.Render(styles.RowRuleStyle, sep))
		}
		sb.WriteString("  ")
	}
	return sb.String()
}

// bodyLines renders every line of the page body. rowIdx holds the page row
// index of each line, or -1 for group rules and secondary-only lines.
func (m tableModel) bodyLines() (lines []string, rowIdx []int) {
	query := strings.ToLower(m.state.Query)
	groupRule := styles.Render(styles.GroupRuleStyle, strings.Repeat("─", m.getTotalWidth()))

	n := 0
	for gi, g := range m.view.Groups {
		if gi > 0 {
			lines = append(lines, groupRule)
			rowIdx = append(rowIdx, -1)
		}
		for ri, r := range g.Rows {
			var first string
			switch ri {
			case 0:
				first = styles.Render(styles.GroupKeyStyle, util.PadOrTruncate(g.Key, m.cellWidth(0)))
			case 1:
				first = styles.Render(styles.SecondaryStyle, util.PadOrTruncate(g.Secondary, m.cellWidth(0)))
			default:
				first = strings.Repeat(" ", m.cellWidth(0))
			}
			lines = append(lines, m.renderRow(first, r, n == m.cursor, query))
			rowIdx = append(rowIdx, n)
			n++
		}
		if len(g.Rows) == 1 && g.Secondary != "" {
			lines = append(lines, styles.Render(styles.SecondaryStyle, util.PadOrTruncate(g.Secondary, m.cellWidth(0))))
			rowIdx = append(rowIdx, -1)
		}
	}
	return lines, rowIdx
}

func (m tableModel) renderRow(first string, row pivot.Row, selected bool, query string) string {
	var sb strings.Builder
	sb.WriteString(first)
	sb.WriteString("  ")
	for i := 1; i < len(m.view.Header); i++ {
		val := oneLine(row.Text(m.view.Header[i].Key))
		cell := util.PadOrTruncate(val, m.cellWidth(i))

		switch {
		case selected && i == m.colCursor:
			cell = styles.Render(styles.ActivePageStyle.Padding(0), cell)
		case selected:
			cell = styles.Render(styles.SelectedStyle, cell)
		case query != "" && strings.Contains(strings.ToLower(val), query):
			cell = styles.Render(styles.MatchStyle, cell)
		}
		sb.WriteString(cell)
		sb.WriteString("  ")
	}
	return sb.String()
}

// ═══════════════════════════════════════════════════════════════════════════
// Pager
// ═══════════════════════════════════════════════════════════════════════════

type segKind int

const (
	segText segKind = iota
	segSize
	segPrev
	segPage
	segNext
)

// segment is one piece of the pager line. Everything but segText is
// clickable.
type segment struct {
	kind     segKind
	text     string
	page     int
	active   bool
	disabled bool
}

func pagerSegments(v pivot.View) []segment {
	segs := []segment{
		{kind: segText, text: v.Summary() + "   "},
		{kind: segSize, text: fmt.Sprintf("%d / page", v.PageSize)},
		{kind: segText, text: "   "},
		{kind: segPrev, text: styles.SymbolPrev, disabled: v.Page <= 1},
	}
	for _, p := range pageWindow(v.Page, v.PageCount) {
		if p == 0 {
			segs = append(segs, segment{kind: segText, text: "…"})
			continue
		}
		segs = append(segs, segment{kind: segPage, text: strconv.Itoa(p), page: p, active: p == v.Page})
	}
	segs = append(segs, segment{kind: segNext, text: styles.SymbolNext, disabled: v.Page >= v.PageCount})
	return segs
}

// pageWindow lists the page buttons to show; 0 marks an elided gap.
func pageWindow(current, count int) []int {
	if count <= 7 {
		pages := make([]int, count)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages
	}
	var pages []int
	last := 0
	for p := 1; p <= count; p++ {
		if p == 1 || p == count || (p >= current-1 && p <= current+1) {
			if last != 0 && p > last+1 {
				pages = append(pages, 0)
			}
			pages = append(pages, p)
			last = p
		}
	}
	return pages
}

func renderSegment(s segment) string {
	switch {
	case s.kind == segText:
		return s.text
	case s.disabled:
		return styles.Render(styles.DisabledStyle.Padding(0, 1), s.text)
	case s.active:
		return styles.Render(styles.ActivePageStyle, s.text)
	default:
		return styles.Render(styles.PageStyle, s.text)
	}
}

func renderPager(v pivot.View) string {
	var sb strings.Builder
	for _, s := range pagerSegments(v) {
		sb.WriteString(renderSegment(s))
	}
	return sb.String()
}

// segmentAt finds the clickable segment at screen column x.
func segmentAt(segs []segment, x int) (segment, bool) {
	pos := 0
	for _, s := range segs {
		w := lipgloss.Width(renderSegment(s))
		if x >= pos && x < pos+w {
			return s, s.kind != segText
		}
		pos += w
	}
	return segment{}, false
}
