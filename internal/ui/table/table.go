// Package table renders pivot views. It supports an interactive TUI
// (header sorting, drag-to-reorder columns, a column filter dropdown,
// paging and search), plain grouped text, JSON output and raw
// tab-separated output.
package table

import (
	"io"
	"os"

	"github.com/imgajeed76/tracktable/internal/pivot"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// DisplayOptions controls how results are rendered.
type DisplayOptions struct {
	// JSON outputs the groups as a JSON array of pages.
	JSON bool
	// Raw outputs results as tab-separated values (for piping).
	Raw bool
	// NoPager forces plain table output even on a TTY.
	NoPager bool
	// All prints every page instead of the current one (non-interactive only).
	All bool
}

// Settings configures a table instance.
type Settings struct {
	Title      string
	Schema     pivot.Schema
	State      pivot.State
	PageSizes  []int
	ColWidth   int
	GroupWidth int
	Mouse      bool
	Logger     *zap.Logger
}

func (s Settings) withDefaults() Settings {
	if len(s.PageSizes) == 0 {
		s.PageSizes = pivot.DefaultPageSizes
	}
	if s.ColWidth <= 0 {
		s.ColWidth = defaultColWidth
	}
	if s.GroupWidth <= 0 {
		s.GroupWidth = defaultGroupWidth
	}
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}
	return s
}

// DisplayResults picks the right output mode based on options and
// environment, then renders rows.
func DisplayResults(rows []pivot.Row, s Settings, opts DisplayOptions) error {
	s = s.withDefaults()

	if opts.Raw {
		return PrintRawResults(os.Stdout, Pages(rows, s.Schema, s.State, opts.All))
	}

	if opts.JSON {
		return PrintJSONResults(os.Stdout, Pages(rows, s.Schema, s.State, opts.All))
	}

	if !Interactive(opts, len(rows)) {
		PrintPages(os.Stdout, Pages(rows, s.Schema, s.State, opts.All))
		return nil
	}

	return RunTableTUI(rows, s)
}

// Interactive reports whether DisplayResults would start the TUI.
func Interactive(opts DisplayOptions, rowCount int) bool {
	if opts.Raw || opts.JSON || opts.NoPager || rowCount == 0 {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Pages builds the current page, or every page when all is set.
func Pages(rows []pivot.Row, schema pivot.Schema, state pivot.State, all bool) []pivot.View {
	v, state := pivot.Build(rows, schema, state)
	if !all {
		return []pivot.View{v}
	}
	views := make([]pivot.View, 0, v.PageCount)
	for p := 1; p <= v.PageCount; p++ {
		state.Pager = state.Pager.Goto(p)
		pv, _ := pivot.Build(rows, schema, state)
		views = append(views, pv)
	}
	return views
}

// PrintPages prints each view as a plain table, separated by a blank line.
func PrintPages(w io.Writer, views []pivot.View) {
	for i, v := range views {
		if i > 0 {
			io.WriteString(w, "\n")
		}
		PrintPlainTable(w, v)
	}
}
