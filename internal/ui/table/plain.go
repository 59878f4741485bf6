package table

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/imgajeed76/tracktable/internal/pivot"
)

// jsonGroup is the JSON shape of one group.
type jsonGroup struct {
	Key       string           `json:"key"`
	Secondary string           `json:"secondary,omitempty"`
	Rows      []map[string]any `json:"rows"`
}

// jsonPage is the JSON shape of one page.
type jsonPage struct {
	Page      int         `json:"page"`
	PageCount int         `json:"page_count"`
	PageSize  int         `json:"page_size"`
	Total     int         `json:"total"`
	Columns   []string    `json:"columns"`
	Groups    []jsonGroup `json:"groups"`
}

// PrintJSONResults writes the pages as a JSON array. Each row carries the
// grouping field and the visible detail columns only.
func PrintJSONResults(w io.Writer, views []pivot.View) error {
	out := make([]jsonPage, 0, len(views))
	for _, v := range views {
		page := jsonPage{
			Page:      v.Page,
			PageCount: v.PageCount,
			PageSize:  v.PageSize,
			Total:     v.Total,
			Columns:   columnKeys(v),
			Groups:    make([]jsonGroup, 0, len(v.Groups)),
		}
		for _, g := range v.Groups {
			jg := jsonGroup{Key: g.Key, Secondary: g.Secondary, Rows: make([]map[string]any, 0, len(g.Rows))}
			for _, r := range g.Rows {
				obj := make(map[string]any, len(page.Columns))
				for _, k := range page.Columns {
					obj[k] = r[k]
				}
				jg.Rows = append(jg.Rows, obj)
			}
			page.Groups = append(page.Groups, jg)
		}
		out = append(out, page)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// PrintRawResults writes tab-separated rows with a header line. The group
// key is repeated on every row so the output can be piped into sort/cut.
func PrintRawResults(w io.Writer, views []pivot.View) error {
	if len(views) == 0 {
		return nil
	}
	labels := make([]string, len(views[0].Header))
	for i, h := range views[0].Header {
		labels[i] = h.Label
	}
	if _, err := fmt.Fprintln(w, strings.Join(labels, "\t")); err != nil {
		return err
	}
	for _, v := range views {
		keys := columnKeys(v)
		for _, g := range v.Groups {
			for _, r := range g.Rows {
				cells := make([]string, len(keys))
				for i, k := range keys {
					cells[i] = oneLine(r.Text(k))
				}
				if _, err := fmt.Fprintln(w, strings.Join(cells, "\t")); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// PrintPlainTable prints a properly aligned grouped table for non-TTY
// output. The group key sits on the first row of its group and the
// secondary value on the second. Shows full content without truncation.
func PrintPlainTable(w io.Writer, v pivot.View) {
	if len(v.Groups) == 0 {
		fmt.Fprintln(w, "No results found.")
		fmt.Fprintln(w, v.Summary())
		return
	}

	keys := columnKeys(v)
	lines := plainLines(v)

	// Calculate column widths based on actual content (no truncation)
	colWidths := make([]int, len(v.Header))
	for i, h := range v.Header {
		colWidths[i] = lipgloss.Width(headerText(h))
	}
	for _, line := range lines {
		for i, val := range line {
			if w := lipgloss.Width(val); w > colWidths[i] {
				colWidths[i] = w
			}
		}
	}

	// Print header
	cells := make([]string, len(v.Header))
	for i, h := range v.Header {
		cells[i] = pad(headerText(h), colWidths[i])
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))

	// Print separator
	for i, cw := range colWidths {
		cells[i] = strings.Repeat("─", cw)
	}
	fmt.Fprintln(w, strings.Join(cells, "  "))

	for _, line := range lines {
		if line == nil {
			fmt.Fprintln(w)
			continue
		}
		for i := range keys {
			cells[i] = pad(line[i], colWidths[i])
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s (page %d of %d)\n", v.Summary(), v.Page, v.PageCount)
}

// plainLines lays out the page as cell rows; a nil entry is the blank line
// between groups.
func plainLines(v pivot.View) [][]string {
	keys := columnKeys(v)
	var lines [][]string
	for gi, g := range v.Groups {
		if gi > 0 {
			lines = append(lines, nil)
		}
		for ri, r := range g.Rows {
			line := make([]string, len(keys))
			switch ri {
			case 0:
				line[0] = g.Key
			case 1:
				line[0] = g.Secondary
			}
			for i := 1; i < len(keys); i++ {
				line[i] = oneLine(r.Text(keys[i]))
			}
			lines = append(lines, line)
		}
		if len(g.Rows) == 1 && g.Secondary != "" {
			line := make([]string, len(keys))
			line[0] = g.Secondary
			lines = append(lines, line)
		}
	}
	return lines
}

// columnKeys returns the field key of every header cell, primary first.
func columnKeys(v pivot.View) []string {
	keys := make([]string, len(v.Header))
	for i, h := range v.Header {
		keys[i] = h.Key
	}
	return keys
}

func headerText(h pivot.HeaderCell) string {
	if h.Indicator == pivot.IndicatorNone {
		return h.Label
	}
	return h.Label + " " + h.Indicator
}

func oneLine(s string) string {
	return strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(s)
}

// pad adds spaces to reach the desired width (no truncation).
func pad(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
