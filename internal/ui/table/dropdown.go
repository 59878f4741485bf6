package table

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/imgajeed76/tracktable/internal/pivot"
	"github.com/imgajeed76/tracktable/internal/ui/styles"
	"github.com/imgajeed76/tracktable/internal/util"
)

const selectAllLabel = "Select All"

// dropdownItem is one checkbox line. The first item is "Select All" and
// has an empty id.
type dropdownItem struct {
	id      string
	label   string
	checked bool
}

// dropdown is the column filter menu. Its items are derived from the
// current column order and filter every time, so it only stores whether
// it is open, the highlighted line and where its box was drawn.
type dropdown struct {
	open   bool
	cursor int
	// top-left corner of the box in screen cells, set when rendered
	x, y int
}

// dropdownItems lists "Select All" followed by every column in order.
func dropdownItems(order pivot.ColumnOrder, filter pivot.FilterSet) []dropdownItem {
	ids := order.IDs()
	items := make([]dropdownItem, 0, len(ids)+1)
	items = append(items, dropdownItem{label: selectAllLabel, checked: filter.AllShown()})
	for _, id := range ids {
		items = append(items, dropdownItem{
			id:      id,
			label:   util.StartCase(id),
			checked: !filter.IsHidden(id),
		})
	}
	return items
}

// toggleItem flips one checkbox and returns the resulting filter.
func toggleItem(filter pivot.FilterSet, item dropdownItem) pivot.FilterSet {
	if item.id == "" {
		if item.checked {
			return filter.HideAll()
		}
		return filter.ShowAll()
	}
	if item.checked {
		return filter.Hide(item.id)
	}
	return filter.Show(item.id)
}

func (d dropdown) toggleOpen(x, y int) dropdown {
	if d.open {
		return dropdown{}
	}
	return dropdown{open: true, x: x, y: y}
}

func (d dropdown) move(delta, n int) dropdown {
	if n == 0 {
		return d
	}
	d.cursor = (d.cursor + delta + n) % n
	return d
}

// render draws the box. The width and height of the returned block are
// what contains uses for hit testing.
func (d dropdown) render(items []dropdownItem) string {
	lines := make([]string, len(items))
	for i, it := range items {
		line := styles.Checkbox(it.checked) + " " + it.label
		if i == d.cursor {
			line = styles.Render(styles.SelectedStyle, line)
		}
		lines[i] = line
	}
	if styles.NoColor() {
		return asciiBox(lines)
	}
	return styles.DropdownStyle.Render(strings.Join(lines, "\n"))
}

// size returns the rendered box dimensions for items.
func (d dropdown) size(items []dropdownItem) (int, int) {
	box := d.render(items)
	return lipgloss.Width(box), lipgloss.Height(box)
}

// contains reports whether screen cell (x, y) is inside the box.
func (d dropdown) contains(items []dropdownItem, x, y int) bool {
	if !d.open {
		return false
	}
	w, h := d.size(items)
	return x >= d.x && x < d.x+w && y >= d.y && y < d.y+h
}

// itemAt maps a screen row inside the box to an item index, or -1 for the
// border rows.
func (d dropdown) itemAt(items []dropdownItem, y int) int {
	i := y - d.y - 1
	if i < 0 || i >= len(items) {
		return -1
	}
	return i
}

func asciiBox(lines []string) string {
	width := 0
	for _, l := range lines {
		if w := lipgloss.Width(l); w > width {
			width = w
		}
	}
	var sb strings.Builder
	rule := "+" + strings.Repeat("-", width+2) + "+"
	sb.WriteString(rule + "\n")
	for _, l := range lines {
		sb.WriteString("| " + l + strings.Repeat(" ", width-lipgloss.Width(l)) + " |\n")
	}
	sb.WriteString(rule)
	return sb.String()
}
