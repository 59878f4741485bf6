package styles

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
)

// Symbols - Unicode with ASCII fallbacks
const (
	SymbolSuccess   = "✓"
	SymbolChecked   = "☑"
	SymbolUnchecked = "☐"
	SymbolPrev      = "‹"
	SymbolNext      = "›"
)

var forceNoColor atomic.Bool

// SetNoColor disables colors for the rest of the process (--no-color).
func SetNoColor(v bool) {
	forceNoColor.Store(v)
}

// NoColor checks if colors should be disabled
func NoColor() bool {
	return forceNoColor.Load() || os.Getenv("NO_COLOR") != "" || os.Getenv("TRACKTABLE_NO_COLOR") != ""
}

// Semantic styles - use these instead of raw colors
var (
	// Message types
	SuccessStyle = lipgloss.NewStyle().Foreground(Success)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Error)
	InfoStyle    = lipgloss.NewStyle().Foreground(Info)
	MutedStyle   = lipgloss.NewStyle().Foreground(Muted)

	// Table
	HeaderStyle         = lipgloss.NewStyle().Bold(true).Foreground(Info)
	SelectedHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(Accent).Underline(true)
	DraggingHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorDragging).Faint(true)
	DropTargetStyle     = lipgloss.NewStyle().Bold(true).Foreground(ColorDropZone)
	GroupKeyStyle       = lipgloss.NewStyle().Bold(true).Foreground(ColorGroupKey)
	SecondaryStyle      = lipgloss.NewStyle().Foreground(ColorSecondary)
	GroupRuleStyle      = lipgloss.NewStyle().Foreground(ColorGroupRule)
	RowRuleStyle        = lipgloss.NewStyle().Foreground(ColorRowRule)
	MatchStyle          = lipgloss.NewStyle().Foreground(Warning)

	// Interactive TUI
	SelectedStyle = lipgloss.NewStyle().
			Background(BgHighlight).
			Foreground(TextPrimary)

	// Pagination
	PageStyle       = lipgloss.NewStyle().Padding(0, 1)
	ActivePageStyle = lipgloss.NewStyle().Padding(0, 1).Background(Accent).Foreground(TextPrimary)
	DisabledStyle   = lipgloss.NewStyle().Foreground(BgBorder)

	// Dropdown
	DropdownStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BgBorder).
			Padding(0, 1)
)

// ═══════════════════════════════════════════════════════════════════════════
// Render functions - centralized formatting with NoColor support
// ═══════════════════════════════════════════════════════════════════════════

// Render applies a style if colors are enabled
func Render(s lipgloss.Style, text string) string {
	if NoColor() {
		return text
	}
	return s.Render(text)
}

// Checkbox returns the checkbox glyph for a dropdown entry.
func Checkbox(checked bool) string {
	if NoColor() {
		if checked {
			return "[x]"
		}
		return "[ ]"
	}
	if checked {
		return SymbolChecked
	}
	return SymbolUnchecked
}

// ═══════════════════════════════════════════════════════════════════════════
// Message formatters - structured output
// ═══════════════════════════════════════════════════════════════════════════

// SuccessMsg formats a success message with checkmark
func SuccessMsg(msg string) string {
	symbol := SymbolSuccess
	if NoColor() {
		symbol = "+"
	}
	return fmt.Sprintf("%s %s", Render(SuccessStyle, symbol), msg)
}

// ErrorMsg formats an error message
func ErrorMsg(title string) string {
	return Render(ErrorStyle, "Error: "+title)
}

// MutedMsg formats muted/secondary text
func MutedMsg(msg string) string {
	return Render(MutedStyle, msg)
}
