package styles

import "github.com/charmbracelet/lipgloss"

// Color palette. Dark mode optimized, semantic colors.
var (
	// Primary semantic colors
	Accent  = lipgloss.Color("#1D82F5") // table blue - highlights, interactive
	Success = lipgloss.Color("#10B981") // emerald-500 - confirmations
	Warning = lipgloss.Color("#F59E0B") // amber-500 - search matches
	Error   = lipgloss.Color("#EF4444") // red-500 - errors
	Info    = lipgloss.Color("#AAD1FC") // light blue - header text, group rules
	Muted   = lipgloss.Color("#6B7280") // gray-500 - secondary text

	// Text colors
	TextPrimary   = lipgloss.Color("#F9FAFB") // gray-50 - main text
	TextSecondary = lipgloss.Color("#9CA3AF") // gray-400 - roles, labels

	// Background colors
	BgHighlight = lipgloss.Color("#1F2937") // gray-800 - selected row
	BgBorder    = lipgloss.Color("#374151") // gray-700 - borders, dropdown
)

// Semantic color aliases
var (
	ColorGroupKey  = Accent        // employee name in the group cell
	ColorSecondary = TextSecondary // role under the name
	ColorGroupRule = Info          // rule between groups
	ColorRowRule   = BgBorder      // rule between rows of one group
	ColorDragging  = Warning       // header being dragged
	ColorDropZone  = Success       // drop target header
)
