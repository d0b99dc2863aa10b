package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ══════════════════════════════════════════════════════════════════════════════
// DESIGN TOKENS - Layout and colors
// ══════════════════════════════════════════════════════════════════════════════

// Layout thresholds
const (
	SidebarWidth        = 24
	SplitViewThreshold  = 100 // below this the locations page hides the detail panel
	MinDetailPaneWidth  = 36
	DefaultWindowWidth  = 120
	DefaultWindowHeight = 40
)

// ══════════════════════════════════════════════════════════════════════════════
// COLOR PALETTE - Adaptive colors for light and dark terminals
// ══════════════════════════════════════════════════════════════════════════════

var (
	ColorBgHighlight = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}
	ColorText        = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorMuted       = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}

	ColorPrimary = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorDanger  = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}

	// Label chip backgrounds, picked by hashing the label name
	labelChipBgs = []lipgloss.AdaptiveColor{
		{Light: "#D4EDDA", Dark: "#1A3D2A"},
		{Light: "#D1ECF1", Dark: "#1A3344"},
		{Light: "#FFE8CC", Dark: "#3D2A1A"},
		{Light: "#E8DDFF", Dark: "#2A1A44"},
		{Light: "#F8D7DA", Dark: "#3D1A1A"},
		{Light: "#FFF3CD", Dark: "#3D3D1A"},
	}
)

// ══════════════════════════════════════════════════════════════════════════════
// PANEL STYLES - For split view layouts
// ══════════════════════════════════════════════════════════════════════════════

var (
	// PanelStyle is the default style for unfocused panels
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBgHighlight)

	// FocusedPanelStyle is the style for focused panels
	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary)
)

// ══════════════════════════════════════════════════════════════════════════════
// BADGES
// ══════════════════════════════════════════════════════════════════════════════

// RenderLabelChip renders a label name as a colored chip. A label's color
// is stable across renders. An explicit hex color from the backend wins.
func RenderLabelChip(name, color string) string {
	style := lipgloss.NewStyle().Foreground(ColorText).Padding(0, 1)
	if strings.HasPrefix(color, "#") {
		style = style.Background(ThemeBg(color))
	} else {
		style = style.Background(labelChipBgs[chipIndex(name)])
	}
	return style.Render(name)
}

func chipIndex(name string) int {
	var h uint32
	for _, r := range name {
		h = h*31 + uint32(r)
	}
	return int(h % uint32(len(labelChipBgs)))
}

// RenderCountBadge renders a child count like "(3)".
func RenderCountBadge(n int) string {
	if n <= 0 {
		return ""
	}
	return lipgloss.NewStyle().Foreground(ColorMuted).Render(fmt.Sprintf("(%d)", n))
}

// RenderCheckbox renders a selection checkbox for multi-select lists.
func RenderCheckbox(checked bool) string {
	if checked {
		return lipgloss.NewStyle().Foreground(ColorSuccess).Render("[x]")
	}
	return lipgloss.NewStyle().Foreground(ColorMuted).Render("[ ]")
}

// ══════════════════════════════════════════════════════════════════════════════
// DIVIDERS AND SEPARATORS
// ══════════════════════════════════════════════════════════════════════════════

// RenderDivider renders a horizontal divider line
func RenderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(ColorBgHighlight).
		Render(strings.Repeat("─", width))
}
