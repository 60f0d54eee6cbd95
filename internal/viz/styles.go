package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the colour scheme of the live view.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Warning lipgloss.Color
}

var themes = []Theme{
	{
		Name:    "ocean",
		Primary: lipgloss.Color("86"),
		Accent:  lipgloss.Color("49"),
		Text:    lipgloss.Color("252"),
		Muted:   lipgloss.Color("245"),
		Warning: lipgloss.Color("#ffaa00"),
	},
	{
		Name:    "retro",
		Primary: lipgloss.Color("#00ff00"),
		Accent:  lipgloss.Color("#88ff88"),
		Text:    lipgloss.Color("#00cc00"),
		Muted:   lipgloss.Color("#006600"),
		Warning: lipgloss.Color("#ffff00"),
	},
	{
		Name:    "mono",
		Primary: lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#cccccc"),
		Text:    lipgloss.Color("#bbbbbb"),
		Muted:   lipgloss.Color("#777777"),
		Warning: lipgloss.Color("#ffffff"),
	},
}

func ThemeNames() []string {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}

// styles are derived from a theme whenever the theme changes.
type styles struct {
	canvas lipgloss.Style
	stats  lipgloss.Style
	header lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	status lipgloss.Style
	paused lipgloss.Style
	graph  lipgloss.Style
	help   lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		canvas: lipgloss.NewStyle().Padding(1, 2).Foreground(t.Accent),
		stats:  lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(t.Muted).Padding(1, 2).Width(42),
		header: lipgloss.NewStyle().Foreground(t.Primary).Bold(true).MarginBottom(1),
		label:  lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		value:  lipgloss.NewStyle().Foreground(t.Text),
		status: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		paused: lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
		graph:  lipgloss.NewStyle().Foreground(t.Accent).Padding(1, 0),
		help:   lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
	}
}

// Table styles for CLI listings.
var (
	TableHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	TableCell   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	Subtle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	Highlight   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
)

// SparklineChart renders a mini sparkline from values
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := max(len(values)/width, 1)

	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / rng
		idx := min(max(int(norm*float64(len(chars)-1)), 0), len(chars)-1)
		b.WriteRune(chars[idx])
	}
	return b.String()
}

// ProgressBar renders a bar of the given width filled to percent (0..1).
func ProgressBar(percent float64, width int) string {
	filled := min(max(int(percent*float64(width)), 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
