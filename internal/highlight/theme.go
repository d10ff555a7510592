package highlight

import "github.com/charmbracelet/lipgloss"

// MapTheme is a Theme backed by a plain scope-to-style map, the simplest
// concrete Theme and the one the demo program and tests use. Unknown
// scopes resolve to the zero Style (no styling) — a missing entry is
// not an error.
type MapTheme map[Scope]Style

// Style implements Theme.
func (m MapTheme) Style(scope Scope) Style {
	return m[scope]
}

// DefaultTheme returns a small built-in scope palette, pre-built once
// rather than per frame.
func DefaultTheme() MapTheme {
	return MapTheme{
		"keyword":        lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		"string":         lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		"comment":        lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true),
		"function":       lipgloss.NewStyle().Foreground(lipgloss.Color("111")),
		"number":         lipgloss.NewStyle().Foreground(lipgloss.Color("215")),
		"diff.added":     lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		"diff.deleted":   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		"diff.modified":  lipgloss.NewStyle().Foreground(lipgloss.Color("221")),
		"ui.virtual":     lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		"ui.cursor":      lipgloss.NewStyle().Reverse(true),
		"ui.selection":   lipgloss.NewStyle().Background(lipgloss.Color("238")),
		"markup.overlay": lipgloss.NewStyle().Foreground(lipgloss.Color("180")),
	}
}
