// Package highlight composes a base syntax-highlight event stream with a
// sorted, non-overlapping stream of overlay spans into one nested event
// stream, and resolves highlight scopes to styles.
package highlight

import "github.com/charmbracelet/lipgloss"

// Scope identifies a highlight group (e.g. "keyword", "string.escape").
// Scopes are resolved to a Style by a Theme.
type Scope string

// Style is the resolved visual treatment for a Scope. It is a type alias
// for lipgloss.Style so themes compose naturally with the renderer, which
// draws every cell through lipgloss.
type Style = lipgloss.Style

// Theme maps a Scope to a Style. Lookup must be pure (no side effects) so
// it can be called freely while composing highlight streams.
type Theme interface {
	Style(scope Scope) Style
}

// EventKind discriminates the tagged variants of HighlightEvent.
type EventKind uint8

const (
	// EventStart opens a highlight scope; it must be matched by exactly
	// one EventEnd later in the stream (balanced-brackets invariant).
	EventStart EventKind = iota
	// EventEnd closes the most recently opened scope.
	EventEnd
	// EventSource describes a half-open char range rendered with the
	// currently open scope stack applied.
	EventSource
)

// HighlightEvent is one element of a balanced, range-structured stream:
// HighlightStart(scope) / HighlightEnd / Source{start,end}.
type HighlightEvent struct {
	Kind  EventKind
	Scope Scope // valid only when Kind == EventStart
	Start int   // valid only when Kind == EventSource
	End   int   // valid only when Kind == EventSource
}

// Start returns a HighlightStart(scope) event.
func Start(scope Scope) HighlightEvent { return HighlightEvent{Kind: EventStart, Scope: scope} }

// End returns a HighlightEnd event.
func End() HighlightEvent { return HighlightEvent{Kind: EventEnd} }

// Source returns a Source{start,end} event.
func Source(start, end int) HighlightEvent {
	return HighlightEvent{Kind: EventSource, Start: start, End: end}
}

// Span is a single overlay highlight: a non-overlapping, sorted
// range-with-scope used to augment the base highlight stream.
type Span struct {
	Start int
	End   int
	Scope Scope
}
