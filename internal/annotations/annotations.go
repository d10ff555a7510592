// Package annotations implements a layered, position-indexed annotation
// store: inline virtual text, per-grapheme overlays, and reserved
// virtual lines, each a sorted layer queried with a monotonic forward
// cursor during one render pass.
//
// Each layer holds a plain int cursor field, mutated through the
// *TextAnnotations the caller already owns for the duration of a render
// pass; callers must not share one TextAnnotations across concurrent
// render passes.
package annotations

import (
	"sort"

	"github.com/nels-koby/glint/internal/highlight"
)

// InlineAnnotation is virtual text inserted before the document grapheme
// at CharIdx. Multiple annotations may share a CharIdx; they are emitted
// in layer registration order.
type InlineAnnotation struct {
	CharIdx   int
	Text      string
	Highlight highlight.Scope
}

// Overlay replaces the document grapheme starting at CharIdx for display
// purposes. When overlays from different layers collide, the
// later-registered layer wins.
type Overlay struct {
	CharIdx   int
	Grapheme  string
	Highlight highlight.Scope
	// HasHighlight distinguishes "no highlight" from the zero Scope value
	// being a meaningful scope name.
	HasHighlight bool
}

// LineAnnotation reserves Height extra blank visual rows after the next
// line break following AnchorCharIdx.
type LineAnnotation struct {
	AnchorCharIdx int
	Height        int
}

// layer holds one sorted, registration-ordered annotation vector plus its
// forward cursor.
type layer[T any] struct {
	items   []T
	cursor  int
	charIdx func(T) int
}

func newLayer[T any](items []T, charIdx func(T) int) *layer[T] {
	return &layer[T]{items: items, charIdx: charIdx}
}

// resetPos relocates the cursor to the first item with charIdx(item) >= pos
// via binary search, since items are sorted ascending.
func (l *layer[T]) resetPos(pos int) {
	l.cursor = sort.Search(len(l.items), func(i int) bool {
		return l.charIdx(l.items[i]) >= pos
	})
}

// consume returns the item at the cursor if its charIdx equals pos,
// advancing the cursor past it.
func (l *layer[T]) consume(pos int) (T, bool) {
	var zero T
	if l.cursor >= len(l.items) {
		return zero, false
	}
	item := l.items[l.cursor]
	if l.charIdx(item) == pos {
		l.cursor++
		return item, true
	}
	return zero, false
}

// TextAnnotations is a layered annotation store: zero or more layers each
// of inline annotations, overlays, and line annotations, queried in
// strict non-decreasing char-index order during rendering.
type TextAnnotations struct {
	inline []*layer[InlineAnnotation]
	overlay []*layer[Overlay]
	line    []*layer[LineAnnotation]
}

// New returns an empty TextAnnotations store.
func New() *TextAnnotations { return &TextAnnotations{} }

// AddInlineAnnotations registers one layer of inline annotations, which
// must already be sorted ascending by CharIdx. Returns the receiver so
// calls can be chained.
func (a *TextAnnotations) AddInlineAnnotations(items []InlineAnnotation) *TextAnnotations {
	a.inline = append(a.inline, newLayer(items, func(i InlineAnnotation) int { return i.CharIdx }))
	return a
}

// AddOverlay registers one layer of overlays, sorted ascending by CharIdx.
func (a *TextAnnotations) AddOverlay(items []Overlay) *TextAnnotations {
	a.overlay = append(a.overlay, newLayer(items, func(o Overlay) int { return o.CharIdx }))
	return a
}

// AddLineAnnotation registers one layer of line annotations, sorted
// ascending by AnchorCharIdx.
func (a *TextAnnotations) AddLineAnnotation(items []LineAnnotation) *TextAnnotations {
	a.line = append(a.line, newLayer(items, func(l LineAnnotation) int { return l.AnchorCharIdx }))
	return a
}

// ClearLineAnnotations drops all registered line-annotation layers.
func (a *TextAnnotations) ClearLineAnnotations() { a.line = nil }

// ResetPos relocates every layer's cursor to the first annotation with
// char_idx >= charIdx. Must be called before starting or restarting a
// render pass; querying out of order without a preceding ResetPos is a
// programmer contract violation and yields undefined results.
func (a *TextAnnotations) ResetPos(charIdx int) {
	for _, l := range a.inline {
		l.resetPos(charIdx)
	}
	for _, l := range a.overlay {
		l.resetPos(charIdx)
	}
	for _, l := range a.line {
		l.resetPos(charIdx)
	}
}

// NextInlineAnnotationAt returns the first layer's current annotation
// whose CharIdx equals p, in registration order, advancing that layer's
// cursor. Returns ok == false if no layer has a pending annotation at p.
func (a *TextAnnotations) NextInlineAnnotationAt(p int) (InlineAnnotation, bool) {
	for _, l := range a.inline {
		if annot, ok := l.consume(p); ok {
			return annot, true
		}
	}
	return InlineAnnotation{}, false
}

// OverlayAt returns the last (highest-layer) overlay whose current
// annotation has CharIdx == p, advancing every matching layer's cursor
// (so lower layers don't desync even though they lose).
func (a *TextAnnotations) OverlayAt(p int) (Overlay, bool) {
	var result Overlay
	found := false
	for _, l := range a.overlay {
		if ov, ok := l.consume(p); ok {
			result = ov
			found = true
		}
	}
	return result, found
}

// AnnotationLinesAt sums Height over every line-annotation layer for
// every annotation anchored at p, advancing cursors past them.
func (a *TextAnnotations) AnnotationLinesAt(p int) int {
	total := 0
	for _, l := range a.line {
		for l.cursor < len(l.items) && l.items[l.cursor].AnchorCharIdx == p {
			total += l.items[l.cursor].Height
			l.cursor++
		}
	}
	return total
}

// OverlayHighlight is a single highlighted overlay position, the
// flattened form OverlayHighlights returns.
type OverlayHighlight struct {
	Scope      highlight.Scope
	CharStart  int
	CharEnd    int // exclusive; always CharStart+1, grapheme boundaries are handled by the renderer
}

// OverlayHighlights walks [start, end) and collects a flat list of
// (scope, range) pairs for every position with a highlighted overlay,
// without running the full formatter. Ported from
// TextAnnotations::collect_overlay_highlights in text_annotations.rs; a
// caller that only needs overlay-driven highlighting (not the full
// grapheme stream) can use this directly. Calling this advances the
// overlay layers' cursors exactly as OverlayAt would, so callers should
// ResetPos(start) first and not otherwise interleave it with formatting
// over the same range.
func (a *TextAnnotations) OverlayHighlights(start, end int) []OverlayHighlight {
	var out []OverlayHighlight
	for charIdx := start; charIdx < end; charIdx++ {
		if ov, ok := a.OverlayAt(charIdx); ok && ov.HasHighlight {
			out = append(out, OverlayHighlight{Scope: ov.Highlight, CharStart: charIdx, CharEnd: charIdx + 1})
		}
	}
	return out
}
