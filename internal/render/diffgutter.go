package render

import (
	"github.com/nels-koby/glint/internal/diff"
	"github.com/nels-koby/glint/internal/highlight"
	"github.com/nels-koby/glint/internal/textfmt"
)

// DiffGutter is a Decoration that paints a change-status marker in
// front of each visual line's first column, reading from a
// diff.Worker's published LineDiffs snapshot.
type DiffGutter struct {
	BaseDecoration
	Diffs *diff.LineDiffs
	Theme highlight.Theme
}

const (
	diffMarkerAdded    = "+"
	diffMarkerDeleted  = "-"
	diffMarkerModified = "~"
)

// DecorateLine writes a one-column change marker at the start of the
// visual line, for the first visual line of a changed document line
// only (continuation lines of a soft-wrapped changed line stay blank).
func (g *DiffGutter) DecorateLine(r *TextRenderer, pos LinePos) {
	if g.Diffs == nil || !pos.FirstVisualLine {
		return
	}
	op, ok := g.Diffs.Get(pos.DocLine)
	if !ok || op == diff.LineUnchanged {
		return
	}

	var marker string
	var scope highlight.Scope
	switch op {
	case diff.LineAdded:
		marker, scope = diffMarkerAdded, "diff.added"
	case diff.LineDeleted:
		marker, scope = diffMarkerDeleted, "diff.deleted"
	case diff.LineModified:
		marker, scope = diffMarkerModified, "diff.modified"
	default:
		return
	}

	style := r.TextStyle
	if g.Theme != nil {
		style = g.Theme.Style(scope).Inherit(r.TextStyle)
	}
	r.DrawGrapheme(marker, style, new(int), new(bool), textfmt.Position{Row: pos.VisualLine, Col: 0})
}
