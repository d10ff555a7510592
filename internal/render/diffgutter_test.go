package render

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/nels-koby/glint/internal/diff"
	"github.com/nels-koby/glint/internal/highlight"
	"github.com/nels-koby/glint/internal/rope"
)

func TestDiffGutterMarksModifiedLine(t *testing.T) {
	base := rope.New("one\ntwo\nthree\n")
	doc := rope.New("one\nTWO\nthree\n")
	w := diff.New(base, doc)
	defer w.Close()

	f := newFormatter("one\nTWO\nthree\n")
	mgr := NewDecorationManager()
	mgr.AddDecoration(&DiffGutter{Diffs: w.GetLineDiffs(), Theme: highlight.DefaultTheme()})

	surface := RenderText(f, highlight.NewEventSlice(nil), highlight.DefaultTheme(), mgr, 40, 10, 0)
	lines := surface.Lines()
	// The marker is styled, so compare the visible text without escapes.
	modified, unchanged := ansi.Strip(lines[1]), ansi.Strip(lines[0])
	if !strings.HasPrefix(modified, "~") {
		t.Fatalf("expected modified line to be prefixed with %q, got %q", "~", lines[1])
	}
	if strings.HasPrefix(unchanged, "~") || strings.HasPrefix(unchanged, "+") || strings.HasPrefix(unchanged, "-") {
		t.Fatalf("expected unchanged line to have no gutter marker, got %q", lines[0])
	}
}
