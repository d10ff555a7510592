package textfmt

import (
	"testing"

	"github.com/nels-koby/glint/internal/annotations"
	"github.com/nels-koby/glint/internal/grapheme"
	"github.com/nels-koby/glint/internal/rope"
)

func formatAll(t *testing.T, text string, cfg TextFormat, ann *annotations.TextAnnotations) ([]FormattedGrapheme, []Position) {
	t.Helper()
	r := rope.New(text)
	f, _ := NewAtPrevBlock(r, cfg, ann, 0)
	return Collect(f)
}

func TestNoSoftWrapPassesThroughUnchanged(t *testing.T) {
	cfg := DefaultTextFormat()
	graphemes, positions := formatAll(t, "hello\nworld", cfg, nil)

	// "hello\nworld" + EOF sentinel = 5 + 1(newline) + 5 + 1(EOF) = 12
	if len(graphemes) != 12 {
		t.Fatalf("expected 12 graphemes (incl. EOF sentinel), got %d", len(graphemes))
	}
	if positions[0] != (Position{0, 0}) {
		t.Fatalf("expected first grapheme at (0,0), got %+v", positions[0])
	}
	// position of 'w' in "world", right after the newline
	if positions[6] != (Position{1, 0}) {
		t.Fatalf("expected 'w' at (1,0), got %+v", positions[6])
	}
}

func TestSoftWrapBreaksAtWordBoundary(t *testing.T) {
	cfg := TextFormat{SoftWrap: true, TabWidth: 4, MaxWrap: 3, MaxIndentRetain: 4, WrapIndent: 1, ViewportWidth: 10}
	// "aaaa bbbb" is 9 chars; adding the next word "cccc" would overflow column 10.
	graphemes, positions := formatAll(t, "aaaa bbbb cccc", cfg, nil)

	var gotRows []int
	for i, g := range graphemes {
		if g.Grapheme.Kind == grapheme.KindOther && string(g.Grapheme.Cluster) == "c" && len(gotRows) == 0 {
			gotRows = append(gotRows, positions[i].Row)
		}
	}
	if len(gotRows) == 0 || gotRows[0] == 0 {
		t.Fatalf("expected the third word to wrap to a later row, positions=%+v", positions)
	}
}

func TestSoftWrapHardBreaksOverlongWord(t *testing.T) {
	// A single word far longer than MaxWrap must be split mid-word rather
	// than pushed, unbroken, onto the next line.
	cfg := TextFormat{SoftWrap: true, TabWidth: 4, MaxWrap: 3, MaxIndentRetain: 4, WrapIndent: 1, ViewportWidth: 8}
	graphemes, positions := formatAll(t, "aaaaaaaaaaaaaaaa", cfg, nil)

	sawRowIncrease := false
	for i := 1; i < len(graphemes); i++ {
		if positions[i].Row > positions[i-1].Row {
			sawRowIncrease = true
			break
		}
	}
	if !sawRowIncrease {
		t.Fatalf("expected the overlong word to be hard-split across rows, positions=%+v", positions)
	}
}

func TestIndentCarryOverCappedByMaxIndentRetain(t *testing.T) {
	cfg := TextFormat{SoftWrap: true, TabWidth: 4, MaxWrap: 3, MaxIndentRetain: 2, WrapIndent: 1, ViewportWidth: 10}
	// Indent of 5 spaces exceeds MaxIndentRetain(2); wrapped continuation
	// lines must fall back to WrapIndent only, not carry the 5-space indent.
	graphemes, positions := formatAll(t, "     aaaa bbbb cccc", cfg, nil)

	for i, g := range graphemes {
		if i > 0 && positions[i].Row > positions[i-1].Row {
			if g.Grapheme.Kind != grapheme.KindNewline && positions[i].Col > cfg.MaxIndentRetain+cfg.WrapIndent {
				t.Fatalf("wrapped line indent %d exceeds MaxIndentRetain+WrapIndent, pos=%+v", positions[i].Col, positions[i])
			}
		}
	}
}

func TestInlineAnnotationInsertsVirtualGraphemes(t *testing.T) {
	ann := annotations.New()
	ann.AddInlineAnnotations([]annotations.InlineAnnotation{{CharIdx: 2, Text: "!!"}})
	cfg := DefaultTextFormat()
	graphemes, _ := formatAll(t, "ab cd", cfg, ann)

	foundVirtual := 0
	for _, g := range graphemes {
		if g.IsVirtual() {
			foundVirtual++
		}
	}
	if foundVirtual != 2 {
		t.Fatalf("expected 2 virtual graphemes from the inline annotation text, got %d", foundVirtual)
	}
}

func TestOverlaySubstitutesDocumentGrapheme(t *testing.T) {
	ann := annotations.New()
	ann.AddOverlay([]annotations.Overlay{{CharIdx: 0, Grapheme: "X"}})
	cfg := DefaultTextFormat()
	graphemes, _ := formatAll(t, "abc", cfg, ann)

	if graphemes[0].Grapheme.Cluster != "X" {
		t.Fatalf("expected overlay substitution 'X', got %q", graphemes[0].Grapheme.Cluster)
	}
	if graphemes[0].DocChars != 1 {
		t.Fatalf("overlay substitution must still consume 1 document char, got %d", graphemes[0].DocChars)
	}
}

func TestEOFSentinelEmittedExactlyOnce(t *testing.T) {
	cfg := DefaultTextFormat()
	graphemes, _ := formatAll(t, "ab", cfg, nil)
	if len(graphemes) != 3 {
		t.Fatalf("expected 2 real graphemes + 1 EOF sentinel, got %d", len(graphemes))
	}
	last := graphemes[len(graphemes)-1]
	if last.DocChars != 0 || last.Grapheme.Kind != grapheme.KindSpace {
		t.Fatalf("expected EOF sentinel to be a zero-doc-chars space grapheme, got %+v", last)
	}
}

func TestLinePosAdvancesOnNewline(t *testing.T) {
	r := rope.New("one\ntwo\nthree")
	f, _ := NewAtPrevBlock(r, DefaultTextFormat(), nil, 0)
	if f.LinePos() != 0 {
		t.Fatalf("expected initial line pos 0, got %d", f.LinePos())
	}
	for {
		g, _, ok := f.Next()
		if !ok {
			break
		}
		_ = g
	}
	if f.LinePos() != 2 {
		t.Fatalf("expected line pos 2 after consuming two newlines, got %d", f.LinePos())
	}
}
