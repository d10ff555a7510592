package annotations

import "testing"

func TestInlineAnnotationsRegistrationOrderWins(t *testing.T) {
	a := New()
	a.AddInlineAnnotations([]InlineAnnotation{{CharIdx: 5, Text: "first"}})
	a.AddInlineAnnotations([]InlineAnnotation{{CharIdx: 5, Text: "second"}})
	a.ResetPos(0)

	got, ok := a.NextInlineAnnotationAt(5)
	if !ok || got.Text != "first" {
		t.Fatalf("expected first-registered layer to win, got %+v ok=%v", got, ok)
	}
	// Only the matching layer's cursor should have advanced; querying the
	// same position again must see nothing left at 5 in either layer.
	_, ok = a.NextInlineAnnotationAt(5)
	if ok {
		t.Fatalf("expected no further annotation at 5")
	}
}

func TestOverlayAtLastLayerWins(t *testing.T) {
	a := New()
	a.AddOverlay([]Overlay{{CharIdx: 3, Grapheme: "a"}})
	a.AddOverlay([]Overlay{{CharIdx: 3, Grapheme: "b"}})
	a.ResetPos(0)

	got, ok := a.OverlayAt(3)
	if !ok || got.Grapheme != "b" {
		t.Fatalf("expected last-registered layer to win, got %+v ok=%v", got, ok)
	}
}

func TestOverlayAtAdvancesAllMatchingLayers(t *testing.T) {
	a := New()
	a.AddOverlay([]Overlay{{CharIdx: 3, Grapheme: "a"}, {CharIdx: 9, Grapheme: "a2"}})
	a.AddOverlay([]Overlay{{CharIdx: 3, Grapheme: "b"}})
	a.ResetPos(0)

	if _, ok := a.OverlayAt(3); !ok {
		t.Fatalf("expected a match at 3")
	}
	// The first layer's cursor must also have advanced past its entry at 3,
	// even though it lost to the second layer, so the next query for its
	// own next entry (at 9) still works without a ResetPos in between.
	got, ok := a.OverlayAt(9)
	if !ok || got.Grapheme != "a2" {
		t.Fatalf("expected first layer's next entry at 9, got %+v ok=%v", got, ok)
	}
}

func TestAnnotationLinesAtSumsAllLayers(t *testing.T) {
	a := New()
	a.AddLineAnnotation([]LineAnnotation{{AnchorCharIdx: 4, Height: 1}, {AnchorCharIdx: 4, Height: 2}})
	a.AddLineAnnotation([]LineAnnotation{{AnchorCharIdx: 4, Height: 3}})
	a.ResetPos(0)

	if got := a.AnnotationLinesAt(4); got != 6 {
		t.Fatalf("expected sum of heights 1+2+3=6, got %d", got)
	}
	if got := a.AnnotationLinesAt(4); got != 0 {
		t.Fatalf("expected no remaining annotations at 4 on second query, got %d", got)
	}
}

func TestResetPosRelocatesCursorForward(t *testing.T) {
	a := New()
	a.AddInlineAnnotations([]InlineAnnotation{
		{CharIdx: 1, Text: "a"},
		{CharIdx: 5, Text: "b"},
		{CharIdx: 9, Text: "c"},
	})
	a.ResetPos(6)

	if _, ok := a.NextInlineAnnotationAt(5); ok {
		t.Fatalf("ResetPos(6) must skip past the entry at 5")
	}
	got, ok := a.NextInlineAnnotationAt(9)
	if !ok || got.Text != "c" {
		t.Fatalf("expected entry at 9 after ResetPos(6), got %+v ok=%v", got, ok)
	}
}

func TestOverlayHighlightsCollectsHighlightedPositionsOnly(t *testing.T) {
	a := New()
	a.AddOverlay([]Overlay{
		{CharIdx: 1, Grapheme: "x", Highlight: "err", HasHighlight: true},
		{CharIdx: 2, Grapheme: "y"}, // no highlight
		{CharIdx: 4, Grapheme: "z", Highlight: "warn", HasHighlight: true},
	})
	a.ResetPos(0)

	got := a.OverlayHighlights(0, 5)
	if len(got) != 2 {
		t.Fatalf("expected 2 highlighted overlays, got %d: %+v", len(got), got)
	}
	if got[0].Scope != "err" || got[0].CharStart != 1 || got[0].CharEnd != 2 {
		t.Fatalf("unexpected first entry: %+v", got[0])
	}
	if got[1].Scope != "warn" || got[1].CharStart != 4 || got[1].CharEnd != 5 {
		t.Fatalf("unexpected second entry: %+v", got[1])
	}
}

func TestClearLineAnnotations(t *testing.T) {
	a := New()
	a.AddLineAnnotation([]LineAnnotation{{AnchorCharIdx: 0, Height: 1}})
	a.ClearLineAnnotations()
	a.ResetPos(0)
	if got := a.AnnotationLinesAt(0); got != 0 {
		t.Fatalf("expected 0 after ClearLineAnnotations, got %d", got)
	}
}
