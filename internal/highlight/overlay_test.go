package highlight

import "testing"

func eq(t *testing.T, got, want []HighlightEvent) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len mismatch: got %+v want %+v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("event %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestOverlaySingleSpanInsideSource(t *testing.T) {
	base := NewEventSlice([]HighlightEvent{Source(0, 10)})
	spans := NewSpanSlice([]Span{{Start: 3, End: 6, Scope: "S"}})
	got := Collect(NewOverlay(base, spans))
	want := []HighlightEvent{
		Source(0, 3),
		Start("S"),
		Source(3, 6),
		End(),
		Source(6, 10),
	}
	eq(t, got, want)
}

func TestOverlayNoSpans(t *testing.T) {
	base := NewEventSlice([]HighlightEvent{Source(0, 5)})
	got := Collect(NewOverlay(base, NewSpanSlice(nil)))
	eq(t, got, []HighlightEvent{Source(0, 5)})
}

func TestOverlaySpanAtVeryStart(t *testing.T) {
	base := NewEventSlice([]HighlightEvent{Source(0, 10)})
	spans := NewSpanSlice([]Span{{Start: 0, End: 4, Scope: "S"}})
	got := Collect(NewOverlay(base, spans))
	want := []HighlightEvent{
		Start("S"),
		Source(0, 4),
		End(),
		Source(4, 10),
	}
	eq(t, got, want)
}

func TestOverlaySpanExtendingPastSource(t *testing.T) {
	// Base highlight already has its own Start/End around [2,8); overlay span
	// covers [5,12) stretching past the base source boundary at 8, so the
	// span has to be split around the base End.
	base := NewEventSlice([]HighlightEvent{
		Source(0, 2),
		Start("base"),
		Source(2, 8),
		End(),
		Source(8, 15),
	})
	spans := NewSpanSlice([]Span{{Start: 5, End: 12, Scope: "S"}})
	got := Collect(NewOverlay(base, spans))
	// The span outlives the base Source(2,8)/End() chunk it started in, so
	// the composer must close S before the base scope closes and reopen it
	// afterward to keep both streams independently balanced.
	want := []HighlightEvent{
		Source(0, 2),
		Start("base"),
		Source(2, 5),
		Start("S"),
		Source(5, 8),
		End(),
		End(),
		Start("S"),
		Source(8, 12),
		End(),
		Source(12, 15),
	}
	eq(t, got, want)
}

func TestOverlaySpanAtEOFUnfinished(t *testing.T) {
	// A span starting after the base stream's last Source event is never
	// reached inside the main loop; it must still be flushed (opened and
	// closed) once the base stream runs dry.
	base := NewEventSlice([]HighlightEvent{Source(0, 5)})
	spans := NewSpanSlice([]Span{{Start: 7, End: 10, Scope: "S"}})
	got := Collect(NewOverlay(base, spans))
	want := []HighlightEvent{
		Source(0, 5),
		Start("S"),
		Source(7, 10),
		End(),
	}
	eq(t, got, want)
}

func TestOverlayZeroLengthSourceSkipped(t *testing.T) {
	base := NewEventSlice([]HighlightEvent{Source(0, 0), Source(0, 3)})
	got := Collect(NewOverlay(base, NewSpanSlice(nil)))
	eq(t, got, []HighlightEvent{Source(0, 3)})
}

func TestOverlayBalancedBrackets(t *testing.T) {
	base := NewEventSlice([]HighlightEvent{
		Source(0, 2),
		Start("base"),
		Source(2, 8),
		End(),
		Source(8, 15),
	})
	spans := NewSpanSlice([]Span{
		{Start: 1, End: 3, Scope: "a"},
		{Start: 5, End: 12, Scope: "b"},
	})
	events := Collect(NewOverlay(base, spans))

	depth := 0
	for _, e := range events {
		switch e.Kind {
		case EventStart:
			depth++
		case EventEnd:
			depth--
			if depth < 0 {
				t.Fatalf("unbalanced: End with no matching Start")
			}
		}
	}
	if depth != 0 {
		t.Fatalf("unbalanced: %d scopes left open", depth)
	}
}

func TestOverlayPanicsOnOutOfOrderSpans(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on out-of-order spans")
		}
	}()
	base := NewEventSlice([]HighlightEvent{Source(0, 10)})
	spans := NewSpanSlice([]Span{
		{Start: 5, End: 8, Scope: "a"},
		{Start: 3, End: 6, Scope: "b"},
	})
	Collect(NewOverlay(base, spans))
}

func TestTokenLexerProducesBalancedStream(t *testing.T) {
	lexer := TokenLexer{Tokenize: func(text string) []Token {
		return []Token{{Start: 2, End: 5, Scope: "keyword"}}
	}}
	events := lexer.Events("0123456789")
	want := []HighlightEvent{
		Source(0, 2),
		Start("keyword"),
		Source(2, 5),
		End(),
		Source(5, 10),
	}
	eq(t, events, want)
}
