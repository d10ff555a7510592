package diff

import (
	"strings"
	"testing"

	"github.com/nels-koby/glint/internal/rope"
)

func TestTokenizeSplitsWordsWhitespaceAndPunctuation(t *testing.T) {
	got := tokenize("foo.bar baz")
	want := []string{"foo", ".", "bar", " ", "baz"}
	if len(got) != len(want) {
		t.Fatalf("tokenize() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tokenize()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestComputeWordDiffMarksOnlyChangedWord(t *testing.T) {
	result := computeWordDiff("let x = one", "let x = two")

	foundDeleted := false
	for _, s := range result.OldSegments {
		if s.Type == WordDeleted && s.Text == "one" {
			foundDeleted = true
		}
	}
	if !foundDeleted {
		t.Fatalf("expected OldSegments to mark %q deleted, got %+v", "one", result.OldSegments)
	}

	foundAdded := false
	for _, s := range result.NewSegments {
		if s.Type == WordAdded && s.Text == "two" {
			foundAdded = true
		}
	}
	if !foundAdded {
		t.Fatalf("expected NewSegments to mark %q added, got %+v", "two", result.NewSegments)
	}
}

func TestComputeWordDiffEmptyOldLineIsWhollyAdded(t *testing.T) {
	result := computeWordDiff("", "new text")
	if len(result.OldSegments) != 0 {
		t.Fatalf("expected no OldSegments, got %+v", result.OldSegments)
	}
	if len(result.NewSegments) != 1 || result.NewSegments[0].Type != WordAdded {
		t.Fatalf("expected single wholly-added NewSegment, got %+v", result.NewSegments)
	}
}

func TestComputeWordDiffsSkipsOverlongLines(t *testing.T) {
	long := strings.Repeat("x", WordDiffMaxLineLength+1)
	pairs := []replacePair{{baseText: long, docLine: 0, docText: "y"}}
	got := computeWordDiffs(pairs)
	if len(got) != 0 {
		t.Fatalf("expected overlong pair to be skipped, got %d results", len(got))
	}
}

func TestComputeWordDiffsRespectsMaxPairs(t *testing.T) {
	var pairs []replacePair
	for i := 0; i < WordDiffMaxPairs+20; i++ {
		pairs = append(pairs, replacePair{baseText: "a", docLine: i, docText: "b"})
	}
	got := computeWordDiffs(pairs)
	if len(got) > WordDiffMaxPairs {
		t.Fatalf("expected at most %d pairs diffed, got %d", WordDiffMaxPairs, len(got))
	}
}

func TestWorkerExposesWordDiffForModifiedLine(t *testing.T) {
	base := rope.New("one\ntwo\nthree\n")
	doc := rope.New("one\ntwo-updated\nthree\n")
	w := New(base, doc)
	defer w.Close()

	d := w.GetLineDiffs()
	op, ok := d.Get(1)
	if !ok || op != LineModified {
		t.Fatalf("expected line 1 Modified, got op=%v ok=%v", op, ok)
	}

	words, ok := d.Words(1)
	if !ok {
		t.Fatalf("expected word diff available for modified line 1")
	}
	foundAdded := false
	for _, s := range words.NewSegments {
		if s.Type == WordAdded && strings.Contains(s.Text, "updated") {
			foundAdded = true
		}
	}
	if !foundAdded {
		t.Fatalf("expected NewSegments to contain an added %q run, got %+v", "updated", words.NewSegments)
	}
}

func TestWorkerOmitsWordDiffForAddedLine(t *testing.T) {
	base := rope.New("one\n")
	doc := rope.New("one\ntwo\n")
	w := New(base, doc)
	defer w.Close()

	d := w.GetLineDiffs()
	if _, ok := d.Words(1); ok {
		t.Fatalf("expected no word diff for a purely added line")
	}
}
