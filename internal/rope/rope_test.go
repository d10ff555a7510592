package rope

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNewSplitsLinesOnNewline(t *testing.T) {
	r := New("one\ntwo\nthree")
	require.Equal(t, 3, r.LineCount())
	require.Equal(t, 0, r.LineToChar(0))
	require.Equal(t, 4, r.LineToChar(1))
	require.Equal(t, 8, r.LineToChar(2))
}

func TestNewTrailingNewlineAddsPartialLine(t *testing.T) {
	r := New("one\ntwo\n")
	require.Equal(t, 3, r.LineCount())
	require.Equal(t, 8, r.LineToChar(2))
}

func TestCharToLineFindsContainingLine(t *testing.T) {
	r := New("one\ntwo\nthree\n")
	require.Equal(t, 0, r.CharToLine(0))
	require.Equal(t, 0, r.CharToLine(3))
	require.Equal(t, 1, r.CharToLine(4))
	require.Equal(t, 2, r.CharToLine(8))
}

func TestLineToCharOutOfRangeClampsToEnds(t *testing.T) {
	r := New("abc")
	require.Equal(t, 0, r.LineToChar(-1))
	require.Equal(t, r.Len(), r.LineToChar(100))
}

func TestSliceSharesBackingArrayAndClampsBounds(t *testing.T) {
	r := New("hello world")
	s := r.Slice(6, 100)
	require.Equal(t, "world", s.String())

	s = r.Slice(-5, 5)
	require.Equal(t, "hello", s.String())
}

func TestGraphemesTracksAbsoluteCharPos(t *testing.T) {
	r := New("ab")
	s := r.Slice(1, 2)
	it := s.Graphemes()
	require.True(t, it.Next())
	require.Equal(t, "b", it.Cluster())
	require.Equal(t, 1, it.CharPos())
	require.False(t, it.Next())
}

// TestCharToLineAgreesWithLineToChar checks the round-trip invariant
// LineToChar(CharToLine(c)) <= c < LineToChar(CharToLine(c)+1) across
// randomly generated documents and char indices, the same style of
// bounds-invariant property test the corpus runs over scrollbar math.
func TestCharToLineAgreesWithLineToChar(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		numLines := rapid.IntRange(1, 20).Draw(rt, "numLines")
		var b strings.Builder
		for i := 0; i < numLines; i++ {
			lineLen := rapid.IntRange(0, 10).Draw(rt, "lineLen")
			b.WriteString(strings.Repeat("x", lineLen))
			if i < numLines-1 {
				b.WriteByte('\n')
			}
		}
		text := b.String()
		r := New(text)

		charIdx := rapid.IntRange(0, max(0, r.Len()-1)).Draw(rt, "charIdx")
		line := r.CharToLine(charIdx)

		require.LessOrEqual(t, r.LineToChar(line), charIdx)
		if line+1 < r.LineCount() {
			require.Less(t, charIdx, r.LineToChar(line+1))
		}
	})
}

// TestSliceNeverExceedsRopeBounds checks Slice always clamps to [0, Len()]
// regardless of how far out of range start/end are, across random ropes
// and random (possibly negative or overlong) slice bounds.
func TestSliceNeverExceedsRopeBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		text := rapid.StringMatching(`[abc \n]{0,50}`).Draw(rt, "text")
		r := New(text)

		start := rapid.IntRange(-10, r.Len()+10).Draw(rt, "start")
		end := rapid.IntRange(-10, r.Len()+10).Draw(rt, "end")

		s := r.Slice(start, end)
		require.GreaterOrEqual(t, s.Len(), 0)
		require.LessOrEqual(t, s.Len(), r.Len())
	})
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
