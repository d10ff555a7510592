// Package rope provides an immutable, char-indexed text container with
// O(log N) char-to-line and line-to-char lookups and forward grapheme
// cluster iteration over arbitrary slices.
//
// A Rope is never mutated in place; slicing shares the backing array,
// and edits produce a new Rope via New. This is a from-scratch
// implementation over the standard library plus github.com/rivo/uniseg
// for grapheme segmentation (see DESIGN.md for why no third-party rope
// library is used).
package rope

import (
	"sort"
	"strings"

	"github.com/rivo/uniseg"
)

// Rope is an immutable sequence of runes addressed by char (rune) index.
type Rope struct {
	text       []rune
	lineStarts []int // char index of the first rune of each line; lineStarts[0] == 0
}

// New builds a Rope from s. Lines are split on '\n'; the trailing '\n'
// (if any) stays at the end of its line, matching ropey's convention that
// RopeSlice::lines includes line terminators.
func New(s string) *Rope {
	runes := []rune(s)
	lineStarts := []int{0}
	for i, r := range runes {
		if r == '\n' {
			lineStarts = append(lineStarts, i+1)
		}
	}
	return &Rope{text: runes, lineStarts: lineStarts}
}

// Len returns the number of chars (runes) in the rope.
func (r *Rope) Len() int { return len(r.text) }

// LineCount returns the number of lines, counting a trailing partial line
// after the last newline.
func (r *Rope) LineCount() int { return len(r.lineStarts) }

// CharToLine returns the line index containing charIdx, via binary search
// over the line-start table.
func (r *Rope) CharToLine(charIdx int) int {
	// The last line start <= charIdx.
	i := sort.SearchInts(r.lineStarts, charIdx+1) - 1
	if i < 0 {
		return 0
	}
	if i >= len(r.lineStarts) {
		i = len(r.lineStarts) - 1
	}
	return i
}

// LineToChar returns the char index of the first rune of lineIdx.
func (r *Rope) LineToChar(lineIdx int) int {
	if lineIdx < 0 {
		return 0
	}
	if lineIdx >= len(r.lineStarts) {
		return r.Len()
	}
	return r.lineStarts[lineIdx]
}

// Slice returns a view over [start, end) sharing the rope's backing array.
func (r *Rope) Slice(start, end int) Slice {
	if start < 0 {
		start = 0
	}
	if end > len(r.text) {
		end = len(r.text)
	}
	if end < start {
		end = start
	}
	return Slice{text: r.text[start:end], charOffset: start}
}

// SliceFrom returns a view from start to the end of the rope.
func (r *Rope) SliceFrom(start int) Slice { return r.Slice(start, r.Len()) }

// String returns the entire rope's contents.
func (r *Rope) String() string { return string(r.text) }

// Slice is a contiguous, shared view into a Rope's backing rune array.
type Slice struct {
	text       []rune
	charOffset int // char index of text[0] within the owning Rope
}

// Len returns the number of chars in the slice.
func (s Slice) Len() int { return len(s.text) }

// String materializes the slice's contents.
func (s Slice) String() string { return string(s.text) }

// Graphemes returns a forward iterator over grapheme clusters in the
// slice, each tagged with its absolute char index in the owning rope.
func (s Slice) Graphemes() *ClusterIter {
	return &ClusterIter{rest: s.String(), state: -1, charPos: s.charOffset}
}

// ClusterIter walks a string one extended grapheme cluster at a time,
// tracking the absolute char (rune) index of each cluster via uniseg's
// state machine. It never copies the remaining text beyond the standard
// string header.
type ClusterIter struct {
	rest    string
	state   int
	charPos int
	cluster string
}

// Next advances to the next cluster, returning false at end of input.
func (c *ClusterIter) Next() bool {
	if len(c.rest) == 0 {
		return false
	}
	c.charPos += utf8RuneCount(c.cluster)
	cluster, rest, _, newState := uniseg.StepString(c.rest, c.state)
	c.cluster = cluster
	c.rest = rest
	c.state = newState
	return true
}

// Cluster returns the current grapheme cluster's text.
func (c *ClusterIter) Cluster() string { return c.cluster }

// CharPos returns the absolute char index of the current cluster.
func (c *ClusterIter) CharPos() int { return c.charPos }

// Chars returns the number of chars (runes) the current cluster consumes.
func (c *ClusterIter) Chars() int { return utf8RuneCount(c.cluster) }

func utf8RuneCount(s string) int {
	if s == "" {
		return 0
	}
	return len([]rune(s))
}

// GraphemeCount returns the number of grapheme clusters in s.
func GraphemeCount(s string) int { return uniseg.GraphemeClusterCount(s) }

// HasOnlyASCIISpaces reports whether s consists only of ' ' and '\t'.
// Small helper used by the formatter's indentation bookkeeping.
func HasOnlyASCIISpaces(s string) bool {
	return strings.TrimLeft(s, " \t") == ""
}

// SplitGraphemeClusters splits s into its extended grapheme clusters.
// Used to drain inline annotation text one display unit at a time.
func SplitGraphemeClusters(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	state := -1
	for len(s) > 0 {
		cluster, rest, _, newState := uniseg.StepString(s, state)
		out = append(out, cluster)
		s = rest
		state = newState
	}
	return out
}
