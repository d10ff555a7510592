// Package grapheme defines the on-screen grapheme tagged variant the
// document formatter emits, along with the width measurement rules that
// keep tab stops aligned on a monospace grid. Each Grapheme carries its
// cluster text and its display width, measured with
// github.com/mattn/go-runewidth; splitting text into clusters is done
// by the caller (internal/rope, with github.com/rivo/uniseg).
package grapheme

import "github.com/mattn/go-runewidth"

// Kind discriminates the tagged variants of Grapheme.
type Kind uint8

const (
	// KindNewline is a single line-break grapheme.
	KindNewline Kind = iota
	// KindTab is a tab character; its Width is computed relative to the
	// visual column it starts at so tab stops land on multiples of the
	// configured tab width.
	KindTab
	// KindSpace is a single space character.
	KindSpace
	// KindOther is any non-whitespace extended grapheme cluster.
	KindOther
)

// Grapheme is an on-screen unit produced by the document formatter: a
// newline, a tab (pre-measured for its starting column), a space, or any
// other grapheme cluster with its measured display width.
type Grapheme struct {
	Kind    Kind
	Cluster string // the raw text; empty for Newline
	width   int    // measured width in terminal columns
}

// Newline returns the Newline grapheme.
func Newline() Grapheme { return Grapheme{Kind: KindNewline, Cluster: "\n"} }

// Space returns the Space grapheme.
func Space() Grapheme { return Grapheme{Kind: KindSpace, Cluster: " ", width: 1} }

// New classifies cluster (a single extended grapheme cluster) into a
// Grapheme, computing Tab width relative to col so that tab stops align
// on multiples of tabWidth.
func New(cluster string, col int, tabWidth int) Grapheme {
	switch cluster {
	case "\n", "\r\n":
		return Newline()
	case "\t":
		if tabWidth <= 0 {
			tabWidth = 1
		}
		w := tabWidth - (col % tabWidth)
		return Grapheme{Kind: KindTab, Cluster: cluster, width: w}
	case " ":
		return Space()
	default:
		w := runewidth.StringWidth(cluster)
		if w < 1 {
			w = 1
		}
		return Grapheme{Kind: KindOther, Cluster: cluster, width: w}
	}
}

// Width returns the grapheme's visual width in terminal columns.
func (g Grapheme) Width() int {
	if g.Kind == KindNewline {
		return 0
	}
	return g.width
}

// IsWhitespace reports whether g is a space, tab, or newline.
func (g Grapheme) IsWhitespace() bool {
	return g.Kind == KindSpace || g.Kind == KindTab || g.Kind == KindNewline
}

// IsBreakingSpace reports whether g terminates a soft-wrap word: a space
// or a tab (newline is handled separately by callers since it also resets
// indentation tracking).
func (g Grapheme) IsBreakingSpace() bool {
	return g.Kind == KindSpace || g.Kind == KindTab
}
