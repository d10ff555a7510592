// Package textfmt implements a document formatter: it walks a Rope
// (augmented by a TextAnnotations store) and yields FormattedGraphemes
// tagged with the visual (row, col) position each one occupies once
// soft-wrap, tab expansion, and virtual text are accounted for.
//
// char_pos is seeded from the block's absolute char index rather than
// 0, since annotation queries are keyed by absolute document position
// and a literal zero only works when the block starts at the document
// root.
package textfmt

import (
	"github.com/nels-koby/glint/internal/annotations"
	"github.com/nels-koby/glint/internal/grapheme"
	"github.com/nels-koby/glint/internal/highlight"
	"github.com/nels-koby/glint/internal/rope"
)

// Position is a zero-based (row, col) visual coordinate.
type Position struct {
	Row int
	Col int
}

// TextFormat configures soft-wrap and tab-expansion behavior. The zero
// value is not meaningful; use DefaultTextFormat.
type TextFormat struct {
	SoftWrap        bool
	TabWidth        int
	MaxWrap         int
	MaxIndentRetain int
	WrapIndent      int
	ViewportWidth   int
}

// DefaultTextFormat returns the baseline configuration used when
// soft-wrap is disabled or no explicit configuration is supplied.
func DefaultTextFormat() TextFormat {
	return TextFormat{
		SoftWrap:        false,
		TabWidth:        4,
		MaxWrap:         3,
		MaxIndentRetain: 4,
		WrapIndent:      1,
		ViewportWidth:   17,
	}
}

// FormattedGrapheme is a single on-screen unit ready for rendering.
type FormattedGrapheme struct {
	Grapheme     grapheme.Grapheme
	Highlight    highlight.Scope
	HasHighlight bool // true for inline-annotation virtual text carrying its own style
	DocChars     int  // chars consumed from the document; 0 for virtual/EOF graphemes
}

// IsVirtual reports whether this grapheme came from an inline annotation
// layer rather than the document itself.
func (g FormattedGrapheme) IsVirtual() bool { return g.HasHighlight }

// Width returns the grapheme's visual column width.
func (g FormattedGrapheme) Width() int { return g.Grapheme.Width() }

// IsWhitespace reports whether the underlying grapheme is whitespace.
func (g FormattedGrapheme) IsWhitespace() bool { return g.Grapheme.IsWhitespace() }

// IsBreakingSpace reports whether the underlying grapheme terminates a
// soft-wrap word.
func (g FormattedGrapheme) IsBreakingSpace() bool { return g.Grapheme.IsBreakingSpace() }

// pendingAnnotation drains one inline annotation's text one grapheme
// cluster at a time before the formatter falls back to document text.
type pendingAnnotation struct {
	clusters  []string
	idx       int
	highlight highlight.Scope
}

// peekedGrapheme stashes a word-buffer grapheme that overflowed a hard
// line-edge split, to be replayed as the first grapheme of the next word.
type peekedGrapheme struct {
	g            FormattedGrapheme
	virtualLines int
}

// DocumentFormatter walks a Rope slice from the start of some "block"
// (a position the caller knows is safe to resume formatting from, usually
// a line start) and yields FormattedGraphemes paired with their visual
// position. Soft-wrap insertions and virtual text mean there is generally
// no way to find the start of the previous on-screen line, only the
// previous block; see the package doc.
type DocumentFormatter struct {
	config      TextFormat
	annotations *annotations.TextAnnotations

	visualPos    Position
	graphemeIter *rope.ClusterIter
	charPos      int
	linePos      int
	exhausted    bool

	virtualLines      int
	pendingAnnotation *pendingAnnotation

	indentLevel    *int
	peekedGrapheme *peekedGrapheme
	wordBuf        []FormattedGrapheme
	wordI          int
}

// NewAtPrevBlock creates a formatter starting at the last block boundary
// at or before charIdx — the start of the line containing charIdx — and
// returns the formatter along with that block's absolute char index.
// Annotation layers are reset to that position. ann may be nil, meaning
// no annotations apply.
func NewAtPrevBlock(text *rope.Rope, config TextFormat, ann *annotations.TextAnnotations, charIdx int) (*DocumentFormatter, int) {
	if ann == nil {
		ann = annotations.New()
	}
	blockLine := text.CharToLine(charIdx)
	blockCharIdx := text.LineToChar(blockLine)
	ann.ResetPos(blockCharIdx)

	f := &DocumentFormatter{
		config:      config,
		annotations: ann,
		graphemeIter: text.SliceFrom(blockCharIdx).Graphemes(),
		charPos:     blockCharIdx,
		linePos:     blockLine,
		wordBuf:     make([]FormattedGrapheme, 0, 64),
	}
	return f, blockCharIdx
}

// LinePos returns the document line index of the next grapheme that will
// be yielded.
func (f *DocumentFormatter) LinePos() int { return f.linePos }

// VisualPos returns the visual position the next grapheme will be placed
// at.
func (f *DocumentFormatter) VisualPos() Position { return f.visualPos }

func (f *DocumentFormatter) nextInlineAnnotationGrapheme() (string, highlight.Scope, bool) {
	for {
		if f.pendingAnnotation != nil && f.pendingAnnotation.idx < len(f.pendingAnnotation.clusters) {
			c := f.pendingAnnotation.clusters[f.pendingAnnotation.idx]
			f.pendingAnnotation.idx++
			return c, f.pendingAnnotation.highlight, true
		}
		annot, ok := f.annotations.NextInlineAnnotationAt(f.charPos)
		if !ok {
			return "", "", false
		}
		f.pendingAnnotation = &pendingAnnotation{
			clusters:  rope.SplitGraphemeClusters(annot.Text),
			highlight: annot.Highlight,
		}
	}
}

// advanceGrapheme pulls the single next grapheme to be displayed at
// column col, whether it comes from a pending inline annotation, the
// document (subject to overlay substitution), or the one-time EOF
// sentinel. ok is false only once the stream is truly exhausted.
func (f *DocumentFormatter) advanceGrapheme(col int) (FormattedGrapheme, bool) {
	if cluster, scope, ok := f.nextInlineAnnotationGrapheme(); ok {
		g := grapheme.New(cluster, col, f.config.TabWidth)
		return FormattedGrapheme{Grapheme: g, Highlight: scope, HasHighlight: true}, true
	}

	if f.graphemeIter.Next() {
		f.virtualLines += f.annotations.AnnotationLinesAt(f.charPos)
		docChars := f.graphemeIter.Chars()
		raw := f.graphemeIter.Cluster()
		if ov, ok := f.annotations.OverlayAt(f.charPos); ok {
			raw = ov.Grapheme
		}
		g := grapheme.New(raw, col, f.config.TabWidth)
		fg := FormattedGrapheme{Grapheme: g, DocChars: docChars}
		f.charPos += docChars
		return fg, true
	}

	if f.exhausted {
		return FormattedGrapheme{}, false
	}
	f.exhausted = true
	// The EOF grapheme is required so callers can resolve a visual
	// position for a cursor sitting at the very end of the document.
	return FormattedGrapheme{Grapheme: grapheme.Space()}, true
}

// advanceToNextWord refills wordBuf with the graphemes of the next
// soft-wrap word: whitespace-or-newline-terminated, or hard-split at the
// viewport edge when the word itself is wider than MaxWrap.
func (f *DocumentFormatter) advanceToNextWord() {
	f.wordBuf = f.wordBuf[:0]
	wordWidth := 0
	virtualLinesBeforeWord := f.virtualLines
	virtualLinesBeforeGrapheme := f.virtualLines

	for {
		if wordWidth+f.visualPos.Col >= f.config.ViewportWidth {
			if wordWidth > f.config.MaxWrap {
				// Softwrapping the whole word would move too much text to
				// the next line; split it at the line edge instead.
				if wordWidth+f.visualPos.Col > f.config.ViewportWidth {
					var peeked *peekedGrapheme
					if n := len(f.wordBuf); n > 0 {
						popped := f.wordBuf[n-1]
						f.wordBuf = f.wordBuf[:n-1]
						peeked = &peekedGrapheme{g: popped, virtualLines: f.virtualLines - virtualLinesBeforeGrapheme}
					}
					f.peekedGrapheme = peeked
					f.virtualLines = virtualLinesBeforeGrapheme
				}
				return
			}

			indentCarryOver := 0
			if f.indentLevel != nil && *f.indentLevel <= f.config.MaxIndentRetain {
				indentCarryOver = *f.indentLevel
			}
			lineIndent := indentCarryOver + f.config.WrapIndent
			f.visualPos.Col = lineIndent
			f.virtualLines -= virtualLinesBeforeWord
			f.visualPos.Row += 1 + virtualLinesBeforeWord
		}

		virtualLinesBeforeGrapheme = f.virtualLines

		var g FormattedGrapheme
		if f.peekedGrapheme != nil {
			pk := f.peekedGrapheme
			f.peekedGrapheme = nil
			f.virtualLines += pk.virtualLines
			g = pk.g
		} else {
			got, ok := f.advanceGrapheme(f.visualPos.Col + wordWidth)
			if !ok {
				return
			}
			g = got
		}

		wordWidth += g.Width()

		switch g.Grapheme.Kind {
		case grapheme.KindNewline:
			f.indentLevel = nil
			f.wordBuf = append(f.wordBuf, g)
			return
		case grapheme.KindSpace, grapheme.KindTab:
			f.wordBuf = append(f.wordBuf, g)
			return
		default:
			if f.indentLevel == nil {
				lvl := f.visualPos.Col
				f.indentLevel = &lvl
			}
		}
		f.wordBuf = append(f.wordBuf, g)
	}
}

// Next yields the next (grapheme, visual position) pair, or ok == false
// once the document and its trailing EOF sentinel have both been
// consumed.
func (f *DocumentFormatter) Next() (FormattedGrapheme, Position, bool) {
	var g FormattedGrapheme
	if f.config.SoftWrap {
		if f.wordI >= len(f.wordBuf) {
			f.advanceToNextWord()
			f.wordI = 0
		}
		if f.wordI >= len(f.wordBuf) {
			return FormattedGrapheme{}, Position{}, false
		}
		g = f.wordBuf[f.wordI]
		f.wordI++
	} else {
		got, ok := f.advanceGrapheme(f.visualPos.Col)
		if !ok {
			return FormattedGrapheme{}, Position{}, false
		}
		g = got
	}

	pos := f.visualPos
	if g.Grapheme.Kind == grapheme.KindNewline {
		f.visualPos.Row++
		f.visualPos.Row += f.virtualLines
		f.virtualLines = 0
		f.visualPos.Col = 0
		f.linePos++
	} else {
		f.visualPos.Col += g.Width()
	}
	return g, pos, true
}

// Collect drains f into a slice of (grapheme, position) pairs. Intended
// for tests and small call sites; the renderer should drive Next
// directly to avoid allocating a full-document slice.
func Collect(f *DocumentFormatter) ([]FormattedGrapheme, []Position) {
	var graphemes []FormattedGrapheme
	var positions []Position
	for {
		g, pos, ok := f.Next()
		if !ok {
			return graphemes, positions
		}
		graphemes = append(graphemes, g)
		positions = append(positions, pos)
	}
}
