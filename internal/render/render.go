// Package render walks a textfmt.DocumentFormatter's visual-position
// stream together with a composed highlight.HighlightEvent stream and
// produces styled terminal output, one visual row at a time.
//
// RenderText's main loop skips visual lines before the viewport, stops
// at viewport height, redoes the active style lookup whenever char_pos
// crosses the current style span's end, and calls decorations at line
// boundaries and at each registered char position. Decorations are
// looked up with a sorted binary search keyed by char position, and
// virtual-line offsets accumulate as they're emitted. Callers already
// start the formatter at a block boundary via textfmt.NewAtPrevBlock
// and pass the row to skip to directly as rowOffset, so there is no
// separate scroll-anchor resolution step here.
package render

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/nels-koby/glint/internal/grapheme"
	"github.com/nels-koby/glint/internal/highlight"
	"github.com/nels-koby/glint/internal/textfmt"
)

// LinePos describes one visual line about to be rendered.
type LinePos struct {
	FirstVisualLine bool
	DocLine         int
	VisualLine      int
}

// Decoration extends text rendering with line- and position-anchored
// overlays (cursors, diagnostics gutters, diff markers). Embed
// BaseDecoration to get no-op defaults for methods you don't need.
type Decoration interface {
	DecorateLine(r *TextRenderer, pos LinePos)
	RenderVirtLines(r *TextRenderer, pos LinePos, virtOff int) int
	DecoratePosition(r *TextRenderer, charIdx int, pos textfmt.Position)
}

// BaseDecoration provides no-op implementations of every Decoration
// method; embed it and override only what you need.
type BaseDecoration struct{}

func (BaseDecoration) DecorateLine(*TextRenderer, LinePos)                    {}
func (BaseDecoration) RenderVirtLines(*TextRenderer, LinePos, int) int        { return 0 }
func (BaseDecoration) DecoratePosition(*TextRenderer, int, textfmt.Position) {}

// DecorationRenderIdx identifies a registered Decoration in addition order.
type DecorationRenderIdx int

type positionHook struct {
	charIdx int
	idx     DecorationRenderIdx
}

// DecorationManager owns the set of active decorations and the sorted
// char-index hooks they registered interest in.
type DecorationManager struct {
	positionHooks []positionHook
	currentIdx    int
	decorations   []Decoration
}

// NewDecorationManager returns an empty manager.
func NewDecorationManager() *DecorationManager { return &DecorationManager{} }

// AddDecoration registers d and returns a handle for RegisterPosition.
func (m *DecorationManager) AddDecoration(d Decoration) DecorationRenderIdx {
	idx := DecorationRenderIdx(len(m.decorations))
	m.decorations = append(m.decorations, d)
	return idx
}

// RegisterPosition requests that d.DecoratePosition be called when
// rendering reaches charIdx. Registrations need not be in order.
func (m *DecorationManager) RegisterPosition(d DecorationRenderIdx, charIdx int) {
	m.positionHooks = append(m.positionHooks, positionHook{charIdx: charIdx, idx: d})
}

func (m *DecorationManager) prepareForRendering(firstVisibleChar int) {
	sort.Slice(m.positionHooks, func(i, j int) bool {
		if m.positionHooks[i].charIdx != m.positionHooks[j].charIdx {
			return m.positionHooks[i].charIdx < m.positionHooks[j].charIdx
		}
		return m.positionHooks[i].idx < m.positionHooks[j].idx
	})
	m.currentIdx = sort.Search(len(m.positionHooks), func(i int) bool {
		return m.positionHooks[i].charIdx >= firstVisibleChar
	})
}

func (m *DecorationManager) decoratePosition(charIdx int, r *TextRenderer, pos textfmt.Position) {
	for m.currentIdx < len(m.positionHooks) {
		hook := m.positionHooks[m.currentIdx]
		if hook.charIdx > charIdx {
			break
		}
		if hook.charIdx == charIdx {
			m.decorations[hook.idx].DecoratePosition(r, charIdx, pos)
		}
		m.currentIdx++
	}
}

func (m *DecorationManager) decorateLine(r *TextRenderer, pos LinePos) {
	for _, d := range m.decorations {
		d.DecorateLine(r, pos)
	}
}

func (m *DecorationManager) renderVirtualLines(r *TextRenderer, pos LinePos) {
	virtOff := 0
	for _, d := range m.decorations {
		virtOff += d.RenderVirtLines(r, pos, virtOff)
	}
}

// Surface accumulates the styled text for each visual row as rendering
// proceeds, one grapheme at a time.
type Surface struct {
	rows    []strings.Builder
	virtual map[int][]string
	width   int
}

func newSurface(height, width int) *Surface {
	return &Surface{rows: make([]strings.Builder, height), virtual: make(map[int][]string), width: width}
}

// WriteVirtualLine appends a fully-rendered virtual text line below
// row (used by decorations that render below the document text).
func (s *Surface) WriteVirtualLine(row int, text string) {
	s.virtual[row] = append(s.virtual[row], text)
}

// Lines returns the final rendered rows, splicing in any virtual lines
// immediately after the document row that reserved space for them. Every
// row is truncated to width display columns, ANSI-escape aware, as a
// defensive backstop: the formatter already wraps at width, but a
// decoration drawing at an unexpected column (or a virtual line a
// decoration hands in pre-rendered) could otherwise overrun the
// viewport, the same defensive truncation the corpus applies at its own
// render boundaries.
func (s *Surface) Lines() []string {
	out := make([]string, 0, len(s.rows))
	for i := range s.rows {
		out = append(out, s.truncate(s.rows[i].String()))
		for _, v := range s.virtual[i] {
			out = append(out, s.truncate(v))
		}
	}
	return out
}

func (s *Surface) truncate(line string) string {
	if s.width <= 0 {
		return line
	}
	return ansi.Truncate(line, s.width, "")
}

// String joins Lines with newlines.
func (s *Surface) String() string { return strings.Join(s.Lines(), "\n") }

// TextRenderer draws a formatted grapheme stream into a Surface,
// applying the active highlight style as it goes. WhitespaceStyle,
// IndentGuideChar and IndentGuideStyle are carried but not used in
// drawing.
type TextRenderer struct {
	Surface          *Surface
	Theme            highlight.Theme
	TextStyle        highlight.Style
	WhitespaceStyle  highlight.Style
	IndentGuideChar  string
	IndentGuideStyle highlight.Style
	Width            int
	Height           int
}

// NewTextRenderer allocates a renderer and its backing Surface for a
// width x height viewport.
func NewTextRenderer(width, height int, theme highlight.Theme) *TextRenderer {
	return &TextRenderer{
		Surface:         newSurface(height, width),
		Theme:           theme,
		TextStyle:       lipgloss.NewStyle(),
		WhitespaceStyle: lipgloss.NewStyle().Faint(true),
		IndentGuideChar: "│",
		Width:           width,
		Height:          height,
	}
}

// DrawGrapheme renders g at pos with style, tracking the indentLevel /
// isInIndentArea state the caller threads across a visual line so
// DrawIndentGuides knows how deep to paint once the line is complete.
func (r *TextRenderer) DrawGrapheme(g string, style highlight.Style, indentLevel *int, isInIndentArea *bool, pos textfmt.Position) {
	if pos.Row < 0 || pos.Row >= len(r.Surface.rows) {
		return
	}
	if *isInIndentArea {
		if g == " " || g == "\t" {
			*indentLevel = pos.Col + 1
		} else {
			*isInIndentArea = false
		}
	}
	r.Surface.rows[pos.Row].WriteString(style.Render(g))
}

// DrawIndentGuides is called once per completed visual line with the
// indent depth DrawGrapheme tracked. It draws nothing: no indent-guide
// characters are written, and no Decoration in this package paints
// them either.
func (r *TextRenderer) DrawIndentGuides(indentLevel, tabWidth, row int) {
	if tabWidth <= 0 || row < 0 || row >= len(r.Surface.rows) {
		return
	}
	_ = indentLevel
}

// styleSpan is one (style, end-char-idx) pair from composing the
// highlight event stream's open-scope stack into resolved styles.
type styleSpan struct {
	style highlight.Style
	end   int
}

// styleIter merges a balanced HighlightEvent stream into contiguous
// (style, end) spans by folding the currently-open scope stack's
// styles over the base text style at each Source event.
type styleIter struct {
	events    highlight.EventSource
	base      highlight.Style
	theme     highlight.Theme
	active    []highlight.Scope
}

func newStyleIter(events highlight.EventSource, base highlight.Style, theme highlight.Theme) *styleIter {
	return &styleIter{events: events, base: base, theme: theme, active: make([]highlight.Scope, 0, 64)}
}

func (s *styleIter) next() (styleSpan, bool) {
	for {
		ev, ok := s.events.Next()
		if !ok {
			return styleSpan{}, false
		}
		switch ev.Kind {
		case highlight.EventStart:
			s.active = append(s.active, ev.Scope)
		case highlight.EventEnd:
			if len(s.active) > 0 {
				s.active = s.active[:len(s.active)-1]
			}
		case highlight.EventSource:
			if ev.Start == ev.End {
				continue
			}
			style := s.base
			for _, scope := range s.active {
				style = s.theme.Style(scope).Inherit(style)
			}
			return styleSpan{style: style, end: ev.End}, true
		}
	}
}

const maxCharIdx = int(^uint(0) >> 1)

// RenderText runs the formatter/highlight/decoration composition loop
// and returns the finished Surface. rowOffset is the visual row (as
// reported by f.VisualPos) that the viewport's first line begins at;
// f must already have been positioned at (or before) that row, e.g.
// via textfmt.NewAtPrevBlock.
func RenderText(f *textfmt.DocumentFormatter, events highlight.EventSource, theme highlight.Theme, decorations *DecorationManager, width, height, rowOffset int) *Surface {
	r := NewTextRenderer(width, height, theme)
	if decorations == nil {
		decorations = NewDecorationManager()
	}

	styles := newStyleIter(events, r.TextStyle, theme)
	styleSp, ok := styles.next()
	if !ok {
		styleSp = styleSpan{style: r.TextStyle, end: maxCharIdx}
	}

	decorations.prepareForRendering(0)

	lastLinePos := LinePos{DocLine: -1, VisualLine: -1}
	charPos := 0
	indentLevel := 0
	isInIndentArea := true

	for {
		docLine := f.LinePos()
		g, pos, more := f.Next()
		if !more {
			last := f.VisualPos()
			if last.Row >= rowOffset {
				last.Col--
				last.Row -= rowOffset
				decorations.decoratePosition(charPos, r, last)
			}
			break
		}

		if pos.Row < rowOffset {
			if charPos >= styleSp.end {
				next, ok := styles.next()
				if !ok {
					break
				}
				styleSp = next
			}
			charPos += g.DocChars
			continue
		}
		pos.Row -= rowOffset

		if pos.Row >= height {
			break
		}

		if pos.Row != lastLinePos.VisualLine {
			if pos.Row > 0 {
				r.DrawIndentGuides(indentLevel, 1, lastLinePos.VisualLine)
				isInIndentArea = true
				decorations.renderVirtualLines(r, lastLinePos)
			}
			lastLinePos = LinePos{FirstVisualLine: docLine != lastLinePos.DocLine, DocLine: docLine, VisualLine: pos.Row}
			decorations.decorateLine(r, lastLinePos)
		}

		if charPos >= styleSp.end {
			next, ok := styles.next()
			if !ok {
				styleSp = styleSpan{style: r.TextStyle, end: maxCharIdx}
			} else {
				styleSp = next
			}
		}

		style := styleSp.style
		if g.HasHighlight {
			style = theme.Style(g.Highlight).Inherit(r.TextStyle)
		}

		decorations.decoratePosition(charPos, r, pos)
		charPos += g.DocChars

		if g.Grapheme.Kind != grapheme.KindNewline {
			r.DrawGrapheme(g.Grapheme.Cluster, style, &indentLevel, &isInIndentArea, pos)
		}
	}

	r.DrawIndentGuides(indentLevel, 1, lastLinePos.VisualLine)
	decorations.renderVirtualLines(r, lastLinePos)

	return r.Surface
}
