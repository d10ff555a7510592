// Package diff runs a debounced line-level diff between a document and
// its diff base (e.g. the VCS HEAD revision), republishing an
// up-to-date, read-only line-diff snapshot after each quiet period.
//
// The first change in a quiet period starts a debounce window capped by
// a hard maximum; subsequent changes reset the short debounce but never
// push past the cap, so a steady stream of edits still gets periodic
// diff updates. The underlying diff algorithm is
// github.com/sergi/go-diff/diffmatchpatch's line-mode diff
// (DiffLinesToChars + DiffMain + DiffCharsToLines), an implementation
// of Myers's O(ND) algorithm with the standard linear-space refinement;
// the same library backs the word-level diff in internal/diff/word.go.
package diff

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	dmp "github.com/sergi/go-diff/diffmatchpatch"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nels-koby/glint/internal/log"
	"github.com/nels-koby/glint/internal/rope"
)

const (
	// DebounceInterval is how long the worker waits after the most
	// recent event before recomputing the diff.
	DebounceInterval = 10 * time.Millisecond
	// MaxDebounce bounds how long a steady stream of events can delay
	// recomputation.
	MaxDebounce = 200 * time.Millisecond
	// Timeout bounds how long a single diff computation may run.
	Timeout = 200 * time.Millisecond
	// MaxLines is the line count above which either side of a diff is
	// skipped entirely rather than risk pathological runtime.
	MaxLines = 40000
)

// LineOp tags how a document line relates to the diff base.
type LineOp uint8

const (
	LineUnchanged LineOp = iota
	LineAdded
	LineModified
	LineDeleted
)

// LineDiffs is a read-only, line-indexed diff snapshot. Safe for
// concurrent readers; a Worker never mutates a LineDiffs once published.
type LineDiffs struct {
	ops   map[int]LineOp
	words map[int]WordDiffResult
}

func newLineDiffs() *LineDiffs {
	return &LineDiffs{ops: make(map[int]LineOp), words: make(map[int]WordDiffResult)}
}

func (d *LineDiffs) set(line int, op LineOp) { d.ops[line] = op }

// Get returns the diff op for a 0-based document line, or
// (LineUnchanged, false) if the line has no recorded change.
func (d *LineDiffs) Get(line int) (LineOp, bool) {
	op, ok := d.ops[line]
	return op, ok
}

// Words returns the word-level segments for a LineModified document
// line, if word diffing was computed for it (it is skipped for
// overlong lines or once WordDiffMaxPairs / WordDiffTimeout is hit).
func (d *LineDiffs) Words(line int) (WordDiffResult, bool) {
	w, ok := d.words[line]
	return w, ok
}

// Len reports how many lines have a recorded diff op.
func (d *LineDiffs) Len() int { return len(d.ops) }

// Ops returns a copy of the line->op map, for a caller (internal/
// diffpersist) that needs to persist a snapshot outside the Worker.
func (d *LineDiffs) Ops() map[int]LineOp {
	out := make(map[int]LineOp, len(d.ops))
	for line, op := range d.ops {
		out[line] = op
	}
	return out
}

// FromOps builds a LineDiffs snapshot from a precomputed line->op map,
// for a caller restoring a persisted snapshot rather than computing one
// via a Worker. It carries no word-level diff data; that's recomputed
// once a live Worker publishes its first real diff.
func FromOps(ops map[int]LineOp) *LineDiffs {
	d := newLineDiffs()
	for line, op := range ops {
		d.ops[line] = op
	}
	return d
}

// Event is the sum type Worker consumes: a new document revision or a
// new diff base revision.
type Event interface{ isDiffEvent() }

// UpdateDocument reports that the live document changed.
type UpdateDocument struct{ Rope *rope.Rope }

// UpdateDiffBase reports that the comparison base (e.g. VCS HEAD)
// changed.
type UpdateDiffBase struct{ Rope *rope.Rope }

func (UpdateDocument) isDiffEvent() {}
func (UpdateDiffBase) isDiffEvent() {}

// Worker owns a debounced diff computation between a document and its
// diff base, publishing LineDiffs snapshots other goroutines can read
// without synchronizing with the worker.
type Worker struct {
	queue    *unboundedQueue
	snapshot atomic.Pointer[LineDiffs]
	tracer   trace.Tracer
}

// New starts a Worker comparing doc against diffBase, computing an
// initial diff synchronously before returning.
func New(diffBase, doc *rope.Rope) *Worker {
	w := &Worker{queue: newUnboundedQueue()}
	w.snapshot.Store(newLineDiffs())

	baseCache := newLineCache(diffBase)
	docCache := newLineCache(doc)
	w.publish(w.runDiff(baseCache, docCache))

	go w.run(baseCache, docCache)
	return w
}

// SetTracer installs t as the tracer wrapping each publish cycle in a
// "diff.publish" span. Not safe to call concurrently with an in-flight
// publish; intended to be set once right after New returns. A nil
// tracer (the zero value) emits no spans.
func (w *Worker) SetTracer(t trace.Tracer) { w.tracer = t }

// GetLineDiffs returns the most recently published snapshot.
func (w *Worker) GetLineDiffs() *LineDiffs { return w.snapshot.Load() }

// UpdateDocument enqueues a new document revision. Never blocks.
func (w *Worker) UpdateDocument(r *rope.Rope) { w.queue.Send(UpdateDocument{Rope: r}) }

// UpdateDiffBase enqueues a new diff-base revision. Never blocks.
func (w *Worker) UpdateDiffBase(r *rope.Rope) { w.queue.Send(UpdateDiffBase{Rope: r}) }

// Close stops the worker once any buffered events have been processed.
func (w *Worker) Close() { w.queue.Close() }

func (w *Worker) run(baseCache, docCache *lineCache) {
	for {
		first, ok := <-w.queue.out
		if !ok {
			return
		}
		baseCache, docCache = applyEvent(first, baseCache, docCache)

		deadline := time.Now().Add(DebounceInterval)
		finalTime := time.Now().Add(MaxDebounce)

	accumulate:
		for {
			if deadline.After(finalTime) {
				deadline = finalTime
			}
			wait := time.Until(deadline)
			if wait < 0 {
				wait = 0
			}
			timer := time.NewTimer(wait)
			select {
			case e, ok := <-w.queue.out:
				timer.Stop()
				if !ok {
					break accumulate
				}
				baseCache, docCache = applyEvent(e, baseCache, docCache)
				deadline = time.Now().Add(DebounceInterval)
				if !time.Now().Before(finalTime) {
					break accumulate
				}
			case <-timer.C:
				break accumulate
			}
		}

		w.publish(w.runDiff(baseCache, docCache))
	}
}

func applyEvent(e Event, baseCache, docCache *lineCache) (*lineCache, *lineCache) {
	switch ev := e.(type) {
	case UpdateDocument:
		docCache.update(ev.Rope)
	case UpdateDiffBase:
		baseCache.update(ev.Rope)
	}
	return baseCache, docCache
}

// publish atomically swaps in diffs. The previous snapshot is dropped,
// not reused; readers still holding it keep an unchanged map.
func (w *Worker) publish(diffs *LineDiffs) {
	old := w.snapshot.Swap(diffs)
	_ = old // a GC'd language has no try_unwrap-style reclaim; the old snapshot is simply dropped
}

// runDiff wraps performDiff in a "diff.publish" span when a tracer has
// been installed via SetTracer, recording the resulting changed-line
// count as a span attribute.
func (w *Worker) runDiff(baseCache, docCache *lineCache) *LineDiffs {
	if w.tracer == nil {
		return w.performDiff(baseCache, docCache)
	}
	_, span := w.tracer.Start(context.Background(), "diff.publish")
	defer span.End()
	result := w.performDiff(baseCache, docCache)
	span.SetAttributes(attribute.Int("diff.changed_lines", result.Len()))
	return result
}

func (w *Worker) performDiff(baseCache, docCache *lineCache) *LineDiffs {
	result := newLineDiffs()
	if baseCache.LineCount() > MaxLines || docCache.LineCount() > MaxLines {
		log.Warn(log.CatDiff, "skipping diff, line count exceeds limit", "base_lines", baseCache.LineCount(), "doc_lines", docCache.LineCount(), "limit", MaxLines)
		return result
	}

	d := dmp.New()
	// DiffTimeout bounds DiffMain's own internal runtime checks; there is
	// no external context to cancel mid-algorithm, matching the
	// library's cooperative (not preemptive) deadline.
	d.DiffTimeout = Timeout

	baseText, docText := baseCache.Text(), docCache.Text()
	baseChars, docChars, lineArray := d.DiffLinesToChars(baseText, docText)
	diffs := d.DiffMain(baseChars, docChars, false)
	diffs = d.DiffCharsToLines(diffs, lineArray)

	baseLines := baseCache.Lines()
	docLines := docCache.Lines()

	docLine := 0
	baseLine := 0
	var pendingDeleted []string
	var pairs []replacePair
	flushReplace := func() { pendingDeleted = nil }

	for _, op := range diffs {
		lines := countLines(op.Text)
		switch op.Type {
		case dmp.DiffEqual:
			docLine += lines
			baseLine += lines
			flushReplace()
		case dmp.DiffDelete:
			result.set(docLine, LineDeleted)
			for i := 0; i < lines && baseLine+i < len(baseLines); i++ {
				pendingDeleted = append(pendingDeleted, baseLines[baseLine+i].String())
			}
			baseLine += lines
		case dmp.DiffInsert:
			lineOp := LineAdded
			if len(pendingDeleted) > 0 {
				lineOp = LineModified
			}
			for i := 0; i < lines; i++ {
				result.set(docLine+i, lineOp)
				if i < len(pendingDeleted) && docLine+i < len(docLines) {
					pairs = append(pairs, replacePair{
						baseText: pendingDeleted[i],
						docLine:  docLine + i,
						docText:  docLines[docLine+i].String(),
					})
				}
			}
			docLine += lines
			flushReplace()
		}
	}

	result.words = computeWordDiffs(pairs)
	return result
}

// countLines counts the newline-terminated (or trailing partial) lines
// in s, matching how Rope.LineCount treats a trailing partial line.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
