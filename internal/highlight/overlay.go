package highlight

// EventSource is a lazily-pulled stream of HighlightEvent. Implementations
// are expected to be single-pass and forward-only, since a render pass
// is synchronous and non-concurrent.
type EventSource interface {
	// Next returns the next event, or ok == false at end of stream.
	Next() (HighlightEvent, bool)
}

// SpanSource is a lazily-pulled stream of Span, strictly sorted and
// non-overlapping: for consecutive spans a, b, a.End <= b.Start.
type SpanSource interface {
	Next() (Span, bool)
}

// sliceEventSource and sliceSpanSource let callers build sources from a
// plain slice; used by the renderer for whole-line base streams and by
// callers assembling overlay spans ahead of time.
type sliceEventSource struct {
	events []HighlightEvent
	pos    int
}

// NewEventSlice adapts a slice of events into an EventSource.
func NewEventSlice(events []HighlightEvent) EventSource { return &sliceEventSource{events: events} }

func (s *sliceEventSource) Next() (HighlightEvent, bool) {
	if s.pos >= len(s.events) {
		return HighlightEvent{}, false
	}
	e := s.events[s.pos]
	s.pos++
	return e, true
}

type sliceSpanSource struct {
	spans []Span
	pos   int
}

// NewSpanSlice adapts a slice of spans into a SpanSource. The caller must
// ensure the slice is sorted ascending and non-overlapping.
func NewSpanSlice(spans []Span) SpanSource { return &sliceSpanSource{spans: spans} }

func (s *sliceSpanSource) Next() (Span, bool) {
	if s.pos >= len(s.spans) {
		return Span{}, false
	}
	sp := s.spans[s.pos]
	s.pos++
	return sp, true
}

// eventQueue is a fixed-capacity (2) LIFO stack used to stage a
// HighlightEnd plus its Source fragment while HighlightStart is emitted
// immediately: pop returns the most recently pushed event, so callers
// push in reverse emission order (End first, then Source).
// The overlay algorithm never queues more than two events at once.
type eventQueue struct {
	data [2]HighlightEvent
	len  int
}

func (q *eventQueue) push(e HighlightEvent) {
	q.data[q.len] = e
	q.len++
}

func (q *eventQueue) pop() (HighlightEvent, bool) {
	if q.len == 0 {
		return HighlightEvent{}, false
	}
	q.len--
	return q.data[q.len], true
}

// Overlay merges a base stream of HighlightEvent with a sorted,
// non-overlapping stream of overlay Spans into one nested event stream
// satisfying the balanced-brackets invariant: every Open is followed,
// eventually, by a matching Close, and overlays never cross a base
// event's boundary unclosed.
type Overlay struct {
	events EventSource
	spans  SpanSource

	nextEvent   *HighlightEvent
	currentSpan *Span
	queue       eventQueue
}

// NewOverlay constructs a composer over events and spans, pulling the
// first element of each eagerly so Next can look ahead.
func NewOverlay(events EventSource, spans SpanSource) *Overlay {
	o := &Overlay{events: events, spans: spans}
	if e, ok := events.Next(); ok {
		o.nextEvent = &e
	}
	if s, ok := spans.Next(); ok {
		o.currentSpan = &s
	}
	return o
}

func (o *Overlay) advanceSpan() {
	prev := o.currentSpan
	if s, ok := o.spans.Next(); ok {
		if prev != nil && s.Start < prev.End {
			panic("highlight: overlay spans must be sorted ascending and non-overlapping")
		}
		o.currentSpan = &s
	} else {
		o.currentSpan = nil
	}
}

func (o *Overlay) advanceEvent() {
	if e, ok := o.events.Next(); ok {
		o.nextEvent = &e
	} else {
		o.nextEvent = nil
	}
}

// partitionSource splits a Source{start,end} at partitionPoint, staging
// the suffix as the next base event and returning the unhighlighted
// prefix.
func (o *Overlay) partitionSource(start, end, partitionPoint int) HighlightEvent {
	suffix := Source(partitionPoint, end)
	o.nextEvent = &suffix
	return Source(start, partitionPoint)
}

// Next returns the next composed HighlightEvent, or ok == false at the
// end of the merged stream.
func (o *Overlay) Next() (HighlightEvent, bool) {
	if e, ok := o.queue.pop(); ok {
		return e, true
	}

	for o.nextEvent != nil && o.nextEvent.Kind == EventSource {
		start, end := o.nextEvent.Start, o.nextEvent.End
		if start == end {
			o.advanceEvent()
			continue
		}

		for o.currentSpan != nil && (o.currentSpan.End <= start || o.currentSpan.Start == o.currentSpan.End) {
			o.advanceSpan()
		}

		if o.currentSpan != nil && o.currentSpan.Start < end {
			span := *o.currentSpan
			if start < span.Start {
				return o.partitionSource(start, end, span.Start), true
			}

			o.queue.push(End())

			if span.End <= end {
				o.advanceSpan()
			}

			var event HighlightEvent
			if span.End < end {
				event = o.partitionSource(start, end, span.End)
			} else {
				o.advanceEvent()
				event = Source(start, end)
			}

			o.queue.push(event)
			return Start(span.Scope), true
		}

		break
	}

	if o.nextEvent != nil {
		e := *o.nextEvent
		o.advanceEvent()
		return e, true
	}

	// Unfinished span at EOF is allowed to finish.
	if o.currentSpan == nil {
		return HighlightEvent{}, false
	}
	span := *o.currentSpan
	o.currentSpan = nil
	o.queue.push(End())
	o.queue.push(Source(span.Start, span.End))
	return Start(span.Scope), true
}

// Collect drains o into a slice; intended for tests and small call sites,
// not the hot render path.
func Collect(o *Overlay) []HighlightEvent {
	var out []HighlightEvent
	for {
		e, ok := o.Next()
		if !ok {
			return out
		}
		out = append(out, e)
	}
}
