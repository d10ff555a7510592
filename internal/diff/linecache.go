package diff

import "github.com/nels-koby/glint/internal/rope"

// lineCache is a flat, line-indexed view over a Rope's slices, rebuilt
// whenever the underlying rope changes. A rope.Slice shares its backing
// []rune array by value, so rebuilding the slice list from scratch on
// every update is cheap and carries no lifetime hazards.
type lineCache struct {
	rope  *rope.Rope
	lines []rope.Slice
}

func newLineCache(r *rope.Rope) *lineCache {
	c := &lineCache{}
	c.update(r)
	return c
}

// update replaces the cached rope and rebuilds the line slice list,
// reusing the backing array of the previous lines slice.
func (c *lineCache) update(r *rope.Rope) {
	c.rope = r
	c.lines = c.lines[:0]
	n := r.LineCount()
	for i := 0; i < n; i++ {
		start := r.LineToChar(i)
		end := r.Len()
		if i+1 < n {
			end = r.LineToChar(i + 1)
		}
		c.lines = append(c.lines, r.Slice(start, end))
	}
}

// Lines returns the cached per-line slices.
func (c *lineCache) Lines() []rope.Slice { return c.lines }

// Text materializes the entire cached rope as one string.
func (c *lineCache) Text() string { return c.rope.String() }

// LineCount returns the number of cached lines.
func (c *lineCache) LineCount() int { return len(c.lines) }
