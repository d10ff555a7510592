// Word-level diff highlighting for replaced lines. The line-level
// LineDiffs is supplemented here with segment-level detail for
// LineModified lines, so a renderer can underline just the changed
// words instead of the whole line, keyed on glint's flat document line
// indices.
package diff

import (
	"context"
	"strings"
	"time"
	"unicode"

	dmp "github.com/sergi/go-diff/diffmatchpatch"
)

const (
	// WordDiffMaxLineLength skips word diff for lines exceeding this length.
	WordDiffMaxLineLength = 500
	// WordDiffMaxPairs limits word diff computation to the first N
	// replaced-line pairs per diff recomputation.
	WordDiffMaxPairs = 100
	// WordDiffTimeout bounds how long word-diff computation may run for
	// one full recomputation.
	WordDiffTimeout = 50 * time.Millisecond
)

// WordSegmentType indicates whether a word-diff segment is unchanged,
// added, or deleted.
type WordSegmentType int

const (
	WordUnchanged WordSegmentType = iota
	WordAdded
	WordDeleted
)

// WordSegment is one contiguous run of a line classified by word-diff.
type WordSegment struct {
	Type WordSegmentType
	Text string
}

// WordDiffResult holds the word-level segments for one replaced line
// pair: OldSegments describe the base-side line, NewSegments the
// document-side line.
type WordDiffResult struct {
	OldSegments []WordSegment
	NewSegments []WordSegment
}

// tokenize splits a line into words, runs of whitespace, and individual
// punctuation/symbol runes, so word diff operates on meaningful units
// rather than raw characters.
func tokenize(line string) []string {
	if line == "" {
		return nil
	}
	var tokens []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	for _, r := range line {
		switch {
		case unicode.IsSpace(r):
			flush()
			tokens = append(tokens, string(r))
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			flush()
			tokens = append(tokens, string(r))
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// computeWordDiff computes word-level diff segments between one base
// line and one document line.
func computeWordDiff(oldLine, newLine string) WordDiffResult {
	if oldLine == "" && newLine == "" {
		return WordDiffResult{}
	}
	if oldLine == "" {
		return WordDiffResult{NewSegments: []WordSegment{{Type: WordAdded, Text: newLine}}}
	}
	if newLine == "" {
		return WordDiffResult{OldSegments: []WordSegment{{Type: WordDeleted, Text: oldLine}}}
	}

	oldTokens := tokenize(oldLine)
	newTokens := tokenize(newLine)

	d := dmp.New()
	oldText := strings.Join(oldTokens, "\x00")
	newText := strings.Join(newTokens, "\x00")

	diffs := d.DiffMain(oldText, newText, false)
	diffs = d.DiffCleanupSemantic(diffs)

	var result WordDiffResult
	for _, op := range diffs {
		text := strings.ReplaceAll(op.Text, "\x00", "")
		if text == "" {
			continue
		}
		switch op.Type {
		case dmp.DiffEqual:
			result.OldSegments = append(result.OldSegments, WordSegment{Type: WordUnchanged, Text: text})
			result.NewSegments = append(result.NewSegments, WordSegment{Type: WordUnchanged, Text: text})
		case dmp.DiffDelete:
			result.OldSegments = append(result.OldSegments, WordSegment{Type: WordDeleted, Text: text})
		case dmp.DiffInsert:
			result.NewSegments = append(result.NewSegments, WordSegment{Type: WordAdded, Text: text})
		}
	}
	return result
}

// replacePair is one base-line/document-line pairing inside a
// delete-then-insert run, eligible for word-level diffing.
type replacePair struct {
	baseText string
	docLine  int
	docText  string
}

// computeWordDiffs computes word-level segments for each pair in
// pairs, bounded by WordDiffMaxPairs and WordDiffTimeout, skipping any
// pair with a line longer than WordDiffMaxLineLength. The result maps
// document line index to its WordDiffResult.
func computeWordDiffs(pairs []replacePair) map[int]WordDiffResult {
	result := make(map[int]WordDiffResult)
	if len(pairs) == 0 {
		return result
	}
	if len(pairs) > WordDiffMaxPairs {
		pairs = pairs[:WordDiffMaxPairs]
	}

	ctx, cancel := context.WithTimeout(context.Background(), WordDiffTimeout)
	defer cancel()

	for _, p := range pairs {
		select {
		case <-ctx.Done():
			return result
		default:
		}
		if len(p.baseText) > WordDiffMaxLineLength || len(p.docText) > WordDiffMaxLineLength {
			continue
		}
		result[p.docLine] = computeWordDiff(p.baseText, p.docText)
	}
	return result
}
