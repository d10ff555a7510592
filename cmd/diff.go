package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/nels-koby/glint/internal/diff"
	"github.com/nels-koby/glint/internal/rope"
)

var diffCmd = &cobra.Command{
	Use:   "diff <base> <doc>",
	Short: "Run the line-diff worker once and print the resulting line-diff map",
	Args:  cobra.ExactArgs(2),
	RunE:  runDiff,
}

func runDiff(cmd *cobra.Command, args []string) error {
	cleanup := initLogging()
	defer cleanup()

	baseContent, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading base %s: %w", args[0], err)
	}
	docContent, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("reading doc %s: %w", args[1], err)
	}

	w := diff.New(rope.New(string(baseContent)), rope.New(string(docContent)))
	defer w.Close()

	diffs := w.GetLineDiffs()
	ops := diffs.Ops()
	lines := make([]int, 0, len(ops))
	for line := range ops {
		lines = append(lines, line)
	}
	sort.Ints(lines)

	out := cmd.OutOrStdout()
	for _, line := range lines {
		op := ops[line]
		fmt.Fprintf(out, "%d %s\n", line, lineOpString(op))
		if words, ok := diffs.Words(line); ok {
			fmt.Fprintf(out, "  words: %+v\n", words)
		}
	}
	return nil
}

func lineOpString(op diff.LineOp) string {
	switch op {
	case diff.LineAdded:
		return "added"
	case diff.LineDeleted:
		return "deleted"
	case diff.LineModified:
		return "modified"
	default:
		return "unchanged"
	}
}
