package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nels-koby/glint/internal/annotations"
	"github.com/nels-koby/glint/internal/config"
	"github.com/nels-koby/glint/internal/highlight"
	"github.com/nels-koby/glint/internal/render"
	"github.com/nels-koby/glint/internal/rope"
	"github.com/nels-koby/glint/internal/textfmt"
)

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Format and print a file through the rendering pipeline once",
	Long:  "Runs the DocumentFormatter, highlight overlay, and renderer pipeline once against a file and prints the result to stdout. Non-interactive, scripting-friendly.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func toTextFormat(f config.FormatConfig) textfmt.TextFormat {
	return textfmt.TextFormat{
		SoftWrap:        f.SoftWrap,
		TabWidth:        f.TabWidth,
		MaxWrap:         f.MaxWrap,
		MaxIndentRetain: f.MaxIndentRetain,
		WrapIndent:      f.WrapIndent,
		ViewportWidth:   f.ViewportWidth,
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	cleanup := initLogging()
	defer cleanup()

	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	r := rope.New(string(content))
	ann := annotations.New()
	format := toTextFormat(cfg.Format)

	formatter, _ := textfmt.NewAtPrevBlock(r, format, ann, 0)
	theme := highlight.DefaultTheme()
	decorations := render.NewDecorationManager()

	height := r.LineCount()*(format.MaxWrap+1) + 1
	surface := render.RenderText(formatter, highlight.NewEventSlice(nil), theme, decorations, format.ViewportWidth, height, 0)

	for _, line := range surface.Lines() {
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}
