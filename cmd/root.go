// Package cmd implements glint's cobra command tree: render, watch, and
// diff, plus the persistent --config/--debug flags and logging
// bootstrap shared by all three.
package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/nels-koby/glint/internal/config"
	"github.com/nels-koby/glint/internal/log"
)

// stderrWrapWidth bounds wrapped status/error lines printed to stderr;
// configuration errors can chain several underlying causes into one long
// message, and a CLI running in a narrow terminal shouldn't have those
// wrap mid-word.
const stderrWrapWidth = 100

func init() {
	// See https://github.com/charmbracelet/bubbletea/issues/1036.
	_ = lipgloss.HasDarkBackground()
}

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:     "glint",
	Short:   "A terminal document-rendering and diff toolkit",
	Long:    "glint formats, highlights, and diffs documents for terminal display, the way a modal editor's rendering pipeline does.",
	Version: version,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/glint/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"enable debug logging to glint-debug.log (also: GLINT_DEBUG=1)")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(diffCmd)
}

func initConfig() {
	path := cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	loaded, err := config.Load(path)
	if err != nil {
		msg := fmt.Sprintf("glint: loading config: %v (falling back to defaults)", err)
		fmt.Fprintln(os.Stderr, wordwrap.String(msg, stderrWrapWidth))
		loaded = config.Defaults()
	}
	cfg = loaded
}

// initLogging turns on debug logging when requested by --debug or
// GLINT_DEBUG, returning a cleanup func to run before the command
// returns (always safe to defer unconditionally).
func initLogging() func() {
	debug := os.Getenv("GLINT_DEBUG") != "" || debugFlag
	if !debug {
		return func() {}
	}

	logPath := os.Getenv("GLINT_LOG")
	if logPath == "" {
		logPath = "glint-debug.log"
	}

	cleanup, err := log.Init(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "glint: initializing debug log: %v\n", err)
		return func() {}
	}
	log.Info(log.CatCLI, "glint starting", "version", version, "logPath", logPath)
	return cleanup
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string reported by --version, called from
// main with an ldflags-injected build version.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
