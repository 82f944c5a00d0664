// Package cli provides the command-line interface for cf-upload.
package cli

import (
	"io"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"cf-upload/internal/form"
	"cf-upload/internal/logging"
	"cf-upload/internal/scanner"
)

var (
	// Global flags
	logLevel string
	logFile  string

	// Scanner flags shared by run and scan
	concurrency int
	maxDepth    int
	excludes    []string
	extensions  []string
	showHidden  bool
	followLinks bool

	// Global logger
	logger  = zerolog.Nop()
	logSink io.Closer
)

// Version is set by the main package at startup.
var Version = "v0.1.0-dev"

// NewRootCmd creates the root command. Without a subcommand it runs the TUI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cf-upload",
		Short: "Conversational file upload form for the terminal",
		Long: `cf-upload asks the questions of a form one at a time. File questions
pick a file, check it against the size limit, read it with live progress and
hand it to the form once the read has settled.

Interactive mode (default) runs a terminal UI. "upload" runs a single file
question without one.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logSink != nil {
				logSink.Close()
				logSink = nil
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Append logs to this file")

	run := newRunCmd()
	rootCmd.Flags().AddFlagSet(run.Flags())
	rootCmd.RunE = run.RunE
	rootCmd.AddCommand(run, newUploadCmd(), newScanCmd())
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// setupLogger builds the global logger. Interactive runs own the terminal, so
// they only log when --log-file is given.
func setupLogger(cmd *cobra.Command, interactive bool) error {
	var w io.Writer
	switch {
	case logFile != "":
		f, err := logging.OpenFile(logFile)
		if err != nil {
			return err
		}
		logSink = f
		w = f
	case !interactive:
		w = cmd.ErrOrStderr()
	}
	l, err := logging.New(w, logLevel)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", runtime.NumCPU(), "Workers stat'ing files")
	cmd.Flags().IntVarP(&maxDepth, "max-depth", "m", -1, "Max depth for directory walk (-1 for unlimited)")
	cmd.Flags().StringArrayVarP(&excludes, "exclude", "x", nil, "Glob pattern to exclude (can repeat). Matches full path or basename.")
	cmd.Flags().StringSliceVarP(&extensions, "ext", "e", nil, "Only list files with these extensions (e.g. .pdf,.png)")
	cmd.Flags().BoolVar(&showHidden, "hidden", false, "Include dot files and dot directories")
	cmd.Flags().BoolVarP(&followLinks, "follow-symlinks", "L", false, "Follow symlinked directories")
}

func scanOptions() scanner.Options {
	return scanner.Options{
		Concurrency:   concurrency,
		MaxDepth:      maxDepth,
		FollowSymlink: followLinks,
		ShowHidden:    showHidden,
		Excludes:      excludes,
		Extensions:    extensions,
	}
}

// writeAnswers exports answers to path, or to out when path is "-" or empty.
func writeAnswers(out io.Writer, path, format string, answers []form.Answer) error {
	if path == "" || path == "-" {
		return form.Export(out, format, answers)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := form.Export(f, format, answers); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
