package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"cf-upload/internal/config"
	"cf-upload/internal/control"
	"cf-upload/internal/eventloop"
	"cf-upload/internal/form"
	"cf-upload/internal/reader"
	"cf-upload/internal/tui"
)

func newRunCmd() *cobra.Command {
	var (
		formPath string
		maxSize  int64
		root     string
		output   string
		format   string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fill in a form interactively (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogger(cmd, true); err != nil {
				return err
			}
			cfg := config.Default(maxSize)
			if formPath != "" {
				var err error
				if cfg, err = config.Load(formPath); err != nil {
					return err
				}
			}
			absRoot, err := filepath.Abs(root)
			if err != nil {
				return fmt.Errorf("failed to resolve path: %w", err)
			}

			loop := eventloop.New(64)
			picker := control.NewPickerInput(loop)
			f, err := form.New(form.Options{
				Config:    cfg,
				Loop:      loop,
				Logger:    logger,
				Picker:    picker,
				NewReader: reader.NewFactory(loop),
			})
			if err != nil {
				return err
			}
			answers, err := tui.Run(f, loop, picker, absRoot, scanOptions())
			if err != nil {
				return fmt.Errorf("tui error: %w", err)
			}
			if !f.Done() {
				return nil
			}
			return writeAnswers(cmd.OutOrStdout(), output, format, answers)
		},
	}
	cmd.Flags().StringVarP(&formPath, "form", "f", "", "YAML form definition (default: a single file question)")
	cmd.Flags().Int64VarP(&maxSize, "max-size", "s", 0, "Size limit in bytes for the default file question")
	cmd.Flags().StringVarP(&root, "path", "p", ".", "Directory listed by the file picker")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Write answers to this file (- for stdout)")
	cmd.Flags().StringVar(&format, "format", form.FormatJSON, "Answer format: json, yaml or msgpack")
	addScanFlags(cmd)
	return cmd
}
