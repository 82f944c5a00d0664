package cli

import (
	"time"

	"github.com/spf13/cobra"

	"cf-upload/internal/config"
	"cf-upload/internal/form"
	"cf-upload/internal/headless"
)

func newUploadCmd() *cobra.Command {
	var (
		maxSize  int64
		settle   time.Duration
		formPath string
		output   string
		format   string
	)
	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Select one file without the terminal UI",
		Long: `Select a file in a single upload question, show the read progress and
print READY once the file has been handed over. Exits non-zero when the file
is over the size limit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogger(cmd, false); err != nil {
				return err
			}
			opts := headless.Options{
				Path:        args[0],
				MaxSize:     maxSize,
				SettleDelay: settle,
				Logger:      logger,
				Out:         cmd.ErrOrStderr(),
			}
			if formPath != "" {
				cfg, err := config.Load(formPath)
				if err != nil {
					return err
				}
				opts.Dictionary = cfg.Dictionary
				if field, ok := cfg.FileField(); ok {
					opts.Attributes = field.Attributes
				}
				if opts.SettleDelay == 0 {
					opts.SettleDelay = time.Duration(cfg.SettleDelay)
				}
			}
			a, err := headless.Upload(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if output == "" {
				return nil
			}
			return writeAnswers(cmd.OutOrStdout(), output, format, []form.Answer{a})
		},
	}
	cmd.Flags().Int64VarP(&maxSize, "max-size", "s", 0, "Size limit in bytes (default: the form's file field, else 100000000000)")
	cmd.Flags().DurationVar(&settle, "settle-delay", 0, "Pause between a finished read and READY (default 2s)")
	cmd.Flags().StringVarP(&formPath, "form", "f", "", "YAML form definition to take settings and texts from")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the answer to this file (- for stdout)")
	cmd.Flags().StringVar(&format, "format", form.FormatJSON, "Answer format: json, yaml or msgpack")
	return cmd
}
