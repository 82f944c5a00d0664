package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"cf-upload/internal/control"
	"cf-upload/internal/scanner"
	"cf-upload/pkg/utils"
)

type scanEntry struct {
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Accepted bool   `json:"accepted"`
	Error    string `json:"error,omitempty"`
}

func newScanCmd() *cobra.Command {
	var (
		jsonOut bool
		maxSize int64
	)
	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "List candidate files and whether the size limit accepts them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogger(cmd, false); err != nil {
				return err
			}
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			absRoot, err := filepath.Abs(root)
			if err != nil {
				return fmt.Errorf("failed to resolve path: %w", err)
			}
			limit := maxSize
			if limit <= 0 {
				limit = control.DefaultMaxFileSize
			}

			start := time.Now()
			results, scanErr := scanner.ScanFiles(cmd.Context(), absRoot, scanOptions())
			if scanErr != nil {
				logger.Warn().Err(scanErr).Msg("scan completed with errors")
			}
			entries := make([]scanEntry, 0, len(results))
			accepted := 0
			for _, r := range results {
				e := scanEntry{Path: r.Path, Size: r.Size, Accepted: r.Err == nil && r.Size <= limit}
				if r.Err != nil {
					e.Error = r.Err.Error()
				}
				if e.Accepted {
					accepted++
				}
				entries = append(entries, e)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				payload := struct {
					Root     string      `json:"root"`
					MaxSize  int64       `json:"maxSize"`
					Accepted int         `json:"accepted"`
					Results  []scanEntry `json:"results"`
					Duration string      `json:"duration"`
				}{Root: absRoot, MaxSize: limit, Accepted: accepted, Results: entries, Duration: time.Since(start).String()}
				if err := enc.Encode(payload); err != nil {
					return fmt.Errorf("failed to write json: %w", err)
				}
			} else {
				fmt.Fprintf(out, "cf-upload scan\nroot: %s\nlimit: %s\nfound: %d\n", absRoot, utils.HumanizeFileSize(limit), len(entries))
				fmt.Fprintln(out, "----------------------------------------------")
				for _, e := range entries {
					verdict := "ok"
					switch {
					case e.Error != "":
						verdict = "ERROR: " + e.Error
					case !e.Accepted:
						verdict = "too big"
					}
					fmt.Fprintf(out, "%s\t%s\t%s\n", e.Path, utils.HumanizeBytes(e.Size), verdict)
				}
				fmt.Fprintln(out, "----------------------------------------------")
				fmt.Fprintf(out, "Accepted: %d of %d\n", accepted, len(entries))
				fmt.Fprintf(out, "Duration: %s\n", time.Since(start).Round(time.Millisecond))
			}
			return scanErr
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON instead of table")
	cmd.Flags().Int64VarP(&maxSize, "max-size", "s", 0, "Size limit in bytes (default 100000000000)")
	addScanFlags(cmd)
	return cmd
}
