package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chunkscribe/internal/logs"
	"chunkscribe/internal/services"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var runID string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the chunkscribe log file",
		Long:  "logs prints the tail of <log_dir>/chunkscribe.log. It requires paths.log_dir to be set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := cfg.LogFilePath()
			if path == "" {
				return services.Wrap(services.ErrConfiguration, "logs", "locate log file",
					"paths.log_dir is not set; logs only go to stderr", nil)
			}

			match := runMatcher(runID)
			out := cmd.OutOrStdout()
			emit := func(line string) error {
				_, err := fmt.Fprintln(out, line)
				return err
			}
			if follow {
				return logs.Follow(cmd.Context(), path, lines, match, emit)
			}

			result, err := logs.Tail(cmd.Context(), path, logs.TailOptions{Offset: -1, Limit: lines, Match: match})
			if err != nil {
				return err
			}
			for _, line := range result.Lines {
				if err := emit(line); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().StringVar(&runID, "run", "", "Only show lines for this run id (or its first 8 characters)")
	return cmd
}

// runMatcher matches console lines ("Run 1a2b3c4d") and JSON lines (full
// run_id) by the id's first 8 characters.
func runMatcher(runID string) func(string) bool {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil
	}
	if len(runID) > 8 {
		runID = runID[:8]
	}
	return func(line string) bool {
		return strings.Contains(line, runID)
	}
}
