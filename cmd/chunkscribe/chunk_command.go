package main

import (
	"github.com/spf13/cobra"

	"chunkscribe/internal/chunker"
)

func newChunkCommand(ctx *commandContext) *cobra.Command {
	var output, format string
	var minutes int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "chunk <input>",
		Short: "Cut audio into fixed-length parts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.configCopy()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("duration") {
				base.Chunk.DurationMinutes = minutes
			}
			if cmd.Flags().Changed("format") {
				base.Chunk.Format = normalizeFormat(format)
			}
			cfg, err := validated(base)
			if err != nil {
				return err
			}
			input, err := expandInput(args[0])
			if err != nil {
				return err
			}
			out, err := expandOptional(output)
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}

			report, runErr := newChunker(cfg, logger).Run(cmd.Context(), chunker.Request{
				Input:        input,
				OutputDir:    out,
				ChunkMinutes: cfg.Chunk.DurationMinutes,
				Format:       cfg.Chunk.Format,
			})
			if jsonOutput {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else if report.Total > 0 {
				renderChunkTable(cmd, report)
			}
			return runErr
		},
	}

	cmd.Flags().IntVarP(&minutes, "duration", "d", 0, "Part length in minutes")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (default <stem>_chunks next to the input)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Part format: mp3, wav, aac, or flac")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the chunk report as JSON")
	return cmd
}
