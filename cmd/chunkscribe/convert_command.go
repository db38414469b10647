package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chunkscribe/internal/converter"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var output, format, quality string
	var force bool

	cmd := &cobra.Command{
		Use:   "convert <input>",
		Short: "Extract the audio track of a media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.configCopy()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("format") {
				base.Convert.AudioFormat = strings.ToLower(strings.TrimSpace(format))
			}
			if cmd.Flags().Changed("quality") {
				base.Convert.AudioQuality = strings.TrimSpace(quality)
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

			conv := newConverter(cfg, ctx.confirmer(cmd, force), logger)
			written, err := conv.Run(cmd.Context(), converter.Options{
				Input:   input,
				Output:  out,
				Format:  cfg.Convert.AudioFormat,
				Bitrate: cfg.Convert.AudioQuality,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), written)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output audio path (default <stem>.<format> in the working directory)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Audio format: mp3, wav, aac, or flac")
	cmd.Flags().StringVarP(&quality, "quality", "q", "", "Audio bitrate, e.g. 192k")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing output without asking")
	return cmd
}
