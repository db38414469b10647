package main

import (
	"github.com/spf13/cobra"

	"chunkscribe/internal/transcriber"
	"chunkscribe/internal/transcript"
)

type transcribeFlags struct {
	language string
	model    string
	format   string
	engine   string
}

func (f *transcribeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.language, "language", "l", "", "Language code such as en, or auto to detect")
	cmd.Flags().StringVarP(&f.model, "model", "m", "", "Model size: tiny, base, small, medium, or large")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "Transcript format: txt, json, srt, or vtt")
	cmd.Flags().StringVar(&f.engine, "engine", "", "Engine: whisper, whisperx, or openai")
}

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var flags transcribeFlags
	var output string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "transcribe <path>",
		Short: "Transcribe an audio file or a directory of parts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.configCopy()
			if err != nil {
				return err
			}
			applyTranscribeFlags(cmd, &flags, &base.Transcribe.Language, &base.Transcribe.Model, &base.Transcribe.Format, &base.Transcribe.Engine)
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
			t, err := newTranscriber(cfg, logger)
			if err != nil {
				return err
			}

			report, runErr := t.Run(cmd.Context(), transcriber.Request{
				Input:     input,
				OutputDir: out,
				Language:  cfg.Transcribe.Language,
				Model:     cfg.Transcribe.Model,
				Format:    transcript.Format(cfg.Transcribe.Format),
			})
			if jsonOutput {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else if report.Total > 0 {
				renderTranscriptTable(cmd, report)
			}
			return runErr
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (default transcripts next to the input)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the transcription report as JSON")
	return cmd
}

// applyTranscribeFlags writes changed flags into the given config fields.
func applyTranscribeFlags(cmd *cobra.Command, f *transcribeFlags, language, model, format, engine *string) {
	if cmd.Flags().Changed("language") {
		*language = normalizeFormat(f.language)
	}
	if cmd.Flags().Changed("model") {
		*model = normalizeFormat(f.model)
	}
	if cmd.Flags().Changed("format") {
		*format = normalizeFormat(f.format)
	}
	if cmd.Flags().Changed("engine") {
		*engine = normalizeFormat(f.engine)
	}
}
