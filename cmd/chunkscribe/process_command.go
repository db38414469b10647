package main

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"chunkscribe/internal/config"
	"chunkscribe/internal/history"
	"chunkscribe/internal/logging"
	"chunkscribe/internal/notifications"
	"chunkscribe/internal/pipeline"
	"chunkscribe/internal/preflight"
	"chunkscribe/internal/transcript"
)

type processFlags struct {
	transcribe     transcribeFlags
	minutes        int
	output         string
	audioFormat    string
	audioQuality   string
	skipConvert    bool
	skipChunk      bool
	skipTranscribe bool
	force          bool
	jsonOutput     bool
	noHistory      bool
	noNotify       bool
}

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var flags processFlags

	cmd := &cobra.Command{
		Use:   "process <input>",
		Short: "Convert, cut, and transcribe in one run",
		Long: "process runs convert, chunk, and transcribe in order. The first failing stage ends the run;\n" +
			"skipped stages pass their input straight to the next stage.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, ctx, &flags, args[0])
		},
	}

	flags.transcribe.register(cmd)
	cmd.Flags().IntVarP(&flags.minutes, "duration", "d", 0, "Part length in minutes")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output directory (default: the input's directory)")
	cmd.Flags().StringVar(&flags.audioFormat, "audio-format", "", "Extracted audio format: mp3, wav, aac, or flac")
	cmd.Flags().StringVar(&flags.audioQuality, "audio-quality", "", "Extracted audio bitrate, e.g. 192k")
	cmd.Flags().BoolVar(&flags.skipConvert, "skip-video-conversion", false, "Treat the input as audio and skip conversion")
	cmd.Flags().BoolVar(&flags.skipChunk, "skip-cutting", false, "Transcribe the audio without cutting it")
	cmd.Flags().BoolVar(&flags.skipTranscribe, "skip-transcription", false, "Stop after cutting")
	cmd.Flags().BoolVar(&flags.force, "force", false, "Overwrite existing audio without asking")
	cmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "Print the run report as JSON")
	cmd.Flags().BoolVar(&flags.noHistory, "no-history", false, "Do not record this run in the history ledger")
	cmd.Flags().BoolVar(&flags.noNotify, "no-notify", false, "Do not send an ntfy notification for this run")
	return cmd
}

func runProcess(cmd *cobra.Command, ctx *commandContext, flags *processFlags, arg string) error {
	base, err := ctx.configCopy()
	if err != nil {
		return err
	}
	fs := cmd.Flags()
	if fs.Changed("duration") {
		base.Chunk.DurationMinutes = flags.minutes
	}
	if fs.Changed("audio-format") {
		base.Convert.AudioFormat = normalizeFormat(flags.audioFormat)
	}
	if fs.Changed("audio-quality") {
		base.Convert.AudioQuality = strings.TrimSpace(flags.audioQuality)
	}
	applyTranscribeFlags(cmd, &flags.transcribe, &base.Transcribe.Language, &base.Transcribe.Model, &base.Transcribe.Format, &base.Transcribe.Engine)
	cfg, err := validated(base)
	if err != nil {
		return err
	}

	input, err := expandInput(arg)
	if err != nil {
		return err
	}
	outputDir, err := expandOptional(flags.output)
	if err != nil {
		return err
	}
	logger, err := ctx.logger(cmd)
	if err != nil {
		return err
	}

	pcfg := pipeline.Config{
		Input:          input,
		OutputDir:      outputDir,
		AudioFormat:    cfg.Convert.AudioFormat,
		AudioQuality:   cfg.Convert.AudioQuality,
		ChunkMinutes:   cfg.Chunk.DurationMinutes,
		Language:       cfg.Transcribe.Language,
		Model:          cfg.Transcribe.Model,
		Format:         transcript.Format(cfg.Transcribe.Format),
		SkipConvert:    flags.skipConvert,
		SkipChunk:      flags.skipChunk,
		SkipTranscribe: flags.skipTranscribe,
	}

	comps := pipeline.Components{
		Converter: newConverter(cfg, ctx.confirmer(cmd, flags.force), logger),
		Chunker:   newChunker(cfg, logger),
	}
	if !pcfg.SkipTranscribe {
		comps.Transcriber, err = newTranscriber(cfg, logger)
		if err != nil {
			return err
		}
	}
	warnPreflight(cmd, cfg, logger)

	layout := pipeline.NewLayout(input, outputDir, pcfg.AudioFormat)
	var opts []pipeline.Option
	if cfg.History.Enabled && !flags.noHistory {
		store, err := history.Open(cfg.HistoryPath())
		if err != nil {
			logging.WarnWithContext(logger, "history ledger unavailable", "history_open_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "this run will not appear in `chunkscribe history`"),
				logging.String(logging.FieldErrorHint, "check paths.state_dir or set history.enabled = false"),
			)
		} else {
			defer store.Close()
			opts = append(opts, pipeline.WithObserver(history.NewRecorder(store, logger)))
		}
	}
	if svc := notifications.NewService(cfg.Notifications); notifications.Enabled(svc) && !flags.noNotify {
		opts = append(opts, pipeline.WithObserver(notifications.NewObserver(svc, cfg.Notifications.OnSuccess, logger)))
	}

	report := pipeline.New(logger, pipeline.Steps(pcfg, layout, comps), opts...).Run(cmd.Context(), input, layout)

	if flags.jsonOutput {
		if err := writeJSON(cmd, report); err != nil {
			return err
		}
	} else {
		renderProcessSummary(cmd, pcfg, report)
	}
	return report.Err
}

func warnPreflight(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) {
	for _, result := range preflight.Failed(preflight.RunAll(cmd.Context(), cfg)) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldImpact, "stages depending on it are likely to fail"),
			logging.String(logging.FieldErrorHint, "run `chunkscribe check` for details"),
		)
	}
}
