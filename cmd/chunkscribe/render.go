package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"chunkscribe/internal/chunker"
	"chunkscribe/internal/language"
	"chunkscribe/internal/pipeline"
	"chunkscribe/internal/transcriber"
)

func renderChunkTable(cmd *cobra.Command, report chunker.Report) {
	rows := make([][]string, 0, len(report.Chunks)+len(report.Failures))
	for _, c := range report.Chunks {
		rows = append(rows, []string{
			strconv.Itoa(c.Index),
			filepath.Base(c.Path),
			formatClock(c.StartMs),
			formatClock(c.EndMs),
			"ok",
		})
	}
	for _, f := range report.Failures {
		rows = append(rows, []string{"", f.Item, "", "", "failed: " + f.Message})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(
		[]string{"#", "File", "Start", "End", "Status"},
		rows,
		0, 2, 3,
	))
	fmt.Fprintf(out, "%d out of %d chunks written to %s\n", report.Succeeded, report.Total, report.OutputDir)
}

func renderTranscriptTable(cmd *cobra.Command, report transcriber.Report) {
	rows := make([][]string, 0, len(report.Outputs)+len(report.Failures))
	for _, o := range report.Outputs {
		rows = append(rows, []string{filepath.Base(o.Input), filepath.Base(o.Path), o.Language, strconv.Itoa(o.Segments)})
	}
	for _, f := range report.Failures {
		rows = append(rows, []string{f.Item, "failed: " + f.Message, "", ""})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(
		[]string{"Input", "Transcript", "Language", "Segments"},
		rows,
		3,
	))
	fmt.Fprintf(out, "%d out of %d files transcribed into %s\n", report.Succeeded, report.Total, report.OutputDir)
}

func renderProcessSummary(cmd *cobra.Command, cfg pipeline.Config, report pipeline.Report) {
	lang := cfg.Language
	if hint := language.Hint(lang); hint != "" {
		lang = fmt.Sprintf("%s (%s)", language.DisplayName(hint), hint)
	} else {
		lang = language.Auto
	}
	summary := [][]string{
		{"Input", report.Input},
		{"Language", lang},
		{"Model", cfg.Model},
	}
	if !cfg.SkipChunk {
		summary = append(summary, []string{"Chunk duration", fmt.Sprintf("%d min", cfg.ChunkMinutes)})
	}
	summary = append(summary,
		[]string{"Format", string(cfg.Format)},
		[]string{"Output", report.Layout.OutputDir},
		[]string{"Run", report.RunID},
	)

	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	stages := make([][]string, 0, len(report.Stages))
	for _, s := range report.Stages {
		items := ""
		if s.Total > 0 {
			items = fmt.Sprintf("%d/%d", s.Succeeded, s.Total)
		}
		detail := s.Output
		if s.Error != "" {
			detail = s.Error
		}
		status := string(s.Status)
		if colorize {
			status = statusStyles[stageKind(s.Status)].colors.Sprint(status)
		}
		stages = append(stages, []string{s.Name, status, items, formatDuration(s.Duration), detail})
	}

	fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, summary))
	fmt.Fprintln(out, renderTable(
		[]string{"Stage", "Status", "Items", "Duration", "Output"},
		stages,
		2, 3,
	))
	if report.OK() {
		fmt.Fprintln(out, renderStatusLine("Result", statusOK, "Processing complete", colorize))
	} else {
		message := fmt.Sprintf("Processing halted (%s)", strings.ReplaceAll(report.ErrorKind, "_", " "))
		fmt.Fprintln(out, renderStatusLine("Result", statusError, message, colorize))
	}
}

func formatClock(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	h := int(d / time.Hour)
	m := int(d%time.Hour) / int(time.Minute)
	s := int(d%time.Minute) / int(time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	return d.Round(time.Millisecond).String()
}
