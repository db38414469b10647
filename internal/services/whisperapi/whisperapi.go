// Package whisperapi transcribes audio through the OpenAI audio transcription
// endpoint, or any server that speaks the same API.
package whisperapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	langpkg "chunkscribe/internal/language"
	"chunkscribe/internal/services"
	"chunkscribe/internal/transcript"
)

// Config holds API credentials and the remote model name.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Engine calls CreateTranscription with verbose JSON output so segment
// timings are available.
type Engine struct {
	client *openai.Client
	model  string
}

// New builds an Engine. Model defaults to whisper-1.
func New(cfg Config) (*Engine, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "openai", "api key is required (set OPENAI_API_KEY)", nil)
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		clientCfg.BaseURL = base
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = openai.Whisper1
	}
	return &Engine{client: openai.NewClientWithConfig(clientCfg), model: model}, nil
}

// Name identifies the engine in logs.
func (e *Engine) Name() string { return "openai" }

// Transcribe uploads path and converts the verbose response. The local
// model size in opts is ignored; the remote model comes from Config.
func (e *Engine) Transcribe(ctx context.Context, path string, opts transcript.Options) (transcript.Result, error) {
	resp, err := e.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    e.model,
		FilePath: path,
		Language: opts.Language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return transcript.Result{}, classify(err)
	}

	result := transcript.Result{
		Text:     strings.TrimSpace(resp.Text),
		Language: normalizeLanguage(resp.Language),
		Segments: make([]transcript.Segment, 0, len(resp.Segments)),
	}
	for _, seg := range resp.Segments {
		result.Segments = append(result.Segments, transcript.Segment{Start: seg.Start, End: seg.End, Text: seg.Text})
	}
	return result, nil
}

// normalizeLanguage maps names such as "english" to ISO 639-1; the API
// reports the detected language as a lowercase English word.
func normalizeLanguage(value string) string {
	if iso := langpkg.ToISO2(value); iso != "" {
		return iso
	}
	return strings.TrimSpace(value)
}

func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return services.Wrap(services.ErrConfiguration, "transcribe", "openai", "request rejected, check openai_api_key", err)
		}
	}
	return services.Wrap(services.ErrExternalTool, "transcribe", "openai", "", err)
}

// HealthCheck lists models to confirm the endpoint is reachable and the key
// is accepted.
func (e *Engine) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return classify(err)
	}
	return nil
}
