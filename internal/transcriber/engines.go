package transcriber

import (
	"fmt"

	"chunkscribe/internal/config"
	"chunkscribe/internal/services"
	"chunkscribe/internal/services/whisper"
	"chunkscribe/internal/services/whisperapi"
	"chunkscribe/internal/services/whisperx"
)

// NewEngine builds the engine selected by cfg.Engine.
func NewEngine(cfg config.Transcribe) (Engine, error) {
	switch cfg.Engine {
	case config.EngineWhisper, "":
		return whisper.New(cfg.WhisperBinary), nil
	case config.EngineWhisperX:
		return whisperx.NewService(whisperx.Config{
			UVXBinary:   cfg.UVXBinary,
			CUDAEnabled: cfg.WhisperXCUDAEnabled,
		}), nil
	case config.EngineOpenAI:
		return whisperapi.New(whisperapi.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		})
	default:
		return nil, services.Wrap(services.ErrConfiguration, stageName, "select engine", fmt.Sprintf("unknown engine %q", cfg.Engine), nil)
	}
}
