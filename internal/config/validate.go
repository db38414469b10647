package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateConvert(); err != nil {
		return err
	}
	if err := c.validateChunk(); err != nil {
		return err
	}
	if err := c.validateTranscribe(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateConvert() error {
	if err := ensureOneOf("convert.audio_format", c.Convert.AudioFormat, AudioFormats); err != nil {
		return err
	}
	if strings.TrimSpace(c.Convert.AudioQuality) == "" {
		return errors.New("convert.audio_quality must be set")
	}
	return nil
}

func (c *Config) validateChunk() error {
	if c.Chunk.DurationMinutes <= 0 {
		return errors.New("chunk.duration_minutes must be positive")
	}
	return ensureOneOf("chunk.format", c.Chunk.Format, AudioFormats)
}

func (c *Config) validateTranscribe() error {
	t := c.Transcribe
	if err := ensureOneOf("transcribe.engine", t.Engine, Engines); err != nil {
		return err
	}
	if err := ensureOneOf("transcribe.format", t.Format, TranscriptFormats); err != nil {
		return err
	}
	if strings.TrimSpace(t.Language) == "" {
		return fmt.Errorf("transcribe.language must be a language code or %q", LanguageAuto)
	}
	switch t.Engine {
	case EngineOpenAI:
		if strings.TrimSpace(t.OpenAIAPIKey) == "" {
			return errors.New("transcribe.openai_api_key must be set when transcribe.engine is openai (or set OPENAI_API_KEY)")
		}
	default:
		if err := ensureOneOf("transcribe.model", t.Model, ModelSizes); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateNotifications() error {
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	if !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return fmt.Errorf("notifications.ntfy_topic must be a full URL such as https://ntfy.sh/my-topic, got %q", topic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	return ensureOneOf("logging.format", c.Logging.Format, []string{"console", "json"})
}

func ensureOneOf(key, value string, allowed []string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("%s: unsupported value %q (expected one of %s)", key, value, strings.Join(allowed, ", "))
}
