package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeConvert()
	c.normalizeChunk()
	c.normalizeTranscribe()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.History.Path, err = expandPath(strings.TrimSpace(c.History.Path)); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeConvert() {
	c.Convert.FFmpegBinary = strings.TrimSpace(c.Convert.FFmpegBinary)
	c.Convert.FFprobeBinary = strings.TrimSpace(c.Convert.FFprobeBinary)
	c.Convert.AudioFormat = lowerOr(c.Convert.AudioFormat, defaultAudioFormat)
	c.Convert.AudioQuality = strings.TrimSpace(c.Convert.AudioQuality)
	if c.Convert.AudioQuality == "" {
		c.Convert.AudioQuality = defaultAudioQuality
	}
}

func (c *Config) normalizeChunk() {
	c.Chunk.Format = lowerOr(c.Chunk.Format, defaultAudioFormat)
}

func (c *Config) normalizeTranscribe() {
	t := &c.Transcribe
	t.Engine = lowerOr(t.Engine, defaultEngine)
	t.Language = lowerOr(t.Language, defaultLanguage)
	t.Model = lowerOr(t.Model, defaultModel)
	t.Format = lowerOr(t.Format, defaultOutputFormat)
	t.WhisperBinary = strings.TrimSpace(t.WhisperBinary)
	if t.WhisperBinary == "" {
		t.WhisperBinary = defaultWhisperBinary
	}
	t.UVXBinary = strings.TrimSpace(t.UVXBinary)
	if t.UVXBinary == "" {
		t.UVXBinary = defaultUVXBinary
	}
	if t.OpenAIAPIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			t.OpenAIAPIKey = strings.TrimSpace(value)
		}
	}
	t.OpenAIBaseURL = strings.TrimRight(strings.TrimSpace(t.OpenAIBaseURL), "/")
	if t.OpenAIBaseURL == "" {
		t.OpenAIBaseURL = defaultOpenAIBaseURL
	}
	t.OpenAIModel = strings.TrimSpace(t.OpenAIModel)
	if t.OpenAIModel == "" {
		t.OpenAIModel = defaultOpenAIModel
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = lowerOr(c.Logging.Format, defaultLogFormat)
	c.Logging.Level = lowerOr(c.Logging.Level, defaultLogLevel)
}

func lowerOr(value, fallback string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return fallback
	}
	return value
}
