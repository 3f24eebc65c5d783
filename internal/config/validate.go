package config

import (
	"errors"
	"fmt"

	"lyricsync/internal/language"
)

// Validate ensures the configuration is usable. Credentials are not required
// here; the commands that need them report a missing key themselves.
func (c *Config) Validate() error {
	if err := c.validateSTT(); err != nil {
		return err
	}
	if err := c.validateAlignment(); err != nil {
		return err
	}
	if err := c.validateRows(); err != nil {
		return err
	}
	if _, ok := language.Code(c.YouTube.SubtitleLanguage); !ok {
		return fmt.Errorf("youtube.subtitle_language: unrecognized language %q", c.YouTube.SubtitleLanguage)
	}
	if c.Prepare.FetchAttempts < 1 {
		return errors.New("prepare.fetch_attempts must be at least 1")
	}
	return c.validateLogging()
}

func (c *Config) validateSTT() error {
	switch c.STT.Provider {
	case STTProviderWhisperX, STTProviderOpenAI:
	default:
		return fmt.Errorf("stt.provider: unsupported value %q (want %q or %q)", c.STT.Provider, STTProviderWhisperX, STTProviderOpenAI)
	}
	if _, ok := language.Code(c.STT.Language); !ok {
		return fmt.Errorf("stt.language: unrecognized language %q", c.STT.Language)
	}
	if c.STT.MinAttempts < 1 {
		return errors.New("stt.min_attempts must be at least 1")
	}
	if c.STT.MaxAttempts < c.STT.MinAttempts {
		return fmt.Errorf("stt.max_attempts (%d) must be >= stt.min_attempts (%d)", c.STT.MaxAttempts, c.STT.MinAttempts)
	}
	if c.STT.TargetSimilarity < 0 || c.STT.TargetSimilarity > 100 {
		return errors.New("stt.target_similarity must be between 0 and 100")
	}
	return nil
}

func (c *Config) validateAlignment() error {
	if c.Alignment.SimilarityThreshold < 0 || c.Alignment.SimilarityThreshold >= 100 {
		return errors.New("alignment.similarity_threshold must be between 0 and 100")
	}
	return nil
}

func (c *Config) validateRows() error {
	if c.Rows.InstrumentalThresholdMS < 0 {
		return errors.New("rows.instrumental_threshold_ms must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
