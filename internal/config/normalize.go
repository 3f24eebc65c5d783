package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lyricsync/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeSTT()
	c.normalizeGenius()
	c.normalizeYouTube()
	c.normalizeRows()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = filepath.Join(c.Paths.DataDir, "work")
	}
	if c.Paths.WorkDir, err = expandPath(strings.TrimSpace(c.Paths.WorkDir)); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DatabasePath) == "" {
		c.Paths.DatabasePath = filepath.Join(c.Paths.DataDir, defaultDatabaseName)
	}
	if c.Paths.DatabasePath, err = expandPath(strings.TrimSpace(c.Paths.DatabasePath)); err != nil {
		return fmt.Errorf("paths.database_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = lookupFirstEnv("OPENROUTER_API_KEY", "OPENAI_API_KEY")
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeout
	}
}

func (c *Config) normalizeSTT() {
	c.STT.Provider = strings.ToLower(strings.TrimSpace(c.STT.Provider))
	if c.STT.Provider == "" {
		c.STT.Provider = defaultSTTProvider
	}
	c.STT.Model = strings.TrimSpace(c.STT.Model)
	if c.STT.Model == "" {
		if c.STT.Provider == STTProviderOpenAI {
			c.STT.Model = defaultOpenAISTTModel
		} else {
			c.STT.Model = defaultWhisperXModel
		}
	}
	c.STT.Language = language.Normalize(c.STT.Language)
	if c.STT.Language == "" {
		c.STT.Language = defaultSTTLanguage
	}
	c.STT.APIKey = strings.TrimSpace(c.STT.APIKey)
	if c.STT.APIKey == "" {
		c.STT.APIKey = lookupFirstEnv("OPENAI_API_KEY")
	}
	c.STT.BaseURL = strings.TrimRight(strings.TrimSpace(c.STT.BaseURL), "/")
	if c.STT.BaseURL == "" {
		c.STT.BaseURL = defaultOpenAISTTBaseURL
	}
	if c.STT.TimeoutSeconds <= 0 {
		c.STT.TimeoutSeconds = defaultSTTTimeout
	}
}

func (c *Config) normalizeGenius() {
	c.Genius.AccessToken = strings.TrimSpace(c.Genius.AccessToken)
	if c.Genius.AccessToken == "" {
		c.Genius.AccessToken = lookupFirstEnv("GENIUS_ACCESS_TOKEN")
	}
	c.Genius.BaseURL = strings.TrimRight(strings.TrimSpace(c.Genius.BaseURL), "/")
	if c.Genius.BaseURL == "" {
		c.Genius.BaseURL = defaultGeniusBaseURL
	}
	c.Genius.WebURL = strings.TrimRight(strings.TrimSpace(c.Genius.WebURL), "/")
	if c.Genius.WebURL == "" {
		c.Genius.WebURL = defaultGeniusWebURL
	}
}

func (c *Config) normalizeYouTube() {
	c.YouTube.YtdlpBinary = strings.TrimSpace(c.YouTube.YtdlpBinary)
	if c.YouTube.YtdlpBinary == "" {
		c.YouTube.YtdlpBinary = defaultYtdlpBinary
	}
	c.YouTube.SubtitleLanguage = language.Normalize(c.YouTube.SubtitleLanguage)
	if c.YouTube.SubtitleLanguage == "" {
		c.YouTube.SubtitleLanguage = defaultSubtitleLanguage
	}
}

func (c *Config) normalizeRows() {
	if strings.TrimSpace(c.Rows.IntroTitle) == "" {
		c.Rows.IntroTitle = defaultIntroTitle
	}
	if strings.TrimSpace(c.Rows.InstrumentalTitle) == "" {
		c.Rows.InstrumentalTitle = defaultInstrumentalTitle
	}
	if strings.TrimSpace(c.Rows.OutroTitle) == "" {
		c.Rows.OutroTitle = defaultOutroTitle
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.File = strings.TrimSpace(c.Logging.File)
	if c.Logging.File != "" {
		if expanded, err := expandPath(c.Logging.File); err == nil {
			c.Logging.File = expanded
		}
	}
}

func lookupFirstEnv(keys ...string) string {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
