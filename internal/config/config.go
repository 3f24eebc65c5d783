package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains on-disk locations.
type Paths struct {
	DataDir      string `toml:"data_dir"`
	WorkDir      string `toml:"work_dir"`
	DatabasePath string `toml:"database_path"`
}

// LLM contains chat-completion settings for the fallback line matcher.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// STT contains speech-to-text settings used by the word aligner.
type STT struct {
	// Provider is "whisperx" (local, via uvx) or "openai" (HTTP API).
	Provider         string  `toml:"provider"`
	Model            string  `toml:"model"`
	Language         string  `toml:"language"`
	CUDA             bool    `toml:"cuda"`
	APIKey           string  `toml:"api_key"`
	BaseURL          string  `toml:"base_url"`
	TimeoutSeconds   int     `toml:"timeout_seconds"`
	MinAttempts      int     `toml:"min_attempts"`
	MaxAttempts      int     `toml:"max_attempts"`
	TargetSimilarity float64 `toml:"target_similarity"`
}

// Genius contains lyrics provider settings.
type Genius struct {
	AccessToken string `toml:"access_token"`
	BaseURL     string `toml:"base_url"`
	WebURL      string `toml:"web_url"`
}

// YouTube contains caption and audio download settings.
type YouTube struct {
	YtdlpBinary      string `toml:"ytdlp_binary"`
	SubtitleLanguage string `toml:"subtitle_language"`
}

// Alignment tunes the line aligner.
type Alignment struct {
	SimilarityThreshold float64 `toml:"similarity_threshold"`
}

// Rows controls row assembly.
type Rows struct {
	InsertInstrumental      bool   `toml:"insert_instrumental"`
	InstrumentalThresholdMS int64  `toml:"instrumental_threshold_ms"`
	IntroTitle              string `toml:"intro_title"`
	InstrumentalTitle       string `toml:"instrumental_title"`
	OutroTitle              string `toml:"outro_title"`
}

// Prepare controls the song preparation job.
type Prepare struct {
	FetchAttempts int `toml:"fetch_attempts"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for lyricsync.
type Config struct {
	Paths     Paths     `toml:"paths"`
	LLM       LLM       `toml:"llm"`
	STT       STT       `toml:"stt"`
	Genius    Genius    `toml:"genius"`
	YouTube   YouTube   `toml:"youtube"`
	Alignment Alignment `toml:"alignment"`
	Rows      Rows      `toml:"rows"`
	Prepare   Prepare   `toml:"prepare"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A missing file yields defaults.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file).DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the data and work directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir, c.Paths.WorkDir, filepath.Dir(c.Paths.DatabasePath)}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
