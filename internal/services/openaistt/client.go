// Package openaistt transcribes audio clips with the OpenAI speech-to-text
// API, requesting word-level timestamps.
package openaistt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"lyricsync/internal/services"
	"lyricsync/internal/synchronizer"
)

const (
	defaultBaseURL   = "https://api.openai.com/v1"
	defaultModel     = "whisper-1"
	defaultTimeout   = 2 * time.Minute
	defaultAttempts  = 3
	defaultBaseDelay = 2 * time.Second
	transcribePath   = "/audio/transcriptions"
)

// Config captures the API settings.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Language       string
	TimeoutSeconds int
}

// Client posts clips to the transcription endpoint.
type Client struct {
	cfg       Config
	http      *http.Client
	attempts  int
	baseDelay time.Duration
	sleeper   func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithRetry sets how many times a rate-limited or failed request is sent
// and the first backoff delay, which doubles per attempt.
func WithRetry(attempts int, baseDelay time.Duration) Option {
	return func(c *Client) {
		c.attempts = max(attempts, 1)
		c.baseDelay = baseDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient builds a client, filling defaults for empty settings.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model = strings.TrimSpace(cfg.Model); cfg.Model == "" {
		cfg.Model = defaultModel
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	c := &Client{
		cfg:       cfg,
		http:      &http.Client{Timeout: timeout},
		attempts:  defaultAttempts,
		baseDelay: defaultBaseDelay,
		sleeper:   time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the configured model name for logging.
func (c *Client) Model() string {
	return c.cfg.Model
}

type verboseResponse struct {
	Text  string `json:"text"`
	Words []struct {
		Word  string  `json:"word"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"words"`
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.code, e.body)
}

// Transcribe uploads clipPath with prompt as the biasing prompt and returns
// the transcript with clip-relative word timings.
func (c *Client) Transcribe(ctx context.Context, clipPath, prompt string) (synchronizer.Transcription, error) {
	if c.cfg.APIKey == "" {
		return synchronizer.Transcription{}, services.Wrap(services.ErrConfiguration, "openai-stt", "transcribe", "api key required", nil)
	}
	audio, err := os.ReadFile(clipPath)
	if err != nil {
		return synchronizer.Transcription{}, services.Wrap(services.ErrValidation, "openai-stt", "transcribe", "read clip", err)
	}

	var lastErr error
	delay := c.baseDelay
	for attempt := 1; attempt <= c.attempts; attempt++ {
		resp, err := c.send(ctx, filepath.Base(clipPath), audio, prompt)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return synchronizer.Transcription{}, ctx.Err()
		}
		if !services.IsRetryable(err) || attempt == c.attempts {
			break
		}
		c.sleeper(delay)
		delay *= 2
	}
	return synchronizer.Transcription{}, lastErr
}

func (c *Client) send(ctx context.Context, filename string, audio []byte, prompt string) (synchronizer.Transcription, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fields := [][2]string{
		{"model", c.cfg.Model},
		{"response_format", "verbose_json"},
		{"timestamp_granularities[]", "word"},
		{"language", c.cfg.Language},
		{"prompt", prompt},
	}
	for _, field := range fields {
		if field[1] == "" {
			continue
		}
		if err := writer.WriteField(field[0], field[1]); err != nil {
			return synchronizer.Transcription{}, fmt.Errorf("openai stt: write %s field: %w", field[0], err)
		}
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return synchronizer.Transcription{}, fmt.Errorf("openai stt: create file field: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return synchronizer.Transcription{}, fmt.Errorf("openai stt: copy audio: %w", err)
	}
	if err := writer.Close(); err != nil {
		return synchronizer.Transcription{}, fmt.Errorf("openai stt: close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+transcribePath, body)
	if err != nil {
		return synchronizer.Transcription{}, fmt.Errorf("openai stt: build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return synchronizer.Transcription{}, services.Wrap(services.ErrTransient, "openai-stt", "transcribe", "http request", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return synchronizer.Transcription{}, services.Wrap(services.ErrTransient, "openai-stt", "transcribe", "read response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(payload))}
		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return synchronizer.Transcription{}, services.Wrap(services.ErrConfiguration, "openai-stt", "transcribe", "credentials rejected", statusErr)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
			return synchronizer.Transcription{}, services.Wrap(services.ErrTransient, "openai-stt", "transcribe", "", statusErr)
		default:
			return synchronizer.Transcription{}, services.Wrap(services.ErrExternalTool, "openai-stt", "transcribe", "", statusErr)
		}
	}

	var decoded verboseResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return synchronizer.Transcription{}, services.Wrap(services.ErrExternalTool, "openai-stt", "transcribe", "decode response", err)
	}
	out := synchronizer.Transcription{Text: strings.TrimSpace(decoded.Text)}
	for _, w := range decoded.Words {
		text := strings.TrimSpace(w.Word)
		if text == "" {
			continue
		}
		out.Words = append(out.Words, synchronizer.SyncedText{Text: text, Start: w.Start, End: max(w.End, w.Start)})
	}
	return out, nil
}
