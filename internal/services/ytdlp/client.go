// Package ytdlp downloads YouTube captions and audio through yt-dlp.
package ytdlp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	goytdlp "github.com/lrstanley/go-ytdlp"

	"lyricsync/internal/services"
)

const (
	// Command is the default yt-dlp executable name.
	Command         = "yt-dlp"
	defaultLanguage = "en"
	captionFormats  = "json3/vtt/best"
	watchURL        = "https://www.youtube.com/watch?v="
)

// Runner executes a prepared yt-dlp command against url.
type Runner func(ctx context.Context, cmd *goytdlp.Command, url string) error

// Config selects the binary and caption language.
type Config struct {
	Binary   string
	Language string
}

// Client wraps yt-dlp invocations.
type Client struct {
	binary   string
	language string
	run      Runner
}

// NewClient returns a client with defaults filled in.
func NewClient(cfg Config) *Client {
	binary := strings.TrimSpace(cfg.Binary)
	if binary == "" {
		binary = Command
	}
	language := strings.TrimSpace(cfg.Language)
	if language == "" {
		language = defaultLanguage
	}
	return &Client{binary: binary, language: language, run: runCommand}
}

// WithRunner swaps the process runner (for testing).
func (c *Client) WithRunner(run Runner) {
	if run != nil {
		c.run = run
	}
}

// Binary reports the configured executable.
func (c *Client) Binary() string {
	return c.binary
}

func (c *Client) command() *goytdlp.Command {
	return goytdlp.New().
		SetExecutable(c.binary).
		NoPlaylist().
		NoProgress()
}

// FetchCaptions downloads the automatic caption track for videoID into dir,
// preferring json3 over WebVTT, and returns the written file.
func (c *Client) FetchCaptions(ctx context.Context, videoID, dir string) (string, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return "", services.Wrap(services.ErrValidation, "yt-dlp", "captions", "video id required", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("yt-dlp: ensure caption dir: %w", err)
	}
	cmd := c.command().
		SkipDownload().
		WriteAutoSubs().
		SubLangs(c.language).
		SubFormat(captionFormats).
		Output(filepath.Join(dir, "%(id)s.%(ext)s"))
	if err := c.invoke(ctx, cmd, videoID, "captions"); err != nil {
		return "", err
	}
	path, ok := findCaptionFile(dir, videoID)
	if !ok {
		return "", services.Wrap(services.ErrNotFound, "yt-dlp", "captions", "no automatic captions for "+videoID, nil)
	}
	return path, nil
}

// findCaptionFile picks the written caption file, json3 first.
func findCaptionFile(dir, videoID string) (string, bool) {
	for _, ext := range []string{".json3", ".vtt"} {
		matches, _ := filepath.Glob(filepath.Join(dir, globEscape(videoID)+"*"+ext))
		if len(matches) > 0 {
			sort.Strings(matches)
			return matches[0], true
		}
	}
	return "", false
}

// DownloadAudio extracts the audio track of videoID as WAV at dest.
func (c *Client) DownloadAudio(ctx context.Context, videoID, dest string) error {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return services.Wrap(services.ErrValidation, "yt-dlp", "audio", "video id required", nil)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("yt-dlp: ensure audio dir: %w", err)
	}
	base := strings.TrimSuffix(dest, filepath.Ext(dest))
	cmd := c.command().
		Format("bestaudio/best").
		ExtractAudio().
		AudioFormat("wav").
		Output(base + ".%(ext)s")
	if err := c.invoke(ctx, cmd, videoID, "audio"); err != nil {
		return err
	}
	written := base + ".wav"
	if written != dest {
		if err := os.Rename(written, dest); err != nil {
			return services.Wrap(services.ErrExternalTool, "yt-dlp", "audio", "audio file missing after download", err)
		}
	}
	if _, err := os.Stat(dest); err != nil {
		return services.Wrap(services.ErrExternalTool, "yt-dlp", "audio", "audio file missing after download", err)
	}
	return nil
}

func (c *Client) invoke(ctx context.Context, cmd *goytdlp.Command, videoID, op string) error {
	if err := c.run(ctx, cmd, watchURL+videoID); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return services.Wrap(services.ErrExternalTool, "yt-dlp", op, videoID, err)
	}
	return nil
}

func runCommand(ctx context.Context, cmd *goytdlp.Command, url string) error {
	result, err := cmd.Run(ctx, url)
	if err != nil {
		if result != nil && strings.TrimSpace(result.Stderr) != "" {
			return fmt.Errorf("%w: %s", err, strings.TrimSpace(result.Stderr))
		}
		return err
	}
	return nil
}

func globEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
