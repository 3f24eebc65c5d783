package transcript

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"lyricsync/internal/services"
)

// Source yields the raw caption entries for a video.
type Source interface {
	Fetch(ctx context.Context, videoID string) ([]Entry, error)
}

// CaptionFetcher downloads a caption track for a video into dir and returns
// the file path.
type CaptionFetcher interface {
	FetchCaptions(ctx context.Context, videoID, dir string) (string, error)
}

// YouTubeSource fetches auto-generated captions through a CaptionFetcher.
type YouTubeSource struct {
	Fetcher CaptionFetcher
	// Dir receives downloaded caption files. Empty means a temporary
	// directory that is removed once the captions are parsed.
	Dir string
}

// Fetch downloads and parses the caption track for videoID.
func (s YouTubeSource) Fetch(ctx context.Context, videoID string) ([]Entry, error) {
	if s.Fetcher == nil {
		return nil, services.Wrap(services.ErrConfiguration, "captions", "fetch", "no caption fetcher configured", nil)
	}
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return nil, services.Wrap(services.ErrValidation, "captions", "fetch", "video id required", nil)
	}
	dir := s.Dir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "lyricsync-captions-")
		if err != nil {
			return nil, fmt.Errorf("create caption directory: %w", err)
		}
		defer os.RemoveAll(tmp)
		dir = tmp
	}
	path, err := s.Fetcher.FetchCaptions(ctx, videoID, dir)
	if err != nil {
		return nil, err
	}
	entries, err := ParseFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "captions", "parse", path, err)
	}
	return entries, nil
}

// FileSource reads captions from a local file regardless of the video id.
type FileSource struct {
	Path string
}

// Fetch parses the configured file.
func (s FileSource) Fetch(_ context.Context, _ string) ([]Entry, error) {
	entries, err := ParseFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "captions", "read", s.Path, err)
		}
		return nil, services.Wrap(services.ErrValidation, "captions", "parse", s.Path, err)
	}
	return entries, nil
}
