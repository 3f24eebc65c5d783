package prepare

import (
	"context"
	"errors"
	"os"

	"lyricsync/internal/lyrics"
	"lyricsync/internal/services"
	"lyricsync/internal/services/genius"
)

// Lyrics is a lyric document plus where it came from.
type Lyrics struct {
	Document    *lyrics.Document
	URL         string
	Description string
}

// LyricsSource finds the ground-truth lyrics of a song.
type LyricsSource interface {
	FetchLyrics(ctx context.Context, title, artist string) (*Lyrics, error)
}

// AudioFetcher downloads the audio of a video as WAV.
type AudioFetcher interface {
	DownloadAudio(ctx context.Context, videoID, dest string) error
}

// AudioNormalizer converts audio into the speech-to-text input format.
type AudioNormalizer interface {
	Normalize(ctx context.Context, source, dest string) error
}

// GeniusLyrics resolves lyrics through the Genius search API and lyric page.
type GeniusLyrics struct {
	Client *genius.Client
}

// FetchLyrics searches for the song and scrapes its lyric page.
func (g GeniusLyrics) FetchLyrics(ctx context.Context, title, artist string) (*Lyrics, error) {
	if g.Client == nil {
		return nil, services.Wrap(services.ErrConfiguration, "lyrics", "genius", "no genius client configured", nil)
	}
	song, err := g.Client.FindSong(ctx, title, artist)
	if err != nil {
		return nil, err
	}
	page, err := g.Client.FetchLyrics(ctx, song.Path)
	if err != nil {
		return nil, err
	}
	return &Lyrics{Document: page.Document, URL: song.URL, Description: page.Description}, nil
}

// FileLyrics reads lyrics from a local text file.
type FileLyrics struct {
	Path string
}

// FetchLyrics parses the file, ignoring title and artist.
func (f FileLyrics) FetchLyrics(_ context.Context, _, _ string) (*Lyrics, error) {
	doc, err := lyrics.ParseFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "lyrics", "read file", f.Path, err)
		}
		return nil, services.Wrap(services.ErrValidation, "lyrics", "read file", f.Path, err)
	}
	return &Lyrics{Document: doc}, nil
}
