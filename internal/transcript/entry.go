package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"lyricsync/internal/lyrics"
	"lyricsync/internal/synchronizer"
)

// Entry is one raw caption cue. Times are in seconds.
type Entry struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Normalize cleans every entry with lyrics.CleanLine, drops entries that
// clean to nothing, and converts durations to end times.
func Normalize(entries []Entry) []synchronizer.SyncedText {
	out := make([]synchronizer.SyncedText, 0, len(entries))
	for _, entry := range entries {
		text := lyrics.CleanLine(entry.Text)
		if text == "" {
			continue
		}
		out = append(out, synchronizer.SyncedText{
			Text:  text,
			Start: entry.Start,
			End:   entry.Start + max(entry.Duration, 0),
		})
	}
	return out
}

// ParseEntries decodes a JSON array of entries.
func ParseEntries(data []byte) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse transcript entries: %w", err)
	}
	return entries, nil
}

// ParseFile reads a caption file, choosing the parser from its extension:
// .json3 and .vtt are handled natively and anything else is read as an
// entries array.
func ParseFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json3":
		return ParseJSON3(data)
	case ".vtt":
		return ParseVTT(data)
	default:
		return ParseEntries(data)
	}
}
