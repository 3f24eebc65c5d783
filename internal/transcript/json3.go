package transcript

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

type json3Payload struct {
	Events []json3Event `json:"events"`
}

type json3Event struct {
	StartMs    int64          `json:"tStartMs"`
	DurationMs int64          `json:"dDurationMs"`
	Segs       []json3Segment `json:"segs"`
}

type json3Segment struct {
	Text string `json:"utf8"`
}

// ParseJSON3 decodes YouTube's json3 caption format. Events without text
// segments (window and style events) are skipped; newlines inside an event
// become spaces.
func ParseJSON3(data []byte) ([]Entry, error) {
	var payload json3Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse json3 captions: %w", err)
	}
	entries := make([]Entry, 0, len(payload.Events))
	for _, event := range payload.Events {
		if len(event.Segs) == 0 {
			continue
		}
		var b strings.Builder
		for _, seg := range event.Segs {
			b.WriteString(seg.Text)
		}
		text := strings.TrimSpace(strings.ReplaceAll(b.String(), "\n", " "))
		if text == "" {
			continue
		}
		entries = append(entries, Entry{
			Text:     text,
			Start:    float64(event.StartMs) / 1000,
			Duration: float64(event.DurationMs) / 1000,
		})
	}
	return entries, nil
}
