package synchronizer

import (
	"context"
)

// SyncedText is a piece of text with a time range in seconds.
type SyncedText struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// TimeRange is a start/end pair in seconds.
type TimeRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment is a timed span matched to zero or more lyric lines, addressed by
// their position in the lyric document. Bridge marks segments synthesized for
// lines that matched no caption.
type Segment struct {
	SyncedText
	LineIDs []int `json:"original_lyric_ids"`
	Bridge  bool  `json:"bridge,omitempty"`
}

// WordSegment is a Segment with one time range per display token.
type WordSegment struct {
	Segment
	Tokens []string    `json:"tokens"`
	Words  []TimeRange `json:"words"`
}

// Transcription is a speech-to-text result. Word times are relative to the
// start of the transcribed clip.
type Transcription struct {
	Text  string
	Words []SyncedText
}

// Matcher picks the candidate that best matches reference, or -1 when none
// does.
type Matcher interface {
	BestMatch(ctx context.Context, reference string, candidates []string) (int, error)
}

// Transcriber turns an audio clip into text with word timestamps. prompt
// biases the recognizer toward the expected lyric.
type Transcriber interface {
	Transcribe(ctx context.Context, clipPath, prompt string) (Transcription, error)
}

// AudioSource writes the audio between start and end seconds to dest.
type AudioSource interface {
	Slice(start, end float64, dest string) error
}
