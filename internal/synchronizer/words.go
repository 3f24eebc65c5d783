package synchronizer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"lyricsync/internal/logging"
	"lyricsync/internal/services"
	"lyricsync/internal/textutil"
)

// Transcription retry budget defaults.
const (
	DefaultMinAttempts      = 10
	DefaultMaxAttempts      = 20
	DefaultTargetSimilarity = 80
)

// minClipSeconds is the shortest range sent to the transcriber. Shorter
// segments keep interpolated word timings.
const minClipSeconds = 0.1

// WordAligner attaches word-level timestamps to line-level segments.
type WordAligner struct {
	transcriber Transcriber
	clipDir     string
	minAttempts int
	maxAttempts int
	target      float64
	logger      *slog.Logger
}

// WordOption customizes a WordAligner.
type WordOption func(*WordAligner)

// WithAttempts sets the mandatory and maximum transcription attempts per
// segment. Values below one are ignored; max is raised to min when needed.
func WithAttempts(minAttempts, maxAttempts int) WordOption {
	return func(w *WordAligner) {
		if minAttempts >= 1 {
			w.minAttempts = minAttempts
		}
		if maxAttempts >= 1 {
			w.maxAttempts = maxAttempts
		}
		w.maxAttempts = max(w.maxAttempts, w.minAttempts)
	}
}

// WithTargetSimilarity sets the score under which extra attempts are made.
func WithTargetSimilarity(target float64) WordOption {
	return func(w *WordAligner) { w.target = target }
}

// WithClipDir sets where audio clips are written. By default a temporary
// directory is created per Align call and removed afterwards.
func WithClipDir(dir string) WordOption {
	return func(w *WordAligner) { w.clipDir = strings.TrimSpace(dir) }
}

// NewWordAligner builds a word aligner around a speech-to-text backend.
func NewWordAligner(transcriber Transcriber, logger *slog.Logger, opts ...WordOption) *WordAligner {
	w := &WordAligner{
		transcriber: transcriber,
		minAttempts: DefaultMinAttempts,
		maxAttempts: DefaultMaxAttempts,
		target:      DefaultTargetSimilarity,
		logger:      logging.NewComponentLogger(logger, "word-aligner"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// Align transcribes the audio of every segment and reconciles the result with
// the segment's lyric tokens. Segments are processed one at a time in order.
func (w *WordAligner) Align(ctx context.Context, segments []Segment, audio AudioSource) ([]WordSegment, error) {
	if w.transcriber == nil {
		return nil, services.Wrap(services.ErrConfiguration, "sync", "align words", "no transcriber configured", nil)
	}
	if audio == nil {
		return nil, services.Wrap(services.ErrValidation, "sync", "align words", "no audio source", nil)
	}
	logger := logging.WithContext(ctx, w.logger)

	dir := w.clipDir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "lyricsync-clips-")
		if err != nil {
			return nil, fmt.Errorf("create clip directory: %w", err)
		}
		defer os.RemoveAll(tmp)
		dir = tmp
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create clip directory: %w", err)
	}

	out := make([]WordSegment, 0, len(segments))
	for i, seg := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if seg.End-seg.Start < minClipSeconds {
			logging.WarnWithContext(logger, "segment too short to transcribe; interpolating word timings", "short_segment",
				logging.Int("segment", i),
				logging.String("lyric", seg.Text),
				logging.Float64("start", seg.Start),
				logging.Float64("end", seg.End),
				logging.String(logging.FieldImpact, "every word of this line shares the segment range"),
			)
			out = append(out, spanTokens(seg))
			continue
		}
		clip := filepath.Join(dir, fmt.Sprintf("segment-%04d.wav", i))
		if err := audio.Slice(seg.Start, seg.End, clip); err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "sync", "slice audio",
				fmt.Sprintf("segment %d (%.2f-%.2f)", i, seg.Start, seg.End), err)
		}

		best, score, attempts, err := w.bestTranscription(ctx, clip, seg.Text)
		if err != nil {
			return nil, err
		}
		if score < w.target {
			logging.WarnWithContext(logger, "transcription stayed below target similarity", "low_confidence_transcription",
				logging.Int("segment", i),
				logging.String("lyric", seg.Text),
				logging.String("transcript", best.Text),
				logging.Float64("similarity", score),
				logging.Int("attempts", attempts),
				logging.String(logging.FieldImpact, "word timings for this line may be coarse"),
				logging.String(logging.FieldErrorHint, "check the audio for this range or raise stt.max_attempts"),
			)
		} else {
			logger.Debug("transcription accepted",
				logging.Int("segment", i),
				logging.Float64("similarity", score),
				logging.Int("attempts", attempts),
			)
		}

		// A word never starts before the previous word ends.
		words := make([]SyncedText, 0, len(best.Words))
		floor := seg.Start
		for _, word := range best.Words {
			start := clamp(seg.Start+word.Start, floor, seg.End)
			end := clamp(seg.Start+word.End, start, seg.End)
			words = append(words, SyncedText{Text: word.Text, Start: start, End: end})
			floor = end
		}
		out = append(out, AlignTokens(seg, words))
	}
	return out, nil
}

// bestTranscription runs the bounded retry loop: minAttempts always, then
// more while the best score is under target, up to maxAttempts. A perfect
// score ends the loop early.
func (w *WordAligner) bestTranscription(ctx context.Context, clip, text string) (Transcription, float64, int, error) {
	prompt := TranscriptionPrompt(text)
	var best Transcription
	bestScore := -1.0
	attempts := 0
	for attempts < w.maxAttempts && (attempts < w.minAttempts || bestScore < w.target) {
		if err := ctx.Err(); err != nil {
			return Transcription{}, 0, attempts, err
		}
		attempts++
		result, err := w.transcriber.Transcribe(ctx, clip, prompt)
		if err != nil {
			return Transcription{}, 0, attempts, services.Wrap(services.ErrExternalTool, "sync", "transcribe",
				fmt.Sprintf("attempt %d", attempts), err)
		}
		score := TranscriptSimilarity(text, result.Text)
		if score > bestScore {
			best, bestScore = result, score
			if score >= 100 {
				break
			}
		}
	}
	return best, bestScore, attempts, nil
}

// TranscriptionPrompt is the biasing prompt sent with every clip.
func TranscriptionPrompt(text string) string {
	return `Use this actual lyric AS-IS: "` + text + `"`
}

var trailingPunct = regexp.MustCompile(`[.,!]$`)

// TranscriptSimilarity scores a transcript against the expected lyric text,
// ignoring case, surrounding space, and one trailing period, comma or
// exclamation mark.
func TranscriptSimilarity(lyric, transcript string) float64 {
	a := trailingPunct.ReplaceAllString(strings.ToLower(strings.TrimSpace(lyric)), "")
	b := trailingPunct.ReplaceAllString(strings.ToLower(strings.TrimSpace(transcript)), "")
	return textutil.Ratio(a, b)
}

// spanTokens times every token of seg across the whole segment.
func spanTokens(seg Segment) WordSegment {
	tokens := textutil.Tokenize(seg.Text)
	ranges := make([]TimeRange, len(tokens))
	for i := range ranges {
		ranges[i] = TimeRange{Start: seg.Start, End: max(seg.End, seg.Start)}
	}
	return WordSegment{Segment: seg, Tokens: tokens, Words: ranges}
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return min(max(v, lo), hi)
}
