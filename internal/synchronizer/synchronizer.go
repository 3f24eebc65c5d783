package synchronizer

import (
	"context"
	"log/slog"
	"math"

	"lyricsync/internal/logging"
	"lyricsync/internal/lyrics"
	"lyricsync/internal/services"
)

// boundsEpsilon tolerates float noise when checking word ranges against
// their segment.
const boundsEpsilon = 1e-6

// Synchronizer chains line alignment, word alignment and line splitting.
type Synchronizer struct {
	Lines  *LineAligner
	Words  *WordAligner
	logger *slog.Logger
}

// New builds a Synchronizer from its two aligners.
func New(lines *LineAligner, words *WordAligner, logger *slog.Logger) *Synchronizer {
	return &Synchronizer{
		Lines:  lines,
		Words:  words,
		logger: logging.NewComponentLogger(logger, "synchronizer"),
	}
}

// Run produces one word-timed segment per lyric line, in document order.
func (s *Synchronizer) Run(ctx context.Context, doc *lyrics.Document, subtitles []SyncedText, audio AudioSource, duration float64) ([]WordSegment, error) {
	if s.Lines == nil || s.Words == nil {
		return nil, services.Wrap(services.ErrConfiguration, "sync", "run", "synchronizer is missing an aligner", nil)
	}
	if err := doc.Validate(); err != nil {
		return nil, services.Wrap(services.ErrValidation, "sync", "run", "invalid lyric document", err)
	}
	logger := logging.WithContext(ctx, s.logger)

	segments, err := s.Lines.Align(ctx, doc, subtitles, duration)
	if err != nil {
		return nil, err
	}
	timed, err := s.Words.Align(ctx, segments, audio)
	if err != nil {
		return nil, err
	}
	split, err := SplitMultiline(doc, timed)
	if err != nil {
		return nil, err
	}
	if err := Verify(doc, split); err != nil {
		return nil, err
	}

	bridges := 0
	for _, seg := range split {
		if seg.Bridge {
			bridges++
		}
	}
	logger.Info("lyrics synchronized",
		logging.Int("lines", len(split)),
		logging.Int("line_segments", len(segments)),
		logging.Int("bridges", bridges),
	)
	return split, nil
}

// Verify checks the output shape: one segment per lyric line in order,
// matching token and word counts, and word ranges that are ordered and
// inside their segment.
func Verify(doc *lyrics.Document, out []WordSegment) error {
	if len(out) != len(doc.Lines) {
		return services.Wrap(services.ErrInvariant, "sync", "verify", "", errCount(len(out), len(doc.Lines)))
	}
	for i, seg := range out {
		if len(seg.LineIDs) != 1 || seg.LineIDs[0] != i {
			return invariantAt(i, "segment does not map to its lyric line", seg.LineIDs)
		}
		if len(seg.Tokens) != len(seg.Words) {
			return invariantAt(i, "token and word counts differ", []int{len(seg.Tokens), len(seg.Words)})
		}
		for _, w := range seg.Words {
			if w.Start > w.End+boundsEpsilon ||
				w.Start < seg.Start-boundsEpsilon ||
				w.End > seg.End+boundsEpsilon ||
				math.IsNaN(w.Start) || math.IsNaN(w.End) {
				return invariantAt(i, "word range outside segment", nil)
			}
		}
	}
	return nil
}
