package synchronizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"lyricsync/internal/logging"
	"lyricsync/internal/lyrics"
	"lyricsync/internal/services"
	"lyricsync/internal/textutil"
)

// DefaultSimilarityThreshold is the fuzzy score a candidate must exceed to be
// accepted without consulting the matcher.
const DefaultSimilarityThreshold = 40

// LineAligner assigns each lyric line to a caption segment.
type LineAligner struct {
	matcher   Matcher
	threshold float64
	logger    *slog.Logger
}

// LineOption customizes a LineAligner.
type LineOption func(*LineAligner)

// WithSimilarityThreshold overrides DefaultSimilarityThreshold.
func WithSimilarityThreshold(threshold float64) LineOption {
	return func(a *LineAligner) {
		if threshold >= 0 {
			a.threshold = threshold
		}
	}
}

// NewLineAligner builds an aligner. A nil matcher makes every unresolved
// line a bridge segment.
func NewLineAligner(matcher Matcher, logger *slog.Logger, opts ...LineOption) *LineAligner {
	a := &LineAligner{
		matcher:   matcher,
		threshold: DefaultSimilarityThreshold,
		logger:    logging.NewComponentLogger(logger, "line-aligner"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// candidateWindow holds merged indices for one lyric line. Raw entries are
// consecutive, so stitched pair k is (raw[k], raw[k]+1).
type candidateWindow struct {
	raw          []int
	rawScores    []float64
	stitchScores []float64
}

func (w candidateWindow) best() (bestRaw, bestStitched float64) {
	bestRaw, bestStitched = -1, -1
	for _, s := range w.rawScores {
		bestRaw = max(bestRaw, s)
	}
	for _, s := range w.stitchScores {
		bestStitched = max(bestStitched, s)
	}
	return bestRaw, bestStitched
}

// Align pairs every line of doc with a segment and returns the segments that
// received at least one line, in time order, with their text replaced by the
// ground-truth lines. Lines are never matched to a segment before the one the
// previous line used.
func (a *LineAligner) Align(ctx context.Context, doc *lyrics.Document, subtitles []SyncedText, duration float64) ([]Segment, error) {
	if doc == nil {
		return nil, services.Wrap(services.ErrValidation, "sync", "align lines", "nil lyric document", nil)
	}
	logger := logging.WithContext(ctx, a.logger)

	merged := make([]Segment, len(subtitles))
	for i, sub := range subtitles {
		merged[i] = Segment{SyncedText: sub}
	}

	last := -1
	for lineIdx, line := range doc.Lines {
		lineTokens := textutil.CleanTokens(line.Text)
		window := a.buildWindow(merged, last, lineTokens)
		bestRaw, bestStitched := window.best()

		if max(bestRaw, bestStitched) > a.threshold {
			if bestRaw >= bestStitched {
				last = a.assignRaw(merged, window, lineIdx, bestRaw)
			} else {
				merged, last = a.assignStitched(merged, window, lineIdx, bestStitched)
			}
			logger.Debug("line matched",
				logging.Args(append(logging.DecisionAttrs("line_match", "fuzzy", "similarity above threshold"),
					logging.Int("line", lineIdx),
					logging.Float64("best_raw", bestRaw),
					logging.Float64("best_stitched", bestStitched),
					logging.Int("segment", last),
				)...)...,
			)
			continue
		}

		choice, err := a.askMatcher(ctx, merged, window, line.Text)
		if err != nil {
			return nil, err
		}
		switch {
		case choice < 0:
			merged, last = a.insertBridge(merged, last, lineIdx, len(doc.Lines), line.Text, duration)
			logging.WarnWithContext(logger, "no caption matched lyric line; synthesized bridge segment", "bridge_segment",
				logging.Int("line", lineIdx),
				logging.String("text", line.Text),
				logging.Float64("start", merged[last].Start),
				logging.Float64("end", merged[last].End),
				logging.String(logging.FieldImpact, "line timing is interpolated between neighbors"),
				logging.String(logging.FieldErrorHint, "captions may be missing or heavily misheard for this part of the song"),
			)
		case choice < len(window.raw):
			last = window.raw[choice]
			merged[last].LineIDs = append(merged[last].LineIDs, lineIdx)
			logger.Debug("line matched", logging.Args(append(logging.DecisionAttrs("line_match", "llm_raw", "matcher chose caption"),
				logging.Int("line", lineIdx), logging.Int("segment", last))...)...)
		default:
			merged, last = mergeAdjacent(merged, window.raw[choice-len(window.raw)], lineIdx)
			logger.Debug("line matched", logging.Args(append(logging.DecisionAttrs("line_match", "llm_stitched", "matcher chose stitched captions"),
				logging.Int("line", lineIdx), logging.Int("segment", last))...)...)
		}
	}

	lineTexts := doc.Texts()
	out := make([]Segment, 0, len(merged))
	for _, seg := range merged {
		if len(seg.LineIDs) == 0 {
			continue
		}
		texts := make([]string, len(seg.LineIDs))
		for i, id := range seg.LineIDs {
			texts[i] = lineTexts[id]
		}
		seg.Text = strings.Join(texts, " ")
		out = append(out, seg)
	}
	logger.Info("line alignment complete",
		logging.Int("lines", len(doc.Lines)),
		logging.Int("captions", len(subtitles)),
		logging.Int("segments", len(out)),
	)
	return out, nil
}

func (a *LineAligner) buildWindow(merged []Segment, last int, lineTokens []string) candidateWindow {
	var w candidateWindow
	for j := last; j <= last+2; j++ {
		if j >= 0 && j < len(merged) {
			w.raw = append(w.raw, j)
		}
	}
	for _, idx := range w.raw {
		w.rawScores = append(w.rawScores, textutil.TokenRatio(textutil.CleanTokens(merged[idx].Text), lineTokens))
	}
	for k := 0; k+1 < len(w.raw); k++ {
		stitched := merged[w.raw[k]].Text + " " + merged[w.raw[k+1]].Text
		w.stitchScores = append(w.stitchScores, textutil.TokenRatio(textutil.CleanTokens(stitched), lineTokens))
	}
	return w
}

// assignRaw attaches the line to the best raw candidate. When the first two
// candidates tie for best, the second wins; repeated chorus lines otherwise
// keep landing on the same caption.
func (a *LineAligner) assignRaw(merged []Segment, w candidateWindow, lineIdx int, best float64) int {
	pick := -1
	if len(w.rawScores) >= 2 && w.rawScores[0] == best && w.rawScores[1] == best {
		pick = 1
	} else {
		for k, s := range w.rawScores {
			if s == best {
				pick = k
				break
			}
		}
	}
	idx := w.raw[pick]
	merged[idx].LineIDs = append(merged[idx].LineIDs, lineIdx)
	return idx
}

func (a *LineAligner) assignStitched(merged []Segment, w candidateWindow, lineIdx int, best float64) ([]Segment, int) {
	k := 0
	for k < len(w.stitchScores)-1 && w.stitchScores[k] != best {
		k++
	}
	return mergeAdjacent(merged, w.raw[k], lineIdx)
}

// mergeAdjacent folds merged[idx+1] into merged[idx], attaches lineIdx, and
// removes merged[idx+1].
func mergeAdjacent(merged []Segment, idx, lineIdx int) ([]Segment, int) {
	first, second := &merged[idx], merged[idx+1]
	first.End = second.End
	first.Text = first.Text + " " + second.Text
	first.LineIDs = append(first.LineIDs, second.LineIDs...)
	first.LineIDs = append(first.LineIDs, lineIdx)
	first.Bridge = first.Bridge && second.Bridge
	return append(merged[:idx+1], merged[idx+2:]...), idx
}

func (a *LineAligner) askMatcher(ctx context.Context, merged []Segment, w candidateWindow, reference string) (int, error) {
	if a.matcher == nil || len(w.raw) == 0 {
		return -1, nil
	}
	candidates := make([]string, 0, len(w.raw)*2)
	for _, idx := range w.raw {
		candidates = append(candidates, merged[idx].Text)
	}
	for k := 0; k+1 < len(w.raw); k++ {
		candidates = append(candidates, merged[w.raw[k]].Text+" "+merged[w.raw[k+1]].Text)
	}
	choice, err := a.matcher.BestMatch(ctx, reference, candidates)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "sync", "llm best match", "matcher failed", err)
	}
	if choice < -1 || choice >= len(candidates) {
		return 0, services.Wrap(services.ErrValidation, "sync", "llm best match",
			fmt.Sprintf("matcher returned index %d for %d candidates", choice, len(candidates)), nil)
	}
	return choice, nil
}

// insertBridge synthesizes a segment for an unmatched line right after the
// previous match. When the previous match is itself a bridge, the two share
// its gap so consecutive bridges stay ordered and disjoint.
func (a *LineAligner) insertBridge(merged []Segment, last, lineIdx, lineCount int, text string, duration float64) ([]Segment, int) {
	var prev *Segment
	start := 0.0
	if last >= 0 {
		prev = &merged[last]
		start = prev.End
		if prev.Bridge {
			start = prev.Start
		}
	}

	// The gap closes at the first later segment that starts after the bridge
	// would; captions starting at or before it leave no room.
	gapEnd := duration
	if lineIdx < lineCount-1 {
		for _, next := range merged[last+1:] {
			if next.Start > start {
				gapEnd = next.Start
				break
			}
		}
	}

	if prev != nil && prev.Bridge {
		mid := (prev.Start + max(gapEnd, prev.End)) / 2
		prev.End = mid
		start = mid
		gapEnd = max(gapEnd, mid)
	}
	bridge := Segment{
		SyncedText: SyncedText{Text: text, Start: start, End: max(gapEnd, start)},
		LineIDs:    []int{lineIdx},
		Bridge:     true,
	}
	merged = append(merged, Segment{})
	copy(merged[last+2:], merged[last+1:])
	merged[last+1] = bridge
	return merged, last + 1
}
