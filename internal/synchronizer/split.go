package synchronizer

import (
	"fmt"

	"lyricsync/internal/lyrics"
	"lyricsync/internal/services"
	"lyricsync/internal/textutil"
)

// SplitMultiline returns one segment per lyric line covered by synced. A
// segment that covers several lines is cut at token boundaries: each line's
// cleaned tokens must be a prefix of the remaining token stream, where
// stream tokens are re-tokenized so a joined token like "rock-and-roll" can
// cover several line tokens. Interior cut points sit halfway between the
// previous piece's end and the next piece's first word, and never after
// that word starts.
func SplitMultiline(doc *lyrics.Document, synced []WordSegment) ([]WordSegment, error) {
	out := make([]WordSegment, 0, len(doc.Lines))
	for segIdx, seg := range synced {
		if len(seg.Tokens) != len(seg.Words) {
			return nil, invariantError("segment %d has %d tokens and %d words", segIdx, len(seg.Tokens), len(seg.Words))
		}
		if len(seg.LineIDs) <= 1 {
			out = append(out, seg)
			continue
		}

		ptr := 0
		prevEnd := seg.Start
		for k, lineID := range seg.LineIDs {
			if lineID < 0 || lineID >= len(doc.Lines) {
				return nil, invariantError("segment %d references missing line %d", segIdx, lineID)
			}
			n, err := prefixTokenCount(textutil.CleanTokens(doc.Lines[lineID].Text), seg.Tokens[ptr:])
			if err != nil {
				return nil, invariantError("segment %d line %d: %v", segIdx, lineID, err)
			}

			start := seg.Start
			if k > 0 {
				start = min((seg.Words[ptr].Start+prevEnd)/2, seg.Words[ptr].Start)
			}
			end := seg.End
			if k < len(seg.LineIDs)-1 {
				end = seg.Words[ptr+n-1].End
			}

			tokens := seg.Tokens[ptr : ptr+n]
			out = append(out, WordSegment{
				Segment: Segment{
					SyncedText: SyncedText{Text: textutil.JoinTokens(tokens), Start: start, End: end},
					LineIDs:    []int{lineID},
					Bridge:     seg.Bridge,
				},
				Tokens: tokens,
				Words:  seg.Words[ptr : ptr+n],
			})
			prevEnd = end
			ptr += n
		}
	}
	return out, nil
}

// prefixTokenCount reports how many stream tokens cover want when want is a
// prefix of the flattened, cleaned stream.
func prefixTokenCount(want []string, stream []string) (int, error) {
	var flat []string
	var owner []int
	for i, tok := range stream {
		for _, part := range textutil.Tokenize(tok) {
			flat = append(flat, textutil.CleanForComparison(part))
			owner = append(owner, i)
		}
	}
	m := textutil.LongestMatch(want, flat, 0, len(want), 0, len(flat))
	if len(want) == 0 || m.A != 0 || m.B != 0 || m.Size != len(want) {
		return 0, fmt.Errorf("line tokens %q are not a prefix of %q (match a=%d b=%d size=%d)", want, flat, m.A, m.B, m.Size)
	}
	return owner[m.Size-1] + 1, nil
}

func invariantError(format string, args ...any) error {
	return services.Wrap(services.ErrInvariant, "sync", "split", fmt.Sprintf(format, args...), nil)
}

func errCount(got, want int) error {
	return fmt.Errorf("produced %d segments for %d lyric lines", got, want)
}

func invariantAt(line int, msg string, detail []int) error {
	if detail != nil {
		return invariantError("line %d: %s %v", line, msg, detail)
	}
	return invariantError("line %d: %s", line, msg)
}
