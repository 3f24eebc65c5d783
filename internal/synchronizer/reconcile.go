package synchronizer

import (
	"slices"

	"lyricsync/internal/textutil"
)

type pieceKind int

const (
	pieceMatched pieceKind = iota
	pieceLyricOnly
	pieceWordOnly
	pieceBoth
)

// piece is one run of the diff between lyric tokens and transcribed words.
// Matched pieces pair tokens and words one to one.
type piece struct {
	kind   pieceKind
	tokens []string
	words  []SyncedText
}

// classify splits the diff of cleaned token sequences into ordered pieces.
// The gap before each matching block becomes one orphan piece.
func classify(tokens []string, cleanTokens []string, words []SyncedText, cleanWords []string) []piece {
	var pieces []piece
	pa, pb := 0, 0
	for _, m := range textutil.MatchingBlocks(cleanTokens, cleanWords) {
		gapTokens := tokens[pa:m.A]
		gapWords := words[pb:m.B]
		switch {
		case len(gapTokens) > 0 && len(gapWords) > 0:
			pieces = append(pieces, piece{kind: pieceBoth, tokens: gapTokens, words: gapWords})
		case len(gapTokens) > 0:
			pieces = append(pieces, piece{kind: pieceLyricOnly, tokens: gapTokens})
		case len(gapWords) > 0:
			pieces = append(pieces, piece{kind: pieceWordOnly, words: gapWords})
		}
		if m.Size > 0 {
			pieces = append(pieces, piece{
				kind:   pieceMatched,
				tokens: tokens[m.A : m.A+m.Size],
				words:  words[m.B : m.B+m.Size],
			})
		}
		pa, pb = m.A+m.Size, m.B+m.Size
	}
	return pieces
}

// AlignTokens reconciles the lyric tokens of seg with transcribed words that
// carry absolute times. Punctuation-only words are ignored. When the cleaned
// sequences agree the words map one to one. Otherwise matched runs keep the
// word times, lyric tokens the transcript missed are joined into one token
// timed across the gap, transcript-only words are dropped, and runs that
// differ on both sides become one token spanning the transcribed words.
func AlignTokens(seg Segment, words []SyncedText) WordSegment {
	tokens := textutil.Tokenize(seg.Text)
	cleanTokens := make([]string, len(tokens))
	for i, tok := range tokens {
		cleanTokens[i] = textutil.CleanForComparison(tok)
	}

	kept := make([]SyncedText, 0, len(words))
	cleanWords := make([]string, 0, len(words))
	for _, word := range words {
		if textutil.IsPunctuationOnly(word.Text) {
			continue
		}
		kept = append(kept, word)
		cleanWords = append(cleanWords, textutil.CleanForComparison(word.Text))
	}

	if slices.Equal(cleanTokens, cleanWords) {
		ranges := make([]TimeRange, len(kept))
		for i, word := range kept {
			ranges[i] = TimeRange{Start: word.Start, End: word.End}
		}
		return WordSegment{Segment: seg, Tokens: tokens, Words: ranges}
	}

	pieces := classify(tokens, cleanTokens, kept, cleanWords)
	outTokens := make([]string, 0, len(tokens))
	outWords := make([]TimeRange, 0, len(tokens))
	for i, p := range pieces {
		switch p.kind {
		case pieceMatched:
			for j, tok := range p.tokens {
				outTokens = append(outTokens, tok)
				outWords = append(outWords, TimeRange{Start: p.words[j].Start, End: p.words[j].End})
			}
		case pieceLyricOnly:
			start := seg.Start
			if n := len(outWords); n > 0 {
				start = outWords[n-1].End
			}
			end := seg.End
			for _, next := range pieces[i+1:] {
				if len(next.words) > 0 {
					end = next.words[0].Start
					break
				}
			}
			outTokens = append(outTokens, textutil.JoinTokens(p.tokens))
			outWords = append(outWords, TimeRange{Start: start, End: max(end, start)})
		case pieceBoth:
			start, end := p.words[0].Start, p.words[len(p.words)-1].End
			outTokens = append(outTokens, textutil.JoinTokens(p.tokens))
			outWords = append(outWords, TimeRange{Start: start, End: max(end, start)})
		case pieceWordOnly:
		}
	}

	out := WordSegment{Segment: seg, Tokens: outTokens, Words: outWords}
	out.Text = textutil.JoinTokens(outTokens)
	return out
}
