package rows

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"lyricsync/internal/lyrics"
	"lyricsync/internal/services"
	"lyricsync/internal/synchronizer"
)

// TimestampRange is a millisecond range.
type TimestampRange struct {
	StartMS int64 `json:"start_millis"`
	EndMS   int64 `json:"end_millis"`
}

// Verse is a verse row. Instrumental verses are synthesized to cover gaps
// without lyrics and have no lines.
type Verse struct {
	ID           string `json:"id"`
	SongID       string `json:"song_id"`
	Ordering     int    `json:"verse_ordering"`
	Title        string `json:"title"`
	StartMS      int64  `json:"start_millis"`
	EndMS        int64  `json:"end_millis"`
	Instrumental bool   `json:"instrumental,omitempty"`
}

// Line is a line row. LineNumber restarts at zero in every verse.
type Line struct {
	ID         string           `json:"id"`
	SongID     string           `json:"song_id"`
	VerseID    string           `json:"verse_id"`
	LineNumber int              `json:"line_number"`
	Text       string           `json:"lyric"`
	Tokens     []string         `json:"tokens"`
	Timestamps []TimestampRange `json:"timestamps"`
	StartMS    int64            `json:"start_millis"`
	EndMS      int64            `json:"end_millis"`
	Bridge     bool             `json:"bridge,omitempty"`
}

// Options controls instrumental verse insertion.
type Options struct {
	InsertInstrumental bool
	ThresholdMS        int64
	IntroTitle         string
	InstrumentalTitle  string
	OutroTitle         string
}

// DefaultOptions returns the stock instrumental settings.
func DefaultOptions() Options {
	return Options{
		InsertInstrumental: true,
		ThresholdMS:        5000,
		IntroTitle:         "Intro",
		InstrumentalTitle:  "Instrumental",
		OutroTitle:         "Outro",
	}
}

// ToMillisRange converts seconds to milliseconds, flooring the start and
// ceiling the end so the range never shrinks.
func ToMillisRange(start, end float64) TimestampRange {
	return TimestampRange{
		StartMS: int64(math.Floor(start * 1000)),
		EndMS:   int64(math.Ceil(end * 1000)),
	}
}

// Assemble builds verse and line rows for songID. synced must hold one
// segment per lyric line, as produced by the synchronizer.
func Assemble(songID string, doc *lyrics.Document, durationMS int64, synced []synchronizer.WordSegment, opts Options) ([]Verse, []Line, error) {
	if doc == nil || len(doc.Verses) == 0 {
		return nil, nil, services.Wrap(services.ErrValidation, "rows", "assemble", "lyric document has no verses", nil)
	}
	verses := make([]Verse, len(doc.Verses))
	for i, v := range doc.Verses {
		verses[i] = Verse{ID: v.ID, SongID: songID, Ordering: i, Title: v.Title}
	}

	lines := make([]Line, 0, len(synced))
	first := make([]int, len(verses))
	last := make([]int, len(verses))
	for i := range first {
		first[i], last[i] = -1, -1
	}
	current, counter := -1, 0
	for i, seg := range synced {
		if len(seg.LineIDs) == 0 || seg.LineIDs[0] < 0 || seg.LineIDs[0] >= len(doc.Lines) {
			return nil, nil, services.Wrap(services.ErrInvariant, "rows", "assemble", fmt.Sprintf("segment %d has no valid lyric line", i), nil)
		}
		lyric := doc.Lines[seg.LineIDs[0]]
		if _, err := doc.VerseOf(seg.LineIDs[0]); err != nil {
			return nil, nil, services.Wrap(services.ErrInvariant, "rows", "assemble", fmt.Sprintf("segment %d", i), err)
		}
		if len(seg.Tokens) != len(seg.Words) {
			return nil, nil, services.Wrap(services.ErrInvariant, "rows", "assemble", fmt.Sprintf("segment %d has %d tokens and %d words", i, len(seg.Tokens), len(seg.Words)), nil)
		}
		if lyric.Verse != current {
			current, counter = lyric.Verse, 0
		}
		stamps := make([]TimestampRange, len(seg.Words))
		for j, w := range seg.Words {
			stamps[j] = ToMillisRange(w.Start, w.End)
		}
		span := ToMillisRange(seg.Start, seg.End)
		lines = append(lines, Line{
			ID:         lyric.ID,
			SongID:     songID,
			VerseID:    verses[current].ID,
			LineNumber: counter,
			Text:       seg.Text,
			Tokens:     append([]string(nil), seg.Tokens...),
			Timestamps: stamps,
			StartMS:    span.StartMS,
			EndMS:      span.EndMS,
			Bridge:     seg.Bridge,
		})
		counter++
		if first[current] < 0 {
			first[current] = len(lines) - 1
		}
		last[current] = len(lines) - 1
	}

	resolveVerseRanges(verses, lines, first, last, durationMS)
	if opts.InsertInstrumental {
		verses = insertInstrumental(songID, verses, durationMS, opts)
	}
	return verses, lines, nil
}

// resolveVerseRanges spans each verse over its lines. A verse without lines
// starts where the previous verse ends (or 0) and ends where the next verse
// with lines starts (or at the song end).
func resolveVerseRanges(verses []Verse, lines []Line, first, last []int, durationMS int64) {
	for i := range verses {
		if first[i] < 0 {
			continue
		}
		verses[i].StartMS = lines[first[i]].StartMS
		verses[i].EndMS = lines[last[i]].EndMS
	}
	for i := range verses {
		if first[i] >= 0 {
			continue
		}
		if i > 0 {
			verses[i].StartMS = verses[i-1].EndMS
		}
		verses[i].EndMS = durationMS
		for j := i + 1; j < len(verses); j++ {
			if first[j] >= 0 {
				verses[i].EndMS = verses[j].StartMS
				break
			}
		}
		verses[i].EndMS = max(verses[i].EndMS, verses[i].StartMS)
	}
}

func insertInstrumental(songID string, verses []Verse, durationMS int64, opts Options) []Verse {
	if len(verses) == 0 {
		return verses
	}
	gap := func(title string, start, end int64) Verse {
		return Verse{ID: uuid.NewString(), SongID: songID, Title: titleOr(title), StartMS: start, EndMS: end, Instrumental: true}
	}
	out := make([]Verse, 0, len(verses)+2)
	if verses[0].StartMS > opts.ThresholdMS {
		out = append(out, gap(opts.IntroTitle, 0, verses[0].StartMS))
	}
	for i, v := range verses {
		out = append(out, v)
		if i+1 < len(verses) && verses[i+1].StartMS-v.EndMS > opts.ThresholdMS {
			out = append(out, gap(opts.InstrumentalTitle, v.EndMS, verses[i+1].StartMS))
		}
	}
	if end := out[len(out)-1].EndMS; durationMS-end > opts.ThresholdMS {
		out = append(out, gap(opts.OutroTitle, end, durationMS))
	}
	for i := range out {
		out[i].Ordering = i
	}
	return out
}

func titleOr(title string) string {
	if strings.TrimSpace(title) == "" {
		return "Instrumental"
	}
	return title
}
