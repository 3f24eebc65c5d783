package lyrics

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Verse is a structural section of a song. An empty Title means the verse
// was created implicitly for lines that preceded any header.
type Verse struct {
	ID    string `json:"id" validate:"required"`
	Title string `json:"title,omitempty"`
}

// Line is one ground-truth lyric line. Verse indexes Document.Verses.
type Line struct {
	ID       string `json:"id" validate:"required"`
	Text     string `json:"text" validate:"required"`
	Original string `json:"text_original"`
	Verse    int    `json:"verse" validate:"gte=0"`
}

// Document holds verses and lines as two ordered arenas. Line order is the
// song order and line positions are how the synchronizer addresses lines.
type Document struct {
	Verses []Verse `json:"verses" validate:"dive"`
	Lines  []Line  `json:"lines" validate:"dive"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// AddVerse appends a verse and returns its index.
func (d *Document) AddVerse(title string) int {
	d.Verses = append(d.Verses, Verse{ID: uuid.NewString(), Title: title})
	return len(d.Verses) - 1
}

// AddLine cleans original and appends it to the verse at index verse. Lines
// that clean to nothing are skipped and reported with ok=false.
func (d *Document) AddLine(verse int, original string) (int, bool) {
	text := CleanLine(original)
	if text == "" {
		return -1, false
	}
	d.Lines = append(d.Lines, Line{
		ID:       uuid.NewString(),
		Text:     text,
		Original: original,
		Verse:    verse,
	})
	return len(d.Lines) - 1, true
}

// VerseOf returns the verse that owns the line at index line.
func (d *Document) VerseOf(line int) (Verse, error) {
	if line < 0 || line >= len(d.Lines) {
		return Verse{}, fmt.Errorf("lyrics: line %d out of range (%d lines)", line, len(d.Lines))
	}
	idx := d.Lines[line].Verse
	if idx < 0 || idx >= len(d.Verses) {
		return Verse{}, fmt.Errorf("lyrics: line %d references missing verse %d", line, idx)
	}
	return d.Verses[idx], nil
}

// Texts returns the cleaned text of every line in order.
func (d *Document) Texts() []string {
	out := make([]string, len(d.Lines))
	for i, line := range d.Lines {
		out[i] = line.Text
	}
	return out
}

// Validate checks field requirements and that every line belongs to an
// existing verse.
func (d *Document) Validate() error {
	if d == nil {
		return fmt.Errorf("lyrics: nil document")
	}
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("lyrics: %w", err)
	}
	if len(d.Lines) == 0 {
		return fmt.Errorf("lyrics: document has no lines")
	}
	for i, line := range d.Lines {
		if line.Verse >= len(d.Verses) {
			return fmt.Errorf("lyrics: line %d references missing verse %d", i, line.Verse)
		}
	}
	return nil
}
