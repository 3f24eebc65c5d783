package lyrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCleanLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Hello world", want: "Hello world"},
		{name: "trims and collapses", in: "  Hello    world \t", want: "Hello world"},
		{name: "drops parenthetical", in: "Hello (hello) world", want: "Hello world"},
		{name: "space before punctuation", in: "Wait , what ?", want: "Wait, what?"},
		{name: "no alphanumerics", in: "♪ ♪", want: ""},
		{name: "empty", in: "", want: ""},
		{name: "fullwidth normalized", in: "ＡＢＣ", want: "ABC"},
		{name: "only parenthetical", in: "(ooh)", want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanLine(tc.in); got != tc.want {
				t.Fatalf("CleanLine(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseHeadersAndVerses(t *testing.T) {
	doc := ParseText("[Verse 1]\nHello world\n\nGoodbye now\n[Chorus]\nLa la (la)\n♪\n")

	if len(doc.Verses) != 2 {
		t.Fatalf("expected 2 verses, got %d", len(doc.Verses))
	}
	if doc.Verses[0].Title != "Verse 1" || doc.Verses[1].Title != "Chorus" {
		t.Fatalf("unexpected verse titles: %+v", doc.Verses)
	}
	want := []string{"Hello world", "Goodbye now", "La la"}
	got := doc.Texts()
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected lines: %q", got)
	}
	if doc.Lines[2].Verse != 1 || doc.Lines[2].Original != "La la (la)" {
		t.Fatalf("unexpected chorus line: %+v", doc.Lines[2])
	}
	if err := doc.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestParseDefaultVerse(t *testing.T) {
	doc := ParseText("First line\r\nSecond line\r\n[Outro]\nBye")
	if len(doc.Verses) != 2 {
		t.Fatalf("expected implicit verse plus outro, got %d", len(doc.Verses))
	}
	if doc.Verses[0].Title != "" {
		t.Fatalf("implicit verse should be untitled, got %q", doc.Verses[0].Title)
	}
	verse, err := doc.VerseOf(2)
	if err != nil {
		t.Fatalf("VerseOf: %v", err)
	}
	if verse.Title != "Outro" {
		t.Fatalf("expected Outro, got %q", verse.Title)
	}
	if _, err := doc.VerseOf(3); err == nil {
		t.Fatal("expected out of range error")
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.txt")
	if err := os.WriteFile(path, []byte("[Intro]\nOh yeah\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	doc, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(doc.Lines) != 1 || doc.Lines[0].Text != "Oh yeah" {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	if err := (&Document{}).Validate(); err == nil {
		t.Fatal("expected error for empty document")
	}
	var nilDoc *Document
	if err := nilDoc.Validate(); err == nil {
		t.Fatal("expected error for nil document")
	}

	doc := &Document{}
	verse := doc.AddVerse("Verse")
	if _, ok := doc.AddLine(verse, "Hello"); !ok {
		t.Fatal("expected line to be added")
	}
	if _, ok := doc.AddLine(verse, "..."); ok {
		t.Fatal("expected punctuation-only line to be skipped")
	}
	doc.Lines[0].Verse = 4
	if err := doc.Validate(); err == nil {
		t.Fatal("expected error for dangling verse reference")
	}
	doc.Lines[0].Verse = 0
	doc.Lines[0].ID = ""
	if err := doc.Validate(); err == nil {
		t.Fatal("expected error for missing line id")
	}
}
