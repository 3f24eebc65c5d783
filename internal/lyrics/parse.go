package lyrics

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"lyricsync/internal/textutil"
)

var (
	alnumPattern       = regexp.MustCompile(`[a-zA-Z0-9]`)
	parentheticalRe    = regexp.MustCompile(`\(.*?\)`)
	spaceBeforePunctRe = regexp.MustCompile(`\s+([,?.!;:])`)
	headerPattern      = regexp.MustCompile(`^\[(.*)\]$`)
)

// CleanLine normalizes a raw lyric or caption line: NFKC normalization,
// lines with no ASCII letters or digits become empty, parentheticals are
// removed, whitespace before punctuation is dropped, and whitespace runs
// collapse to single spaces.
func CleanLine(line string) string {
	cleaned := strings.TrimSpace(norm.NFKC.String(line))
	if !alnumPattern.MatchString(cleaned) {
		return ""
	}
	cleaned = parentheticalRe.ReplaceAllString(cleaned, "")
	cleaned = spaceBeforePunctRe.ReplaceAllString(cleaned, "$1")
	return textutil.NormalizeWhitespace(cleaned)
}

// Parse builds a Document from raw lyric lines. A line wrapped in square
// brackets starts a new verse titled with its contents. Content before any
// header lands in an untitled verse.
func Parse(raw []string) *Document {
	doc := &Document{}
	current := -1
	for _, line := range raw {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if m := headerPattern.FindStringSubmatch(trimmed); m != nil {
			current = doc.AddVerse(strings.TrimSpace(m[1]))
			continue
		}
		if current < 0 {
			current = doc.AddVerse("")
		}
		doc.AddLine(current, line)
	}
	return doc
}

// ParseText splits text on newlines and parses it.
func ParseText(text string) *Document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return Parse(strings.Split(text, "\n"))
}

// ParseFile reads a plain-text lyrics file and parses it.
func ParseFile(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lyrics file: %w", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read lyrics file: %w", err)
	}
	return Parse(lines), nil
}
