package textutil

import (
	"strings"
	"unicode"
)

// comparisonReplacer strips the punctuation ignored when comparing tokens.
var comparisonReplacer = strings.NewReplacer(
	"'", "",
	"\"", "",
	".", "",
	",", "",
	"?", "",
	"-", "",
)

// Tokenize splits a lyric line into display tokens. Whitespace separates
// tokens and a hyphen is folded onto the token before it, so "sing-song"
// yields ["sing-", "song"] and joins back to "sing-song".
func Tokenize(line string) []string {
	pieces := splitKeepingHyphens(line)
	for i, piece := range pieces {
		if piece == "-" && i > 0 {
			pieces[i-1] += "-"
			pieces[i] = " "
		}
	}
	tokens := pieces[:0]
	for _, piece := range pieces {
		if strings.TrimSpace(piece) == "" {
			continue
		}
		tokens = append(tokens, piece)
	}
	return tokens
}

// splitKeepingHyphens cuts text at whitespace and hyphens, returning the
// hyphens as standalone pieces. Whitespace runs are dropped.
func splitKeepingHyphens(text string) []string {
	pieces := make([]string, 0, 8)
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			pieces = append(pieces, current.String())
			current.Reset()
		}
	}
	for _, r := range text {
		switch {
		case r == '-':
			flush()
			pieces = append(pieces, "-")
		case unicode.IsSpace(r):
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return pieces
}

// CleanForComparison lowercases a token and strips quotes, commas, periods,
// question marks, and hyphens. The result is only used for scoring.
func CleanForComparison(token string) string {
	return strings.ToLower(strings.TrimSpace(comparisonReplacer.Replace(token)))
}

// CleanTokens tokenizes a line and cleans every token for comparison.
func CleanTokens(line string) []string {
	tokens := Tokenize(line)
	cleaned := make([]string, len(tokens))
	for i, token := range tokens {
		cleaned[i] = CleanForComparison(token)
	}
	return cleaned
}

// JoinTokens reverses Tokenize. Tokens are space separated unless the text
// built so far is empty or ends with a hyphen.
func JoinTokens(tokens []string) string {
	var b strings.Builder
	for _, token := range tokens {
		text := b.String()
		if text != "" && !strings.HasSuffix(text, "-") {
			b.WriteByte(' ')
		}
		b.WriteString(token)
	}
	return b.String()
}

// IsPunctuationOnly reports whether s is non-empty and made entirely of
// characters that are neither word characters nor whitespace.
func IsPunctuationOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// NormalizeWhitespace collapses whitespace runs to single spaces and trims.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
