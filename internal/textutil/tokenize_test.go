package textutil

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"plain", "Hello  world", []string{"Hello", "world"}},
		{"hyphenated", "sing-song", []string{"sing-", "song"}},
		{"chain", "rock-and-roll all night", []string{"rock-", "and-", "roll", "all", "night"}},
		{"leading hyphen", "- oh yeah", []string{"-", "oh", "yeah"}},
		{"punctuation kept", "I, I, I'm in", []string{"I,", "I,", "I'm", "in"}},
		{"empty", "   ", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.line)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestJoinTokensRoundTrip(t *testing.T) {
	inputs := []string{
		"Hello world",
		"  I'm   in the   stars ",
		"one",
		"sing-song all day",
		"rock-and-roll",
	}
	for _, input := range inputs {
		want := NormalizeWhitespace(input)
		if got := JoinTokens(Tokenize(input)); got != want {
			t.Errorf("JoinTokens(Tokenize(%q)) = %q, want %q", input, got, want)
		}
	}
}

func TestCleanForComparison(t *testing.T) {
	tests := map[string]string{
		"I'm":     "im",
		"Stars?":  "stars",
		"\"Yeah,": "yeah",
		"sing-":   "sing",
		" Oh. ":   "oh",
		"...":     "",
	}
	for in, want := range tests {
		if got := CleanForComparison(in); got != want {
			t.Errorf("CleanForComparison(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsPunctuationOnly(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"...", true},
		{"?!", true},
		{"", false},
		{"uh", false},
		{"a.", false},
		{"_", false},
		{"- -", false},
	}
	for _, c := range cases {
		if got := IsPunctuationOnly(c.in); got != c.want {
			t.Errorf("IsPunctuationOnly(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
