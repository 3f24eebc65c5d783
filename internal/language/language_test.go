package language

import "testing"

func TestCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"en", "en", true},
		{"EN", "en", true},
		{" eng ", "en", true},
		{"spa", "es", true},
		{"fra", "fr", true},
		{"fre", "fr", true},
		{"ger", "de", true},
		{"pt-BR", "pt", true},
		{"English", "en", true},
		{"GERMAN", "de", true},
		{"zz", "", false},
		{"not a language", "", false},
		{"", "", false},
		{" ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Code(tt.input)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Code(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestNormalizeKeepsUnknownValues(t *testing.T) {
	if got := Normalize("Eng"); got != "en" {
		t.Fatalf("Normalize(Eng) = %q", got)
	}
	if got := Normalize(" ZZ "); got != "zz" {
		t.Fatalf("Normalize(ZZ) = %q", got)
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"en", "English"},
		{"fre", "French"},
		{"jpn", "Japanese"},
		{"zz", "ZZ"},
		{"", "Unknown"},
	}
	for _, tt := range tests {
		if got := Name(tt.input); got != tt.want {
			t.Errorf("Name(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
