package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// aliases covers English names and the ISO 639-2/B codes that BCP 47 parsing
// does not map.
var aliases = map[string]string{
	"english":    "en",
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"japanese":   "ja",
	"korean":     "ko",
	"chinese":    "zh",
	"russian":    "ru",
	"dutch":      "nl",
	"swedish":    "sv",
	"fre":        "fr",
	"ger":        "de",
	"chi":        "zh",
	"dut":        "nl",
}

// Code returns the ISO 639-1 code for a language tag, ISO 639-2 code or
// English language name. Languages without a two-letter code keep their
// three-letter base. ok is false for anything unrecognized.
func Code(value string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return "", false
	}
	if code, ok := aliases[v]; ok {
		return code, true
	}
	tag, err := xlanguage.Parse(v)
	if err != nil || tag == xlanguage.Und {
		return "", false
	}
	base, confidence := tag.Base()
	if confidence == xlanguage.No {
		return "", false
	}
	return base.String(), true
}

// Normalize returns Code(value), or value trimmed and lowercased when it is
// not recognized.
func Normalize(value string) string {
	if code, ok := Code(value); ok {
		return code
	}
	return strings.ToLower(strings.TrimSpace(value))
}

// Name returns the English display name of a language, or the input
// uppercased when unknown.
func Name(value string) string {
	code, ok := Code(value)
	if !ok {
		if strings.TrimSpace(value) == "" {
			return "Unknown"
		}
		return strings.ToUpper(strings.TrimSpace(value))
	}
	tag, err := xlanguage.Parse(code)
	if err != nil {
		return strings.ToUpper(code)
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return strings.ToUpper(code)
}
