package transcript

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	vttTagPattern = regexp.MustCompile(`<[^>]*>`)
	vttEntities   = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&nbsp;", " ", "&#39;", "'", "&quot;", `"`)
)

// ParseVTT decodes a WebVTT caption track. Inline timing and style tags are
// removed. YouTube's auto-caption VTT repeats the previous line at the top of
// every cue so it keeps scrolling on screen; those carried-over lines are
// dropped, as are cues that only repeat earlier text.
func ParseVTT(data []byte) ([]Entry, error) {
	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	if !strings.HasPrefix(strings.TrimPrefix(content, "\ufeff"), "WEBVTT") {
		return nil, fmt.Errorf("parse vtt captions: missing WEBVTT header")
	}

	var (
		entries  []Entry
		previous string
	)
	for _, block := range strings.Split(content, "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		timing := -1
		for i, line := range lines {
			if strings.Contains(line, "-->") {
				timing = i
				break
			}
		}
		if timing < 0 {
			continue
		}
		start, end, err := parseVTTTiming(lines[timing])
		if err != nil {
			return nil, err
		}

		var text []string
		for _, line := range lines[timing+1:] {
			cleaned := strings.TrimSpace(vttEntities.Replace(vttTagPattern.ReplaceAllString(line, "")))
			if cleaned == "" {
				continue
			}
			text = append(text, cleaned)
		}
		if len(text) > 1 && text[0] == previous {
			text = text[1:]
		}
		joined := strings.Join(text, " ")
		if joined == "" || joined == previous {
			continue
		}
		previous = text[len(text)-1]
		entries = append(entries, Entry{Text: joined, Start: start, Duration: max(end-start, 0)})
	}
	return entries, nil
}

func parseVTTTiming(line string) (float64, float64, error) {
	parts := strings.SplitN(line, "-->", 2)
	start, err := parseVTTTimestamp(parts[0])
	if err != nil {
		return 0, 0, err
	}
	// Cue settings follow the end timestamp.
	endFields := strings.Fields(parts[1])
	if len(endFields) == 0 {
		return 0, 0, fmt.Errorf("parse vtt captions: missing end timestamp in %q", line)
	}
	end, err := parseVTTTimestamp(endFields[0])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// parseVTTTimestamp accepts hh:mm:ss.mmm and mm:ss.mmm.
func parseVTTTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	main, fraction, ok := strings.Cut(value, ".")
	if !ok {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	fields := strings.Split(main, ":")
	if len(fields) < 2 || len(fields) > 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	total := 0
	for _, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil {
			return 0, fmt.Errorf("invalid timestamp %q", value)
		}
		total = total*60 + n
	}
	millis, err := strconv.Atoi(fraction)
	if err != nil || len(fraction) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(total) + float64(millis)/1000, nil
}
