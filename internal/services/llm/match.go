package llm

import (
	"context"
	"fmt"
	"strings"

	"lyricsync/internal/services"
)

// BestMatchPrompt instructs the model to pick the caption closest to a lyric.
const BestMatchPrompt = `You match reference lyrics against automatically generated subtitles, which may be misheard or noisy.
Given a reference lyric phrase and a numbered list of candidate subtitles, pick the candidate that best matches the reference.

[Output Format]
Respond with a JSON object:
{"index": <number>}
where index is the 0-based position of the best candidate, or -1 if none of them match.`

// BestMatch asks the model which candidate best matches reference. It
// returns -1 when the model reports no match. An index outside the
// candidate list is a validation error.
func (c *Client) BestMatch(ctx context.Context, reference string, candidates []string) (int, error) {
	if len(candidates) == 0 {
		return -1, nil
	}
	content, err := c.CompleteJSON(ctx, BestMatchPrompt, BestMatchUserPrompt(reference, candidates))
	if err != nil {
		return 0, err
	}
	var parsed struct {
		Index *int `json:"index"`
	}
	if err := DecodeLLMJSON(content, &parsed); err != nil {
		return 0, services.Wrap(services.ErrValidation, "llm", "best match", "parse payload", err)
	}
	if parsed.Index == nil {
		return 0, services.Wrap(services.ErrValidation, "llm", "best match", "response missing index: "+summarizePayloadSnippet(content), nil)
	}
	index := *parsed.Index
	if index < -1 || index >= len(candidates) {
		return 0, services.Wrap(services.ErrValidation, "llm", "best match",
			fmt.Sprintf("index %d out of range for %d candidates", index, len(candidates)), nil)
	}
	return index, nil
}

// BestMatchUserPrompt renders the reference and the numbered candidates.
func BestMatchUserPrompt(reference string, candidates []string) string {
	var b strings.Builder
	b.WriteString("[Reference]\n\"")
	b.WriteString(reference)
	b.WriteString("\"\n\n[Candidates]")
	for i, candidate := range candidates {
		fmt.Fprintf(&b, "\n%d: \"%s\"", i, candidate)
	}
	return b.String()
}
