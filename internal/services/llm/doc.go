// Package llm provides an OpenRouter-compatible chat client used as the line
// aligner's fallback matcher.
//
// When fuzzy scoring cannot place a lyric line, the aligner hands the line
// and its caption candidates to Client.BestMatch, which asks the model for
// the index of the closest candidate (or -1 for none).
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.CompleteJSON: send system/user prompts, receive JSON response.
// Client.BestMatch: pick the caption candidate that matches a lyric line.
// Client.HealthCheck: verify API key and model availability.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty completions and network
// timeouts with exponential backoff (base 1s, max 10s, up to 5 attempts by
// default). Context cancellation aborts retries immediately. Final failures
// carry a services marker: ErrConfiguration for rejected credentials,
// ErrTransient or ErrTimeout when retries ran out, ErrExternalTool otherwise.
package llm
