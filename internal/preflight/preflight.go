package preflight

import (
	"context"

	"lyricsync/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every applicable check for cfg. Remote checks are skipped
// when their credentials are absent and reported as failures instead.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
	}
	for _, status := range CheckSystemDeps(cfg) {
		detail := status.Detail
		if status.Available {
			detail = status.Path
		}
		passed := status.Available || status.Optional
		if !status.Available && status.Optional {
			detail += " (optional)"
		}
		results = append(results, Result{Name: status.Name, Passed: passed, Detail: detail})
	}
	results = append(results, CheckGenius(ctx, cfg.Genius))
	results = append(results, CheckLLM(ctx, "Line matcher LLM", cfg.LLM))
	if cfg.STT.Provider == config.STTProviderOpenAI {
		results = append(results, CheckOpenAISTT(ctx, cfg.STT))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
