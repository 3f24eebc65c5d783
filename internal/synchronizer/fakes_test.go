package synchronizer_test

import (
	"context"
	"sync"

	"lyricsync/internal/synchronizer"
)

type matcherFunc func(ctx context.Context, reference string, candidates []string) (int, error)

func (f matcherFunc) BestMatch(ctx context.Context, reference string, candidates []string) (int, error) {
	return f(ctx, reference, candidates)
}

type transcriberFunc func(ctx context.Context, clipPath, prompt string) (synchronizer.Transcription, error)

func (f transcriberFunc) Transcribe(ctx context.Context, clipPath, prompt string) (synchronizer.Transcription, error) {
	return f(ctx, clipPath, prompt)
}

type sliceCall struct {
	start, end float64
	dest       string
}

type fakeAudio struct {
	mu    sync.Mutex
	calls []sliceCall
	err   error
}

func (a *fakeAudio) Slice(start, end float64, dest string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, sliceCall{start: start, end: end, dest: dest})
	return a.err
}

func words(triples ...any) []synchronizer.SyncedText {
	out := make([]synchronizer.SyncedText, 0, len(triples)/3)
	for i := 0; i+2 < len(triples); i += 3 {
		out = append(out, synchronizer.SyncedText{
			Text:  triples[i].(string),
			Start: triples[i+1].(float64),
			End:   triples[i+2].(float64),
		})
	}
	return out
}
