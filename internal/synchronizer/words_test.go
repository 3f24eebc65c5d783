package synchronizer_test

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"lyricsync/internal/services"
	"lyricsync/internal/synchronizer"
)

func segment(text string, start, end float64, lines ...int) synchronizer.Segment {
	return synchronizer.Segment{
		SyncedText: synchronizer.SyncedText{Text: text, Start: start, End: end},
		LineIDs:    lines,
	}
}

func TestAlignTokensDirectMapping(t *testing.T) {
	seg := segment("rock and roll", 0, 3, 0)
	got := synchronizer.AlignTokens(seg, words("rock", 0.0, 1.0, "and", 1.0, 2.0, "roll", 2.0, 3.0))

	if !reflect.DeepEqual(got.Tokens, []string{"rock", "and", "roll"}) {
		t.Fatalf("tokens = %q", got.Tokens)
	}
	want := []synchronizer.TimeRange{{0, 1}, {1, 2}, {2, 3}}
	if !reflect.DeepEqual(got.Words, want) {
		t.Fatalf("words = %+v, want %+v", got.Words, want)
	}
	if got.Text != "rock and roll" {
		t.Fatalf("text = %q", got.Text)
	}
}

func TestAlignTokensIgnoresPunctuationWords(t *testing.T) {
	seg := segment("Hey, you", 0, 2, 0)
	got := synchronizer.AlignTokens(seg, words("Hey", 0.0, 0.5, "...", 0.5, 0.6, "you!", 0.6, 2.0))
	if !reflect.DeepEqual(got.Tokens, []string{"Hey,", "you"}) {
		t.Fatalf("tokens = %q", got.Tokens)
	}
	if len(got.Words) != 2 || got.Words[1] != (synchronizer.TimeRange{Start: 0.6, End: 2}) {
		t.Fatalf("words = %+v", got.Words)
	}
}

func TestAlignTokensDropsWordOnlyOrphans(t *testing.T) {
	seg := segment("I, I, I'm in the stars", 10, 14, 0)
	got := synchronizer.AlignTokens(seg, words(
		"I", 10.0, 10.4,
		"I", 10.4, 10.8,
		"I'm", 10.8, 11.2,
		"in", 11.2, 11.5,
		"the", 11.5, 11.8,
		"stars", 11.8, 13.0,
		"uh", 13.2, 13.9,
	))

	wantTokens := []string{"I,", "I,", "I'm", "in", "the", "stars"}
	if !reflect.DeepEqual(got.Tokens, wantTokens) {
		t.Fatalf("tokens = %q, want %q", got.Tokens, wantTokens)
	}
	if len(got.Words) != len(got.Tokens) {
		t.Fatalf("tokens/words mismatch: %d vs %d", len(got.Tokens), len(got.Words))
	}
	if got.Words[5] != (synchronizer.TimeRange{Start: 11.8, End: 13.0}) {
		t.Fatalf("last word = %+v", got.Words[5])
	}
	if got.Text != "I, I, I'm in the stars" {
		t.Fatalf("text = %q", got.Text)
	}
}

func TestAlignTokensMergesOrphansOnBothSides(t *testing.T) {
	seg := segment("we will rock you", 0, 5, 0)
	got := synchronizer.AlignTokens(seg, words(
		"uh", 0.0, 0.3,
		"we", 0.3, 1.0,
		"well", 1.0, 2.0,
		"rock", 2.0, 3.0,
		"you", 3.0, 4.0,
	))
	if !reflect.DeepEqual(got.Tokens, []string{"we", "will", "rock", "you"}) {
		t.Fatalf("tokens = %q", got.Tokens)
	}
	want := []synchronizer.TimeRange{{0.3, 1}, {1, 2}, {2, 3}, {3, 4}}
	if !reflect.DeepEqual(got.Words, want) {
		t.Fatalf("words = %+v, want %+v", got.Words, want)
	}
}

func TestAlignTokensInterpolatesMissedLyrics(t *testing.T) {
	seg := segment("we will rock you", 0, 5, 0)
	got := synchronizer.AlignTokens(seg, words(
		"we", 0.0, 1.0,
		"rock", 2.0, 3.0,
		"you", 3.0, 4.0,
	))
	if !reflect.DeepEqual(got.Tokens, []string{"we", "will", "rock", "you"}) {
		t.Fatalf("tokens = %q", got.Tokens)
	}
	if got.Words[1] != (synchronizer.TimeRange{Start: 1, End: 2}) {
		t.Fatalf("interpolated range = %+v, want 1-2", got.Words[1])
	}
}

func TestAlignTokensJoinsTrailingMissedLyrics(t *testing.T) {
	seg := segment("hold me close tonight", 0, 6, 0)
	got := synchronizer.AlignTokens(seg, words("hold", 0.0, 1.0, "me", 1.0, 2.0))
	if !reflect.DeepEqual(got.Tokens, []string{"hold", "me", "close tonight"}) {
		t.Fatalf("tokens = %q", got.Tokens)
	}
	if got.Words[2] != (synchronizer.TimeRange{Start: 2, End: 6}) {
		t.Fatalf("tail range = %+v, want 2-6", got.Words[2])
	}
	if got.Text != "hold me close tonight" {
		t.Fatalf("text = %q", got.Text)
	}
}

func TestAlignTokensWithoutWords(t *testing.T) {
	seg := segment("silent night", 3, 7, 0)
	got := synchronizer.AlignTokens(seg, nil)
	if len(got.Tokens) != 1 || got.Tokens[0] != "silent night" {
		t.Fatalf("tokens = %q", got.Tokens)
	}
	if got.Words[0] != (synchronizer.TimeRange{Start: 3, End: 7}) {
		t.Fatalf("range = %+v", got.Words[0])
	}
}

func TestTranscriptSimilarity(t *testing.T) {
	if got := synchronizer.TranscriptSimilarity("Hello world!", " hello world."); got != 100 {
		t.Fatalf("similarity = %v, want 100", got)
	}
	if got := synchronizer.TranscriptSimilarity("abcd", "abce"); math.Abs(got-75) > 1e-9 {
		t.Fatalf("similarity = %v, want 75", got)
	}
}

func countingTranscriber(text string, calls *int) synchronizer.Transcriber {
	return transcriberFunc(func(_ context.Context, _ string, prompt string) (synchronizer.Transcription, error) {
		*calls++
		if !strings.HasPrefix(prompt, `Use this actual lyric AS-IS: "`) {
			return synchronizer.Transcription{}, errors.New("unexpected prompt " + prompt)
		}
		return synchronizer.Transcription{Text: text, Words: words("x", 0.0, 0.1)}, nil
	})
}

func TestWordAlignerRetryBudget(t *testing.T) {
	seg := []synchronizer.Segment{segment("abcdefghij", 0, 1, 0)}
	tests := []struct {
		name      string
		text      string
		wantCalls int
	}{
		{"perfect stops early", "abcdefghij", 1},
		{"good enough runs mandatory attempts", "abcdefghix", 10},
		{"poor runs to the cap", "zzz", 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			aligner := synchronizer.NewWordAligner(countingTranscriber(tt.text, &calls), nil,
				synchronizer.WithClipDir(t.TempDir()))
			out, err := aligner.Align(context.Background(), seg, &fakeAudio{})
			if err != nil {
				t.Fatalf("Align returned error: %v", err)
			}
			if calls != tt.wantCalls {
				t.Fatalf("transcriber calls = %d, want %d", calls, tt.wantCalls)
			}
			if len(out) != 1 || len(out[0].Tokens) != len(out[0].Words) {
				t.Fatalf("unexpected output %+v", out)
			}
		})
	}
}

func TestWordAlignerKeepsBestTranscription(t *testing.T) {
	responses := []string{"hello", "hello world", "help"}
	calls := 0
	tr := transcriberFunc(func(context.Context, string, string) (synchronizer.Transcription, error) {
		text := responses[calls%len(responses)]
		calls++
		var ws []synchronizer.SyncedText
		for i, w := range strings.Fields(text) {
			ws = append(ws, synchronizer.SyncedText{Text: w, Start: float64(i), End: float64(i) + 1})
		}
		return synchronizer.Transcription{Text: text, Words: ws}, nil
	})
	aligner := synchronizer.NewWordAligner(tr, nil, synchronizer.WithAttempts(3, 3), synchronizer.WithClipDir(t.TempDir()))
	out, err := aligner.Align(context.Background(), []synchronizer.Segment{segment("Hello world", 5, 8, 0)}, &fakeAudio{})
	if err != nil {
		t.Fatalf("Align returned error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2 (perfect match on second attempt)", calls)
	}
	want := []synchronizer.TimeRange{{5, 6}, {6, 7}}
	if !reflect.DeepEqual(out[0].Words, want) {
		t.Fatalf("words = %+v, want %+v (offset by segment start)", out[0].Words, want)
	}
}

func TestWordAlignerClampsWordsToSegment(t *testing.T) {
	tr := transcriberFunc(func(context.Context, string, string) (synchronizer.Transcription, error) {
		return synchronizer.Transcription{Text: "go", Words: words("go", 0.5, 9.0)}, nil
	})
	audio := &fakeAudio{}
	aligner := synchronizer.NewWordAligner(tr, nil, synchronizer.WithClipDir(t.TempDir()))
	out, err := aligner.Align(context.Background(), []synchronizer.Segment{segment("go", 2, 4, 0)}, audio)
	if err != nil {
		t.Fatalf("Align returned error: %v", err)
	}
	if out[0].Words[0] != (synchronizer.TimeRange{Start: 2.5, End: 4}) {
		t.Fatalf("word = %+v, want 2.5-4", out[0].Words[0])
	}
	if len(audio.calls) != 1 || audio.calls[0].start != 2 || audio.calls[0].end != 4 {
		t.Fatalf("unexpected slice calls %+v", audio.calls)
	}
}

func TestWordAlignerTranscriberErrorIsFatal(t *testing.T) {
	boom := errors.New("api down")
	tr := transcriberFunc(func(context.Context, string, string) (synchronizer.Transcription, error) {
		return synchronizer.Transcription{}, boom
	})
	aligner := synchronizer.NewWordAligner(tr, nil, synchronizer.WithClipDir(t.TempDir()))
	_, err := aligner.Align(context.Background(), []synchronizer.Segment{segment("go", 0, 1, 0)}, &fakeAudio{})
	if !errors.Is(err, boom) || !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected wrapped transcriber error, got %v", err)
	}
}

func TestWordAlignerAudioErrorIsFatal(t *testing.T) {
	calls := 0
	aligner := synchronizer.NewWordAligner(countingTranscriber("go", &calls), nil, synchronizer.WithClipDir(t.TempDir()))
	_, err := aligner.Align(context.Background(), []synchronizer.Segment{segment("go", 0, 1, 0)}, &fakeAudio{err: errors.New("short read")})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("transcriber should not run after a slice failure")
	}
}

func TestWordAlignerSkipsZeroLengthSegments(t *testing.T) {
	calls := 0
	audio := &fakeAudio{}
	aligner := synchronizer.NewWordAligner(countingTranscriber("sing along", &calls), nil, synchronizer.WithClipDir(t.TempDir()))
	out, err := aligner.Align(context.Background(), []synchronizer.Segment{segment("Sing along", 2, 2, 0)}, audio)
	if err != nil {
		t.Fatalf("Align returned error: %v", err)
	}
	if calls != 0 || len(audio.calls) != 0 {
		t.Fatalf("zero-length segment was sliced or transcribed: slices=%d calls=%d", len(audio.calls), calls)
	}
	want := []synchronizer.TimeRange{{Start: 2, End: 2}, {Start: 2, End: 2}}
	if len(out) != 1 || !reflect.DeepEqual(out[0].Tokens, []string{"Sing", "along"}) || !reflect.DeepEqual(out[0].Words, want) {
		t.Fatalf("unexpected output %+v", out)
	}
}
