package whisperx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"lyricsync/internal/services"
	"lyricsync/internal/synchronizer"
)

func argValue(args []string, flag string) (string, bool) {
	idx := slices.Index(args, flag)
	if idx < 0 || idx+1 >= len(args) {
		return "", false
	}
	return args[idx+1], true
}

const sampleOutput = `{
  "segments": [
    {"text": " Hello world,", "start": 0.1, "end": 1.0, "words": [
      {"word": "Hello", "start": 0.1, "end": 0.5, "score": 0.9},
      {"word": "world,", "start": 0.5, "end": 1.0, "score": 0.8}
    ]},
    {"text": " 22 now", "start": 1.5, "end": 2.5, "words": [
      {"word": "22"},
      {"word": "now", "start": 2.0, "end": 2.5}
    ]}
  ]
}`

func TestTranscribeRunsWhisperX(t *testing.T) {
	clip := filepath.Join(t.TempDir(), "segment-0001.wav")
	if err := os.WriteFile(clip, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}

	var gotName string
	var gotArgs []string
	svc := NewService(Config{Language: "EN"})
	svc.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		gotName, gotArgs = name, args
		outDir, _ := argValue(args, "--output_dir")
		return os.WriteFile(filepath.Join(outDir, "segment-0001.json"), []byte(sampleOutput), 0o644)
	})

	result, err := svc.Transcribe(context.Background(), clip, `Use this actual lyric AS-IS: "Hello world"`)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if gotName != Launcher {
		t.Fatalf("expected uvx, got %q", gotName)
	}
	checks := map[string]string{
		"--initial_prompt": `Use this actual lyric AS-IS: "Hello world"`,
		"--model":          DefaultModel,
		"--output_format":  "json",
		"--language":       "en",
		"--device":         "cpu",
		"--vad_method":     "silero",
	}
	for flag, want := range checks {
		if got, ok := argValue(gotArgs, flag); !ok || got != want {
			t.Fatalf("%s = %q (present=%v), want %q", flag, got, ok, want)
		}
	}
	if result.Text != "Hello world, 22 now" {
		t.Fatalf("unexpected text %q", result.Text)
	}
	want := []synchronizer.SyncedText{
		{Text: "Hello", Start: 0.1, End: 0.5},
		{Text: "world,", Start: 0.5, End: 1.0},
		{Text: "22", Start: 1.5, End: 1.5},
		{Text: "now", Start: 2.0, End: 2.5},
	}
	if !slices.Equal(result.Words, want) {
		t.Fatalf("words = %+v, want %+v", result.Words, want)
	}
	entries, _ := os.ReadDir(filepath.Dir(clip))
	if len(entries) != 1 {
		t.Fatalf("expected whisperx output dir to be cleaned up, found %d entries", len(entries))
	}
}

func TestTranscribeCUDAArgs(t *testing.T) {
	svc := NewService(Config{Model: "large-v3-turbo", CUDAEnabled: true})
	args := svc.buildArgs("in.wav", "/tmp/out", "")
	if got, _ := argValue(args, "--device"); got != "cuda" {
		t.Fatalf("expected cuda device, got %q", got)
	}
	if got, _ := argValue(args, "--extra-index-url"); got != pypiIndex {
		t.Fatalf("expected extra index url, got %q", got)
	}
	if _, ok := argValue(args, "--compute_type"); ok {
		t.Fatal("compute type is only forced on cpu")
	}
	if _, ok := argValue(args, "--initial_prompt"); ok {
		t.Fatal("empty prompt should not be passed")
	}
	if svc.Model() != "large-v3-turbo" {
		t.Fatalf("unexpected model %q", svc.Model())
	}
}

func TestTranscribeErrors(t *testing.T) {
	clip := filepath.Join(t.TempDir(), "clip.wav")
	svc := NewService(Config{})
	svc.WithCommandRunner(func(context.Context, string, ...string) error {
		return errors.New("exit status 1")
	})
	if _, err := svc.Transcribe(context.Background(), clip, "p"); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}

	svc.WithCommandRunner(func(context.Context, string, ...string) error { return nil })
	if _, err := svc.Transcribe(context.Background(), clip, "p"); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected missing output to be an external tool error, got %v", err)
	}
	if _, err := svc.Transcribe(context.Background(), " ", "p"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
