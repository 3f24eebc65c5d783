package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"lyricsync/internal/testsupport"
)

func TestOpenReportsDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.wav")
	testsupport.WriteWAV(t, path, 2, 16000)

	track, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if track.SampleRate != 16000 || track.Channels != 1 || track.BitDepth != 16 {
		t.Fatalf("unexpected format: %+v", track)
	}
	if track.Frames() != 32000 {
		t.Fatalf("expected 32000 frames, got %d", track.Frames())
	}
	if track.Duration() != 2 {
		t.Fatalf("expected 2s, got %v", track.Duration())
	}
}

func TestOpenRejectsNonWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("definitely not audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); !errors.Is(err, ErrInvalidWAV) {
		t.Fatalf("expected ErrInvalidWAV, got %v", err)
	}
	if _, err := Open(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSlice(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.wav")
	testsupport.WriteWAV(t, path, 2, 16000)
	track, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	tests := []struct {
		name       string
		start, end float64
		wantFrames int
	}{
		{name: "inner range", start: 0.5, end: 1, wantFrames: 8000},
		{name: "clamped", start: -1, end: 5, wantFrames: 32000},
		{name: "tail", start: 1.75, end: 2, wantFrames: 4000},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dest := filepath.Join(dir, "clips", tc.name+".wav")
			if err := track.Slice(tc.start, tc.end, dest); err != nil {
				t.Fatalf("Slice: %v", err)
			}
			clip, err := Open(dest)
			if err != nil {
				t.Fatalf("Open clip: %v", err)
			}
			if clip.Frames() != tc.wantFrames {
				t.Fatalf("expected %d frames, got %d", tc.wantFrames, clip.Frames())
			}
			if clip.SampleRate != track.SampleRate {
				t.Fatalf("clip sample rate %d, want %d", clip.SampleRate, track.SampleRate)
			}
			first := track.frameAt(max(tc.start, 0))
			if !slices.Equal(clip.samples[:10], track.samples[first:first+10]) {
				t.Fatal("clip samples do not match the source range")
			}
		})
	}
}

func TestNormalizeWritesAtomically(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out", "song.wav")

	var gotName string
	var gotArgs []string
	n := NewNormalizer("")
	n.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		gotName, gotArgs = name, args
		return os.WriteFile(args[len(args)-1], []byte("RIFF"), 0o644)
	})

	if err := n.Normalize(context.Background(), "in.webm", dest); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if gotName != FFmpegCommand {
		t.Fatalf("expected ffmpeg, got %q", gotName)
	}
	for _, want := range [][]string{{"-i", "in.webm"}, {"-ac", "1"}, {"-ar", "16000"}, {"-c:a", "pcm_s16le"}} {
		idx := slices.Index(gotArgs, want[0])
		if idx < 0 || idx+1 >= len(gotArgs) || gotArgs[idx+1] != want[1] {
			t.Fatalf("expected %s %s in args %v", want[0], want[1], gotArgs)
		}
	}
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("expected dest to exist: %v", err)
	}
	if _, err := os.Stat(dest + ".tmp.wav"); !os.IsNotExist(err) {
		t.Fatalf("expected temp file to be gone, err=%v", err)
	}
}

func TestNormalizeFailureLeavesNoOutput(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "song.wav")
	n := NewNormalizer("/opt/ffmpeg")
	n.WithCommandRunner(func(_ context.Context, _ string, args ...string) error {
		_ = os.WriteFile(args[len(args)-1], []byte("partial"), 0o644)
		return errors.New("exit status 1")
	})
	if err := n.Normalize(context.Background(), "in.webm", dest); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatalf("expected no dest, err=%v", err)
	}
	if err := n.Normalize(context.Background(), "", dest); err == nil {
		t.Fatal("expected error for empty source")
	}
}
