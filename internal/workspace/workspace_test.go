package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"lyricsync/internal/services"
)

func TestAcquireLocksSongDirectory(t *testing.T) {
	base := t.TempDir()
	ws, err := Acquire(base, "song-1")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if ws.Root() != filepath.Join(base, "song-1") {
		t.Fatalf("unexpected root %s", ws.Root())
	}
	if ws.Audio() != filepath.Join(base, "song-1", "audio.wav") {
		t.Fatalf("unexpected audio path %s", ws.Audio())
	}

	if _, err := Acquire(base, "song-1"); !errors.Is(err, ErrLocked) || !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected locked error, got %v", err)
	}
	other, err := Acquire(base, "song-2")
	if err != nil {
		t.Fatalf("Acquire other song: %v", err)
	}
	defer other.Release()

	if err := ws.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	again, err := Acquire(base, "song-1")
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	if err := again.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
}

func TestAcquireRejectsBadIDs(t *testing.T) {
	for _, id := range []string{"", " ", "..", "a/b"} {
		if _, err := Acquire(t.TempDir(), id); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("Acquire(%q) expected validation error, got %v", id, err)
		}
	}
}

func TestCleanRemovesClips(t *testing.T) {
	ws, err := Acquire(t.TempDir(), "song")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer ws.Release()

	if err := os.MkdirAll(ws.ClipsDir(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ws.Audio(), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ws.Clean(); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if _, err := os.Stat(ws.ClipsDir()); !os.IsNotExist(err) {
		t.Fatalf("expected clips removed, got %v", err)
	}
	if _, err := os.Stat(ws.Audio()); err != nil {
		t.Fatalf("expected audio kept: %v", err)
	}
}
