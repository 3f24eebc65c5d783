// Package workspace hands out per-song work directories guarded by an
// advisory file lock, so two preparation jobs never share intermediate files.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"lyricsync/internal/services"
)

const lockName = ".lock"

// ErrLocked reports that another process holds the song's workspace.
var ErrLocked = errors.New("workspace locked")

// Workspace is a locked work directory for one song.
type Workspace struct {
	root string
	lock *flock.Flock
}

// Acquire creates workDir/songID and takes its lock without blocking.
func Acquire(workDir, songID string) (*Workspace, error) {
	songID = strings.TrimSpace(songID)
	if songID == "" || strings.ContainsAny(songID, `/\`) || songID == "." || songID == ".." {
		return nil, services.Wrap(services.ErrValidation, "workspace", "acquire", fmt.Sprintf("invalid song id %q", songID), nil)
	}
	root := filepath.Join(workDir, songID)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("workspace: create %s: %w", root, err)
	}
	lock := flock.New(filepath.Join(root, lockName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("workspace: acquire lock: %w", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "workspace", "acquire", "another job is preparing song "+songID, ErrLocked)
	}
	return &Workspace{root: root, lock: lock}, nil
}

// Root is the work directory.
func (w *Workspace) Root() string {
	return w.root
}

// Path joins elem onto the work directory.
func (w *Workspace) Path(elem ...string) string {
	return filepath.Join(append([]string{w.root}, elem...)...)
}

// CaptionsDir holds downloaded caption tracks.
func (w *Workspace) CaptionsDir() string {
	return w.Path("captions")
}

// ClipsDir holds per-segment audio clips sent to speech-to-text.
func (w *Workspace) ClipsDir() string {
	return w.Path("clips")
}

// SourceAudio is the downloaded audio before normalization.
func (w *Workspace) SourceAudio() string {
	return w.Path("source.wav")
}

// Audio is the normalized mono 16 kHz track.
func (w *Workspace) Audio() string {
	return w.Path("audio.wav")
}

// Clean removes intermediate clips, keeping the normalized audio.
func (w *Workspace) Clean() error {
	if err := os.RemoveAll(w.ClipsDir()); err != nil {
		return fmt.Errorf("workspace: remove clips: %w", err)
	}
	return nil
}

// Release drops the lock. It is safe to call more than once.
func (w *Workspace) Release() error {
	if w == nil || w.lock == nil {
		return nil
	}
	return w.lock.Unlock()
}
