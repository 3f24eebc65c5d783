package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Target layout for speech-to-text input.
const (
	SampleRate    = 16000
	FFmpegCommand = "ffmpeg"
)

// CommandRunner executes an external command.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Normalizer converts arbitrary audio into mono 16 kHz PCM WAV with ffmpeg.
type Normalizer struct {
	ffmpegBinary string
	run          CommandRunner
}

// NewNormalizer returns a Normalizer using ffmpegBinary, or "ffmpeg" from
// PATH when empty.
func NewNormalizer(ffmpegBinary string) *Normalizer {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = FFmpegCommand
	}
	return &Normalizer{ffmpegBinary: ffmpegBinary, run: runCommand}
}

// WithCommandRunner swaps the process runner (for testing).
func (n *Normalizer) WithCommandRunner(runner CommandRunner) {
	if runner != nil {
		n.run = runner
	}
}

// Normalize converts source into dest. The output is written to a temporary
// sibling first and renamed into place so a failed run never leaves a partial
// dest behind.
func (n *Normalizer) Normalize(ctx context.Context, source, dest string) error {
	if strings.TrimSpace(source) == "" || strings.TrimSpace(dest) == "" {
		return fmt.Errorf("normalize audio: source and dest required")
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("normalize audio: ensure dir: %w", err)
	}
	tmp := dest + ".tmp.wav"
	defer os.Remove(tmp)

	if err := n.run(ctx, n.ffmpegBinary, normalizeArgs(source, tmp)...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("normalize audio: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return fmt.Errorf("normalize audio: %w", err)
	}
	return nil
}

func normalizeArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", SampleRate),
		"-c:a", "pcm_s16le",
		dest,
	}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
