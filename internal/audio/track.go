package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// pcmFormat is the WAVE format tag for integer PCM.
const pcmFormat = 1

// ErrInvalidWAV reports a file the decoder cannot read as PCM WAV.
var ErrInvalidWAV = errors.New("audio: not a valid PCM wav file")

// Track is a decoded WAV file. Samples are interleaved when Channels > 1.
type Track struct {
	Path       string
	SampleRate int
	Channels   int
	BitDepth   int
	samples    []int
}

// Open decodes the WAV file at path into memory.
func Open(path string) (*Track, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWAV, path)
	}
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode audio %s: %w", path, err)
	}
	track := &Track{
		Path:       path,
		SampleRate: int(decoder.SampleRate),
		Channels:   int(decoder.NumChans),
		BitDepth:   int(decoder.BitDepth),
		samples:    buf.Data,
	}
	if track.SampleRate <= 0 || track.Channels <= 0 {
		return nil, fmt.Errorf("%w: %s: sample rate %d, channels %d", ErrInvalidWAV, path, track.SampleRate, track.Channels)
	}
	return track, nil
}

// Frames returns the number of sample frames in the track.
func (t *Track) Frames() int {
	return len(t.samples) / t.Channels
}

// Duration returns the track length in seconds.
func (t *Track) Duration() float64 {
	return float64(t.Frames()) / float64(t.SampleRate)
}

// Slice writes the audio between start and end seconds to dest as a WAV file
// with the track's own format. Bounds are clamped to the track; an empty range
// yields a clip with no samples.
func (t *Track) Slice(start, end float64, dest string) error {
	first := t.frameAt(start)
	last := max(t.frameAt(end), first)

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("slice audio: ensure dir: %w", err)
	}
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("slice audio: %w", err)
	}
	defer out.Close()

	encoder := wav.NewEncoder(out, t.SampleRate, t.BitDepth, t.Channels, pcmFormat)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: t.Channels, SampleRate: t.SampleRate},
		Data:           t.samples[first*t.Channels : last*t.Channels],
		SourceBitDepth: t.BitDepth,
	}
	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("slice audio: encode: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("slice audio: finalize: %w", err)
	}
	return out.Close()
}

func (t *Track) frameAt(seconds float64) int {
	frame := int(seconds * float64(t.SampleRate))
	return min(max(frame, 0), t.Frames())
}
