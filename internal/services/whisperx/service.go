package whisperx

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"lyricsync/internal/services"
	"lyricsync/internal/synchronizer"
)

// Service provides WhisperX transcription capabilities.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a WhisperX service with the given configuration.
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	if s.cfg.Model != "" {
		return s.cfg.Model
	}
	return DefaultModel
}

// run executes a command, using the custom runner if set.
func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec

	// Torch 2.6 changed torch.load default to weights_only=true, breaking WhisperX/pyannote.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Transcribe runs WhisperX on clipPath, biased with prompt, and returns the
// transcript text with clip-relative word timings. Output files go to a
// directory next to the clip that is removed afterwards.
func (s *Service) Transcribe(ctx context.Context, clipPath, prompt string) (synchronizer.Transcription, error) {
	if strings.TrimSpace(clipPath) == "" {
		return synchronizer.Transcription{}, services.Wrap(services.ErrValidation, "whisperx", "transcribe", "clip path required", nil)
	}
	outputDir, err := os.MkdirTemp(filepath.Dir(clipPath), "whisperx-")
	if err != nil {
		return synchronizer.Transcription{}, fmt.Errorf("whisperx: create output dir: %w", err)
	}
	defer os.RemoveAll(outputDir)

	if err := s.run(ctx, Launcher, s.buildArgs(clipPath, outputDir, prompt)...); err != nil {
		if ctx.Err() != nil {
			return synchronizer.Transcription{}, ctx.Err()
		}
		return synchronizer.Transcription{}, services.Wrap(services.ErrExternalTool, "whisperx", "transcribe", filepath.Base(clipPath), err)
	}

	base := strings.TrimSuffix(filepath.Base(clipPath), filepath.Ext(clipPath))
	segments, err := LoadSegments(filepath.Join(outputDir, base+".json"))
	if err != nil {
		return synchronizer.Transcription{}, services.Wrap(services.ErrExternalTool, "whisperx", "read output", filepath.Base(clipPath), err)
	}
	return ToTranscription(segments), nil
}

// buildArgs lays out the uvx command line: index flags, the package, the
// source clip, then WhisperX options.
func (s *Service) buildArgs(source, outputDir, prompt string) []string {
	index, device := s.cfg.deviceArgs()
	args := append([]string{}, index...)
	args = append(args, "whisperx", source, "--model", s.Model(), "--output_dir", outputDir)
	args = append(args, decodeArgs...)
	if prompt = strings.TrimSpace(prompt); prompt != "" {
		args = append(args, "--initial_prompt", prompt)
	}
	if lang := strings.ToLower(strings.TrimSpace(s.cfg.Language)); lang != "" {
		args = append(args, "--language", lang)
	}
	return append(args, device...)
}

// Word represents a single word with timing from WhisperX output. Start and
// End are absent for tokens the aligner could not place.
type Word struct {
	Word  string   `json:"word"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
}

// Segment represents a transcribed segment from WhisperX JSON output.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words"`
}

type payload struct {
	Segments []Segment `json:"segments"`
}

// LoadSegments loads segments from a WhisperX JSON file.
func LoadSegments(jsonPath string) ([]Segment, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse whisperx json: %w", err)
	}
	return p.Segments, nil
}

// ToTranscription joins segment texts and flattens their words. A word
// without timings starts at the previous word's end (or its segment start)
// and has zero length.
func ToTranscription(segments []Segment) synchronizer.Transcription {
	var (
		texts []string
		words []synchronizer.SyncedText
	)
	for _, seg := range segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			texts = append(texts, text)
		}
		cursor := seg.Start
		if n := len(words); n > 0 {
			cursor = max(cursor, words[n-1].End)
		}
		for _, w := range seg.Words {
			text := strings.TrimSpace(w.Word)
			if text == "" {
				continue
			}
			start := cursor
			if w.Start != nil {
				start = *w.Start
			}
			end := start
			if w.End != nil {
				end = max(*w.End, start)
			}
			words = append(words, synchronizer.SyncedText{Text: text, Start: start, End: end})
			cursor = end
		}
	}
	return synchronizer.Transcription{Text: strings.Join(texts, " "), Words: words}
}
