package prepare

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lyricsync/internal/config"
	"lyricsync/internal/lyrics"
	"lyricsync/internal/services"
	"lyricsync/internal/synchronizer"
	"lyricsync/internal/testsupport"
)

const videoID = "dQw4w9WgXcQ"

const captionsJSON3 = `{"events": [
  {"tStartMs": 500, "dDurationMs": 1000, "segs": [{"utf8": "hello world"}]},
  {"tStartMs": 2000, "dDurationMs": 1000, "segs": [{"utf8": "goodbye moon"}]},
  {"tStartMs": 3500, "dDurationMs": 1500, "segs": [{"utf8": "sing it loud"}]}
]}`

const lyricText = "[Verse 1]\nHello world\nGoodbye moon\n\n[Chorus]\nSing it loud\n"

type fakeLyrics struct {
	calls int
	errs  []error
}

func (f *fakeLyrics) FetchLyrics(context.Context, string, string) (*Lyrics, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	return &Lyrics{Document: lyrics.ParseText(lyricText), URL: "https://genius.com/song"}, nil
}

type fakeCaptions struct {
	calls int
}

func (f *fakeCaptions) FetchCaptions(_ context.Context, id, dir string) (string, error) {
	f.calls++
	path := filepath.Join(dir, id+".en.json3")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return path, os.WriteFile(path, []byte(captionsJSON3), 0o644)
}

type fakeAudio struct {
	t     *testing.T
	calls int
}

func (f *fakeAudio) DownloadAudio(_ context.Context, _ string, dest string) error {
	f.calls++
	testsupport.WriteWAV(f.t, dest, 6, 16000)
	return nil
}

type copyNormalizer struct{}

func (copyNormalizer) Normalize(_ context.Context, source, dest string) error {
	data, err := os.ReadFile(source)
	if err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

// echoTranscriber returns the prompted lyric as the transcript, one word per
// 100ms from the start of the clip.
type echoTranscriber struct{}

func (echoTranscriber) Transcribe(_ context.Context, _ string, prompt string) (synchronizer.Transcription, error) {
	text := strings.TrimSuffix(strings.TrimPrefix(prompt, `Use this actual lyric AS-IS: "`), `"`)
	out := synchronizer.Transcription{Text: text}
	for i, word := range strings.Fields(text) {
		start := float64(i) / 10
		out.Words = append(out.Words, synchronizer.SyncedText{Text: word, Start: start, End: start + 0.1})
	}
	return out, nil
}

type fixture struct {
	runner   *Runner
	lyrics   *fakeLyrics
	captions *fakeCaptions
	audio    *fakeAudio
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithSTTAttempts(1, 1))
	cfg.LLM.APIKey = ""
	st := testsupport.MustOpenStore(t, cfg)

	f := &fixture{lyrics: &fakeLyrics{}, captions: &fakeCaptions{}, audio: &fakeAudio{t: t}}
	f.runner = &Runner{
		Lyrics:        f.lyrics,
		Captions:      f.captions,
		Audio:         f.audio,
		Normalizer:    copyNormalizer{},
		Sync:          NewSynchronizer(cfg, echoTranscriber{}, nil),
		Store:         st,
		WorkDir:       cfg.Paths.WorkDir,
		Rows:          RowOptions(cfg),
		FetchAttempts: 3,
	}
	return f
}

func request() Request {
	return Request{Title: "Hello", Artist: "Someone", Video: "https://youtu.be/" + videoID}
}

func TestPrepareBuildsAndStoresRows(t *testing.T) {
	f := newFixture(t)
	result, err := f.runner.Prepare(context.Background(), request())
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if result.Reused {
		t.Fatal("expected a fresh preparation")
	}
	if result.Song == nil || result.Song.VideoID != videoID || result.Song.DurationMS != 6000 || result.Song.GeniusURL != "https://genius.com/song" {
		t.Fatalf("unexpected song %#v", result.Song)
	}
	if len(result.Lines) != 3 || len(result.Verses) != 2 {
		t.Fatalf("expected 3 lines in 2 verses, got %d/%d", len(result.Lines), len(result.Verses))
	}
	first := result.Lines[0]
	if first.StartMS != 500 || first.EndMS != 1500 || strings.Join(first.Tokens, " ") != "Hello world" {
		t.Fatalf("unexpected first line %#v", first)
	}
	if result.Lines[2].LineNumber != 0 || result.Verses[1].Title != "Chorus" || result.Verses[1].StartMS != 3500 {
		t.Fatalf("unexpected chorus rows %#v %#v", result.Lines[2], result.Verses[1])
	}

	_, lines, err := f.runner.Store.LoadRows(context.Background(), result.Song.ID)
	if err != nil || len(lines) != 3 {
		t.Fatalf("stored lines = %d (%v)", len(lines), err)
	}
}

func TestPrepareReusesExistingSong(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first, err := f.runner.Prepare(ctx, request())
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	again, err := f.runner.Prepare(ctx, request())
	if err != nil {
		t.Fatalf("Prepare again: %v", err)
	}
	if !again.Reused || again.Song.ID != first.Song.ID || len(again.Lines) != 3 {
		t.Fatalf("expected stored song reused, got %#v", again)
	}
	if f.lyrics.calls != 1 || f.captions.calls != 1 || f.audio.calls != 1 {
		t.Fatalf("expected no refetch, got lyrics=%d captions=%d audio=%d", f.lyrics.calls, f.captions.calls, f.audio.calls)
	}

	req := request()
	req.Force = true
	forced, err := f.runner.Prepare(ctx, req)
	if err != nil {
		t.Fatalf("Prepare forced: %v", err)
	}
	if forced.Reused || forced.Song.ID != first.Song.ID || f.lyrics.calls != 2 {
		t.Fatalf("expected rebuild under same id, got %#v (lyrics calls %d)", forced.Song, f.lyrics.calls)
	}
}

func TestPrepareRetriesTransientFetches(t *testing.T) {
	f := newFixture(t)
	transient := services.Wrap(services.ErrTransient, "genius", "request", "http 503", nil)
	f.lyrics.errs = []error{transient, transient}

	if _, err := f.runner.Prepare(context.Background(), request()); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if f.lyrics.calls != 3 {
		t.Fatalf("expected 3 lyric attempts, got %d", f.lyrics.calls)
	}
}

func TestPrepareStopsOnPermanentFailure(t *testing.T) {
	f := newFixture(t)
	f.lyrics.errs = []error{services.Wrap(services.ErrNotFound, "genius", "search", "no song", nil)}

	_, err := f.runner.Prepare(context.Background(), request())
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if f.lyrics.calls != 1 || f.captions.calls != 0 {
		t.Fatalf("expected a single attempt and no later stages, got lyrics=%d captions=%d", f.lyrics.calls, f.captions.calls)
	}
	songs, err := f.runner.Store.ListSongs(context.Background())
	if err != nil || len(songs) != 0 {
		t.Fatalf("expected nothing stored, got %d (%v)", len(songs), err)
	}
}

func TestPrepareUsesLocalFiles(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	lyricsPath := filepath.Join(dir, "lyrics.txt")
	captionsPath := filepath.Join(dir, "captions.json3")
	if err := os.WriteFile(lyricsPath, []byte(lyricText), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(captionsPath, []byte(captionsJSON3), 0o644); err != nil {
		t.Fatal(err)
	}

	req := request()
	req.LyricsFile = lyricsPath
	req.CaptionsFile = captionsPath
	result, err := f.runner.Prepare(context.Background(), req)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if len(result.Lines) != 3 || f.lyrics.calls != 0 || f.captions.calls != 0 {
		t.Fatalf("expected local sources used, got lines=%d lyrics=%d captions=%d", len(result.Lines), f.lyrics.calls, f.captions.calls)
	}
}

func TestPrepareValidatesRequest(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		req  Request
	}{
		{name: "missing title", req: Request{Artist: "a", Video: videoID}},
		{name: "blank artist", req: Request{Title: "t", Artist: " ", Video: videoID}},
		{name: "bad video", req: Request{Title: "t", Artist: "a", Video: "https://vimeo.com/1"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.runner.Prepare(context.Background(), tc.req); !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestNewFromConfigSelectsProvider(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	runner := NewFromConfig(cfg, st, nil)
	if runner.Sync == nil || runner.Captions == nil || runner.FetchAttempts != cfg.Prepare.FetchAttempts {
		t.Fatalf("unexpected runner %#v", runner)
	}
	if _, ok := NewTranscriber(cfg).(interface{ Model() string }); !ok {
		t.Fatal("expected transcriber to report its model")
	}

	cfg.STT.Provider = config.STTProviderOpenAI
	if got := NewTranscriber(cfg); got == nil {
		t.Fatal("expected openai transcriber")
	}
}
