package prepare

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"lyricsync/internal/audio"
	"lyricsync/internal/logging"
	"lyricsync/internal/rows"
	"lyricsync/internal/services"
	"lyricsync/internal/services/ytdlp"
	"lyricsync/internal/store"
	"lyricsync/internal/synchronizer"
	"lyricsync/internal/transcript"
	"lyricsync/internal/workspace"
)

// Stage names used in logs and error context.
const (
	StageLyrics      = "lyrics"
	StageCaptions    = "captions"
	StageAudio       = "audio"
	StageSynchronize = "synchronize"
	StageRows        = "rows"
	StageStore       = "store"
)

const defaultRetryDelay = 2 * time.Second

// Request describes one song to prepare.
type Request struct {
	Title  string `json:"title" validate:"required"`
	Artist string `json:"artist" validate:"required"`
	// Video is a YouTube video id or URL.
	Video string `json:"video" validate:"required"`
	// LyricsFile replaces the lyrics provider with a local text file.
	LyricsFile string `json:"lyrics_file,omitempty"`
	// CaptionsFile replaces the YouTube captions with a local json3, vtt or
	// JSON entry file.
	CaptionsFile string `json:"captions_file,omitempty"`
	Force        bool   `json:"force,omitempty"`
}

// Result is the outcome of a Prepare call.
type Result struct {
	Song   *store.Song  `json:"song"`
	Reused bool         `json:"reused"`
	Verses []rows.Verse `json:"verses"`
	Lines  []rows.Line  `json:"lines"`
}

// Runner prepares songs: lyrics, captions and audio are fetched, the lyrics
// are synchronized to the audio, and the resulting rows are stored.
type Runner struct {
	Lyrics     LyricsSource
	Captions   transcript.CaptionFetcher
	Audio      AudioFetcher
	Normalizer AudioNormalizer
	Sync       *synchronizer.Synchronizer
	Store      *store.Store
	WorkDir    string
	Rows       rows.Options
	// FetchAttempts bounds how often a retryable fetch step is tried.
	FetchAttempts int
	RetryDelay    time.Duration
	Logger        *slog.Logger
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Prepare runs the whole job for req. An existing song with the same title
// and artist is returned as is unless req.Force is set, in which case it is
// rebuilt under the same id.
func (r *Runner) Prepare(ctx context.Context, req Request) (*Result, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Artist = strings.TrimSpace(req.Artist)
	req.Video = strings.TrimSpace(req.Video)
	if err := validate.Struct(req); err != nil {
		return nil, services.Wrap(services.ErrValidation, "prepare", "validate request", "", err)
	}
	if r.Store == nil || r.Sync == nil {
		return nil, services.Wrap(services.ErrConfiguration, "prepare", "init", "runner is missing its store or synchronizer", nil)
	}
	videoID, err := ytdlp.VideoID(req.Video)
	if err != nil {
		return nil, err
	}

	ctx = services.WithRequestID(ctx, uuid.NewString())
	logger := logging.NewComponentLogger(r.Logger, "prepare")

	existing, err := r.Store.FindSong(ctx, req.Title, req.Artist)
	if err != nil {
		return nil, err
	}
	if existing != nil && !req.Force {
		verses, lines, err := r.Store.LoadRows(ctx, existing.ID)
		if err != nil {
			return nil, err
		}
		logging.WithContext(services.WithSongID(ctx, existing.ID), logger).Info("song already prepared; reusing stored rows",
			logging.Args(logging.DecisionAttrs("prepare_reuse", "reused", "song exists and force not set")...)...)
		return &Result{Song: existing, Reused: true, Verses: verses, Lines: lines}, nil
	}

	songID := uuid.NewString()
	if existing != nil {
		songID = existing.ID
	}
	ctx = services.WithSongID(ctx, songID)
	base := logger
	logger = logging.WithContext(ctx, base)
	logger.Info("song preparation started",
		logging.String(logging.FieldEventType, "prepare_start"),
		logging.String("title", req.Title),
		logging.String("artist", req.Artist),
		logging.String("video_id", videoID),
	)

	ws, err := workspace.Acquire(r.WorkDir, songID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := ws.Clean(); err != nil {
			logger.Warn("workspace cleanup failed", logging.Error(err))
		}
		if err := ws.Release(); err != nil {
			logger.Warn("workspace lock release failed", logging.Error(err))
		}
	}()

	job := &job{runner: r, req: req, videoID: videoID, songID: songID, ws: ws, logger: base}
	result, err := job.run(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("song preparation completed",
		logging.String(logging.FieldEventType, "prepare_complete"),
		logging.Int("verses", len(result.Verses)),
		logging.Int("lines", len(result.Lines)),
	)
	return result, nil
}

type job struct {
	runner  *Runner
	req     Request
	videoID string
	songID  string
	ws      *workspace.Workspace
	logger  *slog.Logger

	lyrics    *Lyrics
	subtitles []synchronizer.SyncedText
	track     *audio.Track
	synced    []synchronizer.WordSegment
	verses    []rows.Verse
	lines     []rows.Line
}

func (j *job) run(ctx context.Context) (*Result, error) {
	stages := []struct {
		name string
		fn   func(context.Context) error
	}{
		{StageLyrics, j.fetchLyrics},
		{StageCaptions, j.fetchCaptions},
		{StageAudio, j.fetchAudio},
		{StageSynchronize, j.synchronize},
		{StageRows, j.assemble},
		{StageStore, j.save},
	}
	for _, stage := range stages {
		if err := j.runStage(ctx, stage.name, stage.fn); err != nil {
			return nil, err
		}
	}
	song, err := j.runner.Store.GetSong(ctx, j.songID)
	if err != nil {
		return nil, err
	}
	return &Result{Song: song, Verses: j.verses, Lines: j.lines}, nil
}

func (j *job) runStage(ctx context.Context, name string, fn func(context.Context) error) error {
	stageCtx := services.WithStage(ctx, name)
	logger := logging.WithContext(stageCtx, j.logger)
	started := time.Now()
	logger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))

	if err := fn(stageCtx); err != nil {
		logging.ErrorWithContext(logger, "stage failed", "stage_failure",
			logging.String(logging.FieldErrorHint, services.Hint(err)),
			logging.Error(err),
		)
		return err
	}
	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

// retry runs fn until it succeeds, fails with a non-retryable error, or the
// attempt budget is spent.
func (j *job) retry(ctx context.Context, op string, fn func() error) error {
	attempts := max(j.runner.FetchAttempts, 1)
	delay := j.runner.RetryDelay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !services.IsRetryable(err) || attempt >= attempts {
			return err
		}
		logging.WarnWithContext(logging.WithContext(ctx, j.logger), "fetch failed; retrying", "fetch_retry",
			logging.String("operation", op),
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", attempts),
			logging.Error(err),
			logging.String(logging.FieldImpact, "preparation is delayed"),
			logging.String(logging.FieldErrorHint, services.Hint(err)),
		)
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}
	}
}

func (j *job) fetchLyrics(ctx context.Context) error {
	var source LyricsSource = j.runner.Lyrics
	if j.req.LyricsFile != "" {
		source = FileLyrics{Path: j.req.LyricsFile}
	}
	if source == nil {
		return services.Wrap(services.ErrConfiguration, StageLyrics, "fetch", "no lyrics source configured", nil)
	}
	return j.retry(ctx, "lyrics", func() error {
		result, err := source.FetchLyrics(ctx, j.req.Title, j.req.Artist)
		if err != nil {
			return err
		}
		if err := result.Document.Validate(); err != nil {
			return services.Wrap(services.ErrValidation, StageLyrics, "validate", "unusable lyrics", err)
		}
		j.lyrics = result
		logging.WithContext(ctx, j.logger).Info("lyrics loaded",
			logging.Int("verses", len(result.Document.Verses)),
			logging.Int("lines", len(result.Document.Lines)),
			logging.String("url", result.URL),
		)
		return nil
	})
}

func (j *job) fetchCaptions(ctx context.Context) error {
	var source transcript.Source
	switch {
	case j.req.CaptionsFile != "":
		source = transcript.FileSource{Path: j.req.CaptionsFile}
	case j.runner.Captions != nil:
		source = transcript.YouTubeSource{Fetcher: j.runner.Captions, Dir: j.ws.CaptionsDir()}
	default:
		return services.Wrap(services.ErrConfiguration, StageCaptions, "fetch", "no caption source configured", nil)
	}
	return j.retry(ctx, "captions", func() error {
		entries, err := source.Fetch(ctx, j.videoID)
		if err != nil {
			return err
		}
		j.subtitles = transcript.Normalize(entries)
		if len(j.subtitles) == 0 {
			logging.WarnWithContext(logging.WithContext(ctx, j.logger), "caption track has no usable text", "empty_captions",
				logging.Int("entries", len(entries)),
				logging.String(logging.FieldImpact, "every lyric line will be bridged"),
				logging.String(logging.FieldErrorHint, "check that the video has automatic captions"),
			)
		}
		return nil
	})
}

func (j *job) fetchAudio(ctx context.Context) error {
	if j.runner.Audio == nil || j.runner.Normalizer == nil {
		return services.Wrap(services.ErrConfiguration, StageAudio, "fetch", "no audio downloader configured", nil)
	}
	if err := j.retry(ctx, "audio", func() error {
		return j.runner.Audio.DownloadAudio(ctx, j.videoID, j.ws.SourceAudio())
	}); err != nil {
		return err
	}
	if err := j.runner.Normalizer.Normalize(ctx, j.ws.SourceAudio(), j.ws.Audio()); err != nil {
		return services.Wrap(services.ErrExternalTool, StageAudio, "normalize", "", err)
	}
	track, err := audio.Open(j.ws.Audio())
	if err != nil {
		return services.Wrap(services.ErrValidation, StageAudio, "decode", j.ws.Audio(), err)
	}
	j.track = track
	logging.WithContext(ctx, j.logger).Info("audio ready",
		logging.Float64("duration_seconds", track.Duration()),
		logging.Int("sample_rate", track.SampleRate),
	)
	return nil
}

func (j *job) synchronize(ctx context.Context) error {
	synced, err := j.runner.Sync.Run(ctx, j.lyrics.Document, j.subtitles, j.track, j.track.Duration())
	if err != nil {
		return err
	}
	j.synced = synced
	return nil
}

func (j *job) assemble(context.Context) error {
	verses, lines, err := rows.Assemble(j.songID, j.lyrics.Document, j.durationMS(), j.synced, j.runner.Rows)
	if err != nil {
		return err
	}
	j.verses, j.lines = verses, lines
	return nil
}

func (j *job) save(ctx context.Context) error {
	song := store.Song{
		ID:          j.songID,
		Title:       j.req.Title,
		Artist:      j.req.Artist,
		VideoID:     j.videoID,
		DurationMS:  j.durationMS(),
		GeniusURL:   j.lyrics.URL,
		Description: j.lyrics.Description,
	}
	if err := j.runner.Store.SaveSong(ctx, song, j.verses, j.lines); err != nil {
		return fmt.Errorf("save song %s: %w", j.songID, err)
	}
	return nil
}

func (j *job) durationMS() int64 {
	return rows.ToMillisRange(0, j.track.Duration()).EndMS
}
