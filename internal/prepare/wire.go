package prepare

import (
	"log/slog"

	"lyricsync/internal/audio"
	"lyricsync/internal/config"
	"lyricsync/internal/rows"
	"lyricsync/internal/services/genius"
	"lyricsync/internal/services/llm"
	"lyricsync/internal/services/openaistt"
	"lyricsync/internal/services/whisperx"
	"lyricsync/internal/services/ytdlp"
	"lyricsync/internal/store"
	"lyricsync/internal/synchronizer"
)

// NewTranscriber returns the speech-to-text backend selected by
// cfg.STT.Provider.
func NewTranscriber(cfg *config.Config) synchronizer.Transcriber {
	if cfg.STT.Provider == config.STTProviderOpenAI {
		return openaistt.NewClient(openaistt.Config{
			APIKey:         cfg.STT.APIKey,
			BaseURL:        cfg.STT.BaseURL,
			Model:          cfg.STT.Model,
			Language:       cfg.STT.Language,
			TimeoutSeconds: cfg.STT.TimeoutSeconds,
		})
	}
	return whisperx.NewService(whisperx.Config{
		Model:       cfg.STT.Model,
		Language:    cfg.STT.Language,
		CUDAEnabled: cfg.STT.CUDA,
	})
}

// NewSynchronizer wires the line and word aligners from cfg. The LLM matcher
// is only attached when an API key is configured; without it unmatched lines
// become bridge segments directly.
func NewSynchronizer(cfg *config.Config, transcriber synchronizer.Transcriber, logger *slog.Logger) *synchronizer.Synchronizer {
	var matcher synchronizer.Matcher
	if cfg.LLM.APIKey != "" {
		matcher = llm.NewClient(llm.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			Referer:        cfg.LLM.Referer,
			Title:          cfg.LLM.Title,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		})
	}
	lines := synchronizer.NewLineAligner(matcher, logger,
		synchronizer.WithSimilarityThreshold(cfg.Alignment.SimilarityThreshold),
	)
	words := synchronizer.NewWordAligner(transcriber, logger,
		synchronizer.WithAttempts(cfg.STT.MinAttempts, cfg.STT.MaxAttempts),
		synchronizer.WithTargetSimilarity(cfg.STT.TargetSimilarity),
	)
	return synchronizer.New(lines, words, logger)
}

// RowOptions maps the [rows] config section.
func RowOptions(cfg *config.Config) rows.Options {
	return rows.Options{
		InsertInstrumental: cfg.Rows.InsertInstrumental,
		ThresholdMS:        cfg.Rows.InstrumentalThresholdMS,
		IntroTitle:         cfg.Rows.IntroTitle,
		InstrumentalTitle:  cfg.Rows.InstrumentalTitle,
		OutroTitle:         cfg.Rows.OutroTitle,
	}
}

// NewFromConfig builds a Runner backed by Genius, yt-dlp, ffmpeg and the
// configured speech-to-text provider.
func NewFromConfig(cfg *config.Config, st *store.Store, logger *slog.Logger) *Runner {
	yt := ytdlp.NewClient(ytdlp.Config{
		Binary:   cfg.YouTube.YtdlpBinary,
		Language: cfg.YouTube.SubtitleLanguage,
	})
	return &Runner{
		Lyrics: GeniusLyrics{Client: genius.NewClient(genius.Config{
			AccessToken: cfg.Genius.AccessToken,
			BaseURL:     cfg.Genius.BaseURL,
			WebURL:      cfg.Genius.WebURL,
		}, nil)},
		Captions:      yt,
		Audio:         yt,
		Normalizer:    audio.NewNormalizer(""),
		Sync:          NewSynchronizer(cfg, NewTranscriber(cfg), logger),
		Store:         st,
		WorkDir:       cfg.Paths.WorkDir,
		Rows:          RowOptions(cfg),
		FetchAttempts: cfg.Prepare.FetchAttempts,
		RetryDelay:    defaultRetryDelay,
		Logger:        logger,
	}
}
