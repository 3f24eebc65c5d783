package config

const (
	defaultConfigPath        = "~/.config/lyricsync/config.toml"
	projectConfigName        = "lyricsync.toml"
	defaultDataDir           = "~/.local/share/lyricsync"
	defaultDatabaseName      = "lyricsync.db"
	defaultLLMBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel          = "google/gemini-3-flash-preview"
	defaultLLMReferer        = "https://github.com/lyricsync/lyricsync"
	defaultLLMTitle          = "lyricsync line matcher"
	defaultLLMTimeout        = 60
	defaultSTTProvider       = STTProviderWhisperX
	defaultWhisperXModel     = "large-v3"
	defaultOpenAISTTModel    = "whisper-1"
	defaultOpenAISTTBaseURL  = "https://api.openai.com/v1"
	defaultSTTLanguage       = "en"
	defaultSTTTimeout        = 120
	defaultSTTMinAttempts    = 10
	defaultSTTMaxAttempts    = 20
	defaultTargetSimilarity  = 80
	defaultGeniusBaseURL     = "https://api.genius.com"
	defaultGeniusWebURL      = "https://genius.com"
	defaultYtdlpBinary       = "yt-dlp"
	defaultSubtitleLanguage  = "en"
	defaultSimilarityCutoff  = 40
	defaultInstrumentalGapMS = 5000
	defaultIntroTitle        = "Intro"
	defaultInstrumentalTitle = "Instrumental"
	defaultOutroTitle        = "Outro"
	defaultFetchAttempts     = 3
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Speech-to-text providers.
const (
	STTProviderWhisperX = "whisperx"
	STTProviderOpenAI   = "openai"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeout,
		},
		STT: STT{
			Provider:         defaultSTTProvider,
			Language:         defaultSTTLanguage,
			TimeoutSeconds:   defaultSTTTimeout,
			MinAttempts:      defaultSTTMinAttempts,
			MaxAttempts:      defaultSTTMaxAttempts,
			TargetSimilarity: defaultTargetSimilarity,
		},
		Genius: Genius{
			BaseURL: defaultGeniusBaseURL,
			WebURL:  defaultGeniusWebURL,
		},
		YouTube: YouTube{
			YtdlpBinary:      defaultYtdlpBinary,
			SubtitleLanguage: defaultSubtitleLanguage,
		},
		Alignment: Alignment{
			SimilarityThreshold: defaultSimilarityCutoff,
		},
		Rows: Rows{
			InsertInstrumental:      true,
			InstrumentalThresholdMS: defaultInstrumentalGapMS,
			IntroTitle:              defaultIntroTitle,
			InstrumentalTitle:       defaultInstrumentalTitle,
			OutroTitle:              defaultOutroTitle,
		},
		Prepare: Prepare{
			FetchAttempts: defaultFetchAttempts,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
