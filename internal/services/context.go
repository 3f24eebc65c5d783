package services

import "context"

type contextKey int

const (
	songIDKey contextKey = iota
	stageKey
	requestIDKey
)

func withValue(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func lookup(ctx context.Context, key contextKey) (string, bool) {
	value, _ := ctx.Value(key).(string)
	return value, value != ""
}

// WithSongID tags ctx with the song being prepared. Empty ids are ignored.
func WithSongID(ctx context.Context, id string) context.Context {
	return withValue(ctx, songIDKey, id)
}

// SongIDFromContext reports the song id set by WithSongID.
func SongIDFromContext(ctx context.Context) (string, bool) { return lookup(ctx, songIDKey) }

// WithStage tags ctx with the running preparation stage.
func WithStage(ctx context.Context, stage string) context.Context {
	return withValue(ctx, stageKey, stage)
}

// StageFromContext reports the stage set by WithStage.
func StageFromContext(ctx context.Context) (string, bool) { return lookup(ctx, stageKey) }

// WithRequestID tags ctx with the id shared by every log line of one sync run.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withValue(ctx, requestIDKey, id)
}

// RequestIDFromContext reports the id set by WithRequestID.
func RequestIDFromContext(ctx context.Context) (string, bool) { return lookup(ctx, requestIDKey) }
