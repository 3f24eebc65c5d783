// Package logging assembles the slog loggers used across lyricsync.
//
// It owns the console and JSON handlers, level parsing and output routing,
// and context helpers that tag records with the song, stage and correlation
// id stamped by package services. A no-op logger is provided for tests and
// for components constructed without one.
package logging
