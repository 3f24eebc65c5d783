// Package config loads, normalizes, and validates lyricsync configuration.
//
// Configuration is TOML. Load searches an explicit path, then
// ~/.config/lyricsync/config.toml, then ./lyricsync.toml, and falls back to
// Default when no file exists. API keys fall back to OPENROUTER_API_KEY,
// OPENAI_API_KEY and GENIUS_ACCESS_TOKEN from the environment.
package config
