// Package deps locates the external binaries lyricsync runs: ffmpeg,
// yt-dlp and uvx (for WhisperX).
package deps
