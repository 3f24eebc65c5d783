// Package language normalizes the language settings handed to yt-dlp and the
// speech-to-text providers. Both expect ISO 639-1 codes, while users tend to
// write "eng" or "English".
package language
