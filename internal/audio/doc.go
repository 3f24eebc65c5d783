// Package audio decodes song audio and cuts it into per-segment clips.
//
// Tracks are PCM WAV files held fully in memory. Normalize converts any
// input ffmpeg understands into the mono 16 kHz 16-bit layout the
// speech-to-text backends expect.
package audio
