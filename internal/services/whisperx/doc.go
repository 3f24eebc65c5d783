// Package whisperx runs WhisperX through uvx to transcribe short audio clips
// with word-level timestamps.
//
// Service.Transcribe satisfies the synchronizer's Transcriber: it passes the
// lyric hint as --initial_prompt, asks for JSON output, and flattens the
// aligned words of every segment into clip-relative timings. Words WhisperX
// could not align (digits, symbols) inherit the previous word's end time.
package whisperx
