// Package synchronizer aligns ground-truth lyric lines with a song's audio.
//
// The pipeline runs in three passes over in-memory values:
//
//   - LineAligner walks the lyric lines in order and pairs each with a noisy
//     caption segment, a stitched pair of adjacent segments, an LLM-chosen
//     candidate, or a synthesized bridge segment.
//   - WordAligner slices the audio for every line-level segment, transcribes
//     it with word timestamps, and reconciles the transcribed words against
//     the known lyric tokens.
//   - SplitMultiline breaks segments that cover several lyric lines back
//     into one segment per line.
//
// Synchronizer.Run chains the passes and checks the output shape. Nothing in
// this package persists state between runs.
package synchronizer
