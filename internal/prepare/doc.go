// Package prepare runs the song preparation job: it loads lyrics, captions
// and audio, synchronizes the lyrics to the audio, assembles verse and line
// rows, and stores them.
//
// Each step runs as a named stage with its own log context. Fetch steps are
// retried on transient failures; anything else aborts the job before the
// store is touched, so a song is either fully saved or left as it was.
package prepare
