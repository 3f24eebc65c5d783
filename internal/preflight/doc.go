// Package preflight provides readiness checks for the directories, binaries
// and remote services lyricsync depends on.
//
// The "lyricsync doctor" command renders every check; "lyricsync sync" runs
// the binary checks before downloading anything so a missing tool fails fast.
package preflight
