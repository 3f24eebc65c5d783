// Package lyrics models a song's ground-truth lyric document.
//
// Verses and lines live in two flat ordered slices; each line carries the
// index of its verse. Parsing accepts the "[Verse title]" header convention
// used by lyric sites and cleans each line before it is stored.
package lyrics
