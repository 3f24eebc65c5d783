// Package transcript reads timed caption tracks and turns them into the
// cleaned subtitle segments consumed by the synchronizer.
//
// Three on-disk formats are understood: YouTube json3 (what yt-dlp writes
// for auto-captions), WebVTT, and a plain JSON array of
// {"text","start","duration"} entries. Sources hide where a track comes
// from; YouTubeSource downloads captions through yt-dlp and FileSource reads
// a local file.
package transcript
