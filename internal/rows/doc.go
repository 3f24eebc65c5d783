// Package rows turns synchronized lyric segments into the verse and line
// records that are persisted and displayed.
//
// Times are converted to whole milliseconds with the start floored and the
// end ceiled, so a row never starts later or ends earlier than its segment.
// Gaps between verses longer than the configured threshold become
// instrumental verses with no lines.
package rows
