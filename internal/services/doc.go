// Package services defines shared utilities consumed by the preparation job
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp song IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (retry, abort, report) with errors.Is.
//
// Subpackages hold the clients for each external collaborator: the LLM
// matcher, speech-to-text providers, the lyrics provider, and yt-dlp.
package services
