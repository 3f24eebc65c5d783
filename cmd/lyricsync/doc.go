// Package main hosts the lyricsync CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration and logging once, then hands
// off to the internal packages: sync runs the prepare job, show and list read
// the song store, doctor renders the preflight checks, and config scaffolds
// or validates the TOML file.
//
// Keep this package thin. New behavior belongs in internal packages first and
// is surfaced here as a command or flag.
package main
