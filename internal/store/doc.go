// Package store persists synchronized songs in SQLite.
//
// A song owns its verse and line rows; SaveSong replaces all of them in one
// transaction so readers never see a half-written song. Token lists and word
// timestamps are stored as JSON text columns.
//
// The schema version lives in PRAGMA user_version. A database from another
// version is rejected with ErrSchemaMismatch rather than migrated.
package store
