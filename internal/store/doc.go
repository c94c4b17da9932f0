// Package store persists phrases, their languages and application settings in
// a local SQLite database. Every operation opens its own connection and closes
// it before returning; the schema is versioned by embedded goose migrations.
package store
