// Package storage persists scraped resort records.
//
// Records are keyed by slug: an upsert replaces every scraped field of an
// existing record but keeps its ID and creation time. SQLStore keeps records in
// a SQLite database through bun; FileStore keeps them in a single JSON snapshot
// file and suits the CLI when no database is wanted. The default data location
// is ~/.local/share/ski-spot/.
package storage
