// Package sqlite persists records, attachments and scheduler state in a
// single SQLite database.
//
// It uses modernc.org/sqlite, a pure Go driver, so the binary builds without
// CGO. Business fields are stored as a JSON object keyed by field name; the
// SF_Number is duplicated into its own column, unique when non-empty.
//
// # Schema
//
// The schema is managed by versioned NNN_name.up.sql migrations embedded from
// the migrations/ directory. Each migration runs in its own transaction and
// records its version in schema_migrations.
//
// # Data Location
//
// By default the database is stored at ~/.docsync/data/docsync.db.
package sqlite
