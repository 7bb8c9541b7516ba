// Package file provides the file-backed configuration store.
//
// Configuration lives in a TOML file (by default ~/.docsync/config.toml).
// Nested tables are flattened into dot keys such as "search.host".
// Selected environment variables override file values without being
// persisted, and Watch reloads the file when it changes on disk.
package file
