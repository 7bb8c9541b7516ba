// Package domain defines the core business entities for docsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Record: The canonical, mutable entry owned by the record store
//   - Attachment: A media file referenced by a record
//   - SearchDocument: The flattened projection sent to the search index
//   - PublishDirective: The typed publish/unpublish intent of an update
//   - IndexSettings: The attribute and ranking configuration of the index
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
