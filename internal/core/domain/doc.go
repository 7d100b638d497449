// Package domain defines the core business entities for the knowledge store.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: One imported source unit (a transcript or file)
//   - Chunk: A bounded text fragment derived from a document
//   - Message: A role-tagged text block extracted from a source
//   - SourceRecord: An ordered message sequence extracted from one source
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
