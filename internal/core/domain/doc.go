// Package domain defines the core business entities for dossier.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A corpus file with its full text
//   - Chunk: An overlapping slice of a document with its embedding
//   - SearchResult: A ranked chunk produced per query
//   - Answer: The outcome of a question, either answered or without context
//   - Settings: Immutable process-wide configuration
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
