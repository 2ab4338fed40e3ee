// Package domain defines the core business entities for Orbit.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A submitted project document and its lifecycle state
//   - Chunk: A semantically coherent span of document text
//   - RequirementGraph: One immutable version of the interpreted scope
//   - ValidationReport: Issues and confidence for one graph version
//   - ExportArtifact: A checksummed projection of one graph version
//   - ExampleRecord: One (input, output) pair in the retrieval corpus
//
// Graph entities carry content-addressed identifiers (see identity.go)
// so identical input reproduces identical IDs across runs; that is the
// foundation of the pipeline's repeatability guarantees.
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
