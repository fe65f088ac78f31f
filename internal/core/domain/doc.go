// Package domain defines the core business entities for bioorbit.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SourceRecord: A literature record fetched from the upstream source
//   - Chunk: A bounded passage derived from a record's abstract
//   - Modality: A named embedding space (text, protein, molecule)
//   - IngestedPoint: The persisted retrieval unit in the vector index
//   - IngestReport: The structured outcome of one ingestion run
//   - SearchRequest / SearchResult: The retrieval contract
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
