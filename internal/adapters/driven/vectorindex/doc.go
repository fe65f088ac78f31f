// Package vectorindex groups the remote driven.VectorIndex backends.
//
//   - milvus: gRPC via milvus-sdk-go, one float vector field per modality
//   - qdrant: REST, one named vector per modality
//
// The in-memory index lives in storage/memory.
package vectorindex
