// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - LiteratureSource: Searches and fetches records (PubMed E-utilities)
//   - EmbeddingService: Produces fixed-length vectors from text
//   - VectorIndex: Stores points and answers nearest-neighbour queries (Milvus, Qdrant, memory)
//   - WatermarkStore: Persists the single ingestion watermark (file, SQLite, bbolt, memory)
//   - PostProcessor / PostProcessorPipeline: Turns a record into chunks
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Similarity: Semantic similarity for the chunker. Without it, chunking uses the greedy fallback.
//   - Locker: Cross-process ingestion lock (Redis). Without it, single-flight is in-process only.
//   - EventPublisher: Ingestion events (Kafka). Without it, no events are emitted.
//   - SchedulerStore: Scheduler state. Required only when the scheduler runs.
//   - ConfigStore: Key/value access to the config file for `bioorbit config`.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or postprocessor package
package driven
