// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The ingestion pipeline (fetch, reconcile, chunk, embed, upsert, advance the
// watermark) and the retrieval engine (embed, over-fetch, filter, rerank) live
// here. Services are pure Go with no CGO or external dependencies.
package services
