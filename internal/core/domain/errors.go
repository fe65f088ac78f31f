package domain

import "errors"

// Domain errors represent business logic failures.
// Services wrap collaborator failures with one of these so callers can
// classify them with errors.Is.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed request parameters.
	// It is returned before any I/O takes place.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstreamFetch indicates the literature source was unreachable
	// or returned a malformed response.
	ErrUpstreamFetch = errors.New("upstream fetch failed")

	// ErrEmbedding indicates the embedding model failed or returned
	// vectors of the wrong shape.
	ErrEmbedding = errors.New("embedding failed")

	// ErrIndex indicates the vector index was unreachable or rejected a request.
	ErrIndex = errors.New("vector index failed")

	// ErrIngestInProgress indicates another ingestion run holds the lock.
	ErrIngestInProgress = errors.New("ingestion in progress")

	// ErrState indicates the watermark could not be read or written.
	ErrState = errors.New("state store failed")
)
