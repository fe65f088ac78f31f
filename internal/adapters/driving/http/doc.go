// Package http exposes bioorbit over a JSON HTTP API built on gin.
//
// Routes:
//
//	POST /ingest        run ingestion (alias: POST /update-db)
//	POST /search        search with a JSON body
//	GET  /search        search with query parameters
//	GET  /watermark     current ingestion watermark
//	GET  /healthz       liveness
//
// When a JWT secret is configured, the ingestion routes require an HS256
// bearer token.
package http
