// Package pubmed implements driven.LiteratureSource over the NCBI
// E-utilities API.
//
// Search uses esearch (JSON) restricted by entry date; FetchDetails uses
// efetch (XML) in batches. Requests are throttled to the NCBI limits:
// 3 requests per second, or 10 with an API key.
package pubmed
