package pubmed

import (
	"errors"
	"fmt"
)

// ErrRateLimited indicates NCBI rejected a request for exceeding its limit.
var ErrRateLimited = errors.New("pubmed: rate limit exceeded")

// APIError is a non-success E-utilities response.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pubmed: %s returned %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// IsRateLimited reports whether err is a rate-limit rejection.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 429
}
