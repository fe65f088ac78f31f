package http

import (
	"errors"
	nethttp "net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
)

// Envelope statuses for non-ingest responses.
const (
	statusOK    = "ok"
	statusError = "error"
)

// errorBody is the envelope for every failed request.
type errorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return nethttp.StatusBadRequest
	case errors.Is(err, domain.ErrIngestInProgress):
		return nethttp.StatusConflict
	case errors.Is(err, domain.ErrUpstreamFetch),
		errors.Is(err, domain.ErrEmbedding),
		errors.Is(err, domain.ErrIndex):
		return nethttp.StatusBadGateway
	default:
		return nethttp.StatusInternalServerError
	}
}

// fail writes the error envelope and aborts the chain.
func fail(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, errorBody{Status: statusError, Message: msg})
}

// failErr writes err with its mapped status.
func failErr(c *gin.Context, err error) {
	fail(c, statusFor(err), err.Error())
}
