package http

import (
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
	"github.com/custodia-labs/bioorbit/internal/logger"
)

// ingestResponse is the body of POST /ingest.
type ingestResponse struct {
	Status    domain.IngestStatus `json:"status"`
	Message   string              `json:"message"`
	Counts    domain.IngestCounts `json:"counts"`
	Watermark *string             `json:"watermark"`
}

// searchBody is the body of POST /search. "type" and "min_delta_g" are
// accepted as aliases.
type searchBody struct {
	Query           string   `json:"query"`
	Modality        string   `json:"modality"`
	Type            string   `json:"type"`
	Limit           int      `json:"limit"`
	MinAttribute    *float64 `json:"min_attribute"`
	MinDeltaG       *float64 `json:"min_delta_g"`
	DiversityLambda *float64 `json:"diversity_lambda"`
}

type searchResponse struct {
	Results []domain.SearchResult `json:"results"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(nethttp.StatusOK, gin.H{"status": statusOK})
}

func (s *Server) handleIngest(c *gin.Context) {
	if s.ports.Ingest == nil {
		fail(c, nethttp.StatusServiceUnavailable, "ingestion is not configured")
		return
	}

	var req domain.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		fail(c, nethttp.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	report, err := s.ports.Ingest.Run(c.Request.Context(), req)
	resp := ingestResponse{Status: domain.IngestStatusFailed}
	if report != nil {
		resp.Status = report.Status
		resp.Message = report.Message
		resp.Counts = report.Counts
		if report.Watermark != nil {
			wm := domain.FormatWatermark(*report.Watermark)
			resp.Watermark = &wm
		}
	}
	if err != nil {
		if resp.Message == "" {
			resp.Message = err.Error()
		}
		c.AbortWithStatusJSON(statusFor(err), resp)
		return
	}
	c.JSON(nethttp.StatusOK, resp)
}

func (s *Server) handleSearchPost(c *gin.Context) {
	var body searchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, nethttp.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	modality := body.Modality
	if modality == "" {
		modality = body.Type
	}
	minAttr := body.MinAttribute
	if minAttr == nil {
		minAttr = body.MinDeltaG
	}
	s.search(c, body.Query, modality, body.Limit, minAttr, body.DiversityLambda)
}

func (s *Server) handleSearchGet(c *gin.Context) {
	limit, err := optionalInt(c, "limit")
	if err != nil {
		failErr(c, err)
		return
	}
	minAttr, err := optionalFloat(c, "min_attribute", "min_delta_g")
	if err != nil {
		failErr(c, err)
		return
	}
	lambda, err := optionalFloat(c, "diversity_lambda")
	if err != nil {
		failErr(c, err)
		return
	}
	modality := c.Query("modality")
	if modality == "" {
		modality = c.Query("type")
	}
	s.search(c, c.Query("query"), modality, limit, minAttr, lambda)
}

func (s *Server) search(c *gin.Context, query, modality string, limit int, minAttr, lambda *float64) {
	m, err := domain.ParseModality(modality)
	if err != nil {
		failErr(c, err)
		return
	}
	results, err := s.ports.Search.Search(c.Request.Context(), domain.SearchRequest{
		Query:           query,
		Modality:        m,
		Limit:           limit,
		MinAttribute:    minAttr,
		DiversityLambda: lambda,
	})
	if err != nil {
		logger.Debug("search failed: %v", err)
		failErr(c, err)
		return
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	c.JSON(nethttp.StatusOK, searchResponse{Results: results})
}

func (s *Server) handleWatermark(c *gin.Context) {
	if s.ports.Watermark == nil {
		fail(c, nethttp.StatusServiceUnavailable, "watermark is not configured")
		return
	}
	wm, err := s.ports.Watermark.GetWatermark(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	var out *string
	if wm != nil {
		v := domain.FormatWatermark(*wm)
		out = &v
	}
	c.JSON(nethttp.StatusOK, gin.H{"status": statusOK, "watermark": out})
}

func optionalInt(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
	}
	return n, nil
}

// optionalFloat reads the first present key.
func optionalFloat(c *gin.Context, keys ...string) (*float64, error) {
	for _, key := range keys {
		raw := strings.TrimSpace(c.Query(key))
		if raw == "" {
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
		}
		return &f, nil
	}
	return nil, nil
}
