package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
	"github.com/custodia-labs/bioorbit/internal/core/ports/driven"
	"github.com/custodia-labs/bioorbit/internal/core/ports/driving"
	"github.com/custodia-labs/bioorbit/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// RetrievalSettings tune the retrieval engine.
type RetrievalSettings struct {
	DefaultLimit    int
	MaxLimit        int
	OverFetchFactor int
	DiversityLambda float64
	FetchVectors    bool
}

// DefaultRetrievalSettings returns the built-in retrieval tuning.
func DefaultRetrievalSettings() RetrievalSettings {
	return RetrievalSettings{
		DefaultLimit:    domain.DefaultSearchLimit,
		MaxLimit:        domain.MaxSearchLimit,
		OverFetchFactor: domain.DefaultOverFetchFactor,
		DiversityLambda: domain.DefaultDiversityLambda,
		FetchVectors:    true,
	}
}

// SearchService embeds a query, over-fetches candidates, filters them by
// delta_g and reranks them for diversity. It holds no per-request state.
type SearchService struct {
	dispatcher *Dispatcher
	index      driven.VectorIndex

	mu       sync.RWMutex
	settings RetrievalSettings
}

// NewSearchService creates a new search service.
func NewSearchService(dispatcher *Dispatcher, index driven.VectorIndex, settings RetrievalSettings) *SearchService {
	s := &SearchService{dispatcher: dispatcher, index: index}
	s.UpdateSettings(settings)
	return s
}

// UpdateSettings swaps retrieval tuning; zero fields keep built-in defaults.
func (s *SearchService) UpdateSettings(settings RetrievalSettings) {
	def := DefaultRetrievalSettings()
	if settings.DefaultLimit <= 0 {
		settings.DefaultLimit = def.DefaultLimit
	}
	if settings.MaxLimit <= 0 {
		settings.MaxLimit = def.MaxLimit
	}
	if settings.OverFetchFactor < 1 {
		settings.OverFetchFactor = def.OverFetchFactor
	}
	if math.IsNaN(settings.DiversityLambda) || settings.DiversityLambda < 0 || settings.DiversityLambda > 1 {
		settings.DiversityLambda = def.DiversityLambda
	}

	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
}

// Settings returns the active retrieval tuning.
func (s *SearchService) Settings() RetrievalSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

type validatedSearch struct {
	query    string
	modality domain.Modality
	limit    int
	lambda   float64
	minAttr  *float64
}

func (s *SearchService) validate(req domain.SearchRequest, cfg RetrievalSettings) (validatedSearch, error) {
	var v validatedSearch

	modality, err := domain.ParseModality(string(req.Modality))
	if err != nil {
		return v, err
	}
	v.modality = modality

	switch {
	case req.Limit < 0:
		return v, fmt.Errorf("%w: limit must not be negative, got %d", domain.ErrInvalidInput, req.Limit)
	case req.Limit == 0:
		v.limit = cfg.DefaultLimit
	default:
		v.limit = req.Limit
	}
	v.limit = min(v.limit, cfg.MaxLimit)

	v.lambda = cfg.DiversityLambda
	if req.DiversityLambda != nil {
		l := *req.DiversityLambda
		if math.IsNaN(l) || l < 0 || l > 1 {
			return v, fmt.Errorf("%w: diversity_lambda must be within [0, 1], got %v", domain.ErrInvalidInput, l)
		}
		v.lambda = l
	}

	v.query = strings.TrimSpace(req.Query)
	if v.query == "" {
		return v, fmt.Errorf("%w: query must not be empty", domain.ErrInvalidInput)
	}
	if m := req.MinAttribute; m != nil && (math.IsNaN(*m) || math.IsInf(*m, 0)) {
		return v, fmt.Errorf("%w: min_attribute must be a finite number, got %v", domain.ErrInvalidInput, *m)
	}
	v.minAttr = req.MinAttribute
	return v, nil
}

// Search returns up to limit diverse results for the request.
func (s *SearchService) Search(ctx context.Context, req domain.SearchRequest) ([]domain.SearchResult, error) {
	cfg := s.Settings()

	v, err := s.validate(req, cfg)
	if err != nil {
		return nil, err
	}

	logger.Section("Search Execution")
	logger.Debug("Query: %q, modality: %s, limit: %d, lambda: %.2f", v.query, v.modality, v.limit, v.lambda)

	// 1. Embed
	vec, err := s.dispatcher.Embed(ctx, v.query, v.modality)
	if err != nil {
		return nil, err
	}

	// 2. Over-fetch
	internalLimit := v.limit * cfg.OverFetchFactor
	cands, err := s.index.Query(ctx, driven.VectorQuery{
		Space:        string(s.dispatcher.Space(v.modality)),
		Vector:       vec,
		Limit:        internalLimit,
		WithVectors:  cfg.FetchVectors,
		MaxAttribute: v.minAttr,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: query: %w", domain.ErrIndex, err)
	}
	logger.Debug("Index returned %d candidates (asked for %d)", len(cands), internalLimit)

	// 3. Attribute filter
	if v.minAttr != nil {
		filtered := cands[:0:0]
		for _, c := range cands {
			if c.Payload.DeltaG <= *v.minAttr {
				filtered = append(filtered, c)
			}
		}
		logger.Debug("Attribute filter delta_g <= %v kept %d of %d", *v.minAttr, len(filtered), len(cands))
		cands = filtered
	}

	// 4. Rerank and truncate
	ranked, reranked := rerankMMR(cands, v.lambda, v.limit)
	if !reranked {
		logger.Debug("Candidates lack vectors, keeping index order")
	}

	results := make([]domain.SearchResult, len(ranked))
	for i, c := range ranked {
		results[i] = domain.SearchResult{
			ID:       c.ID,
			Score:    c.Score,
			Payload:  c.Payload,
			Modality: v.modality,
		}
	}
	return results, nil
}
