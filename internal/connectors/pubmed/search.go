package pubmed

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
	"github.com/custodia-labs/bioorbit/internal/core/ports/driven"
	"github.com/custodia-labs/bioorbit/internal/logger"
)

type esearchResponse struct {
	Error  string `json:"error"`
	Result struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
		Error  string   `json:"ERROR"`
	} `json:"esearchresult"`
}

// Search returns PMIDs matching q, newest first as ordered by NCBI.
// With q.Since set, results are limited to entry dates in [Since, Until].
func (c *Client) Search(ctx context.Context, q driven.SourceQuery) ([]string, error) {
	term := strings.TrimSpace(q.Term)
	if term == "" {
		return nil, fmt.Errorf("%w: empty search term", domain.ErrInvalidInput)
	}

	params := c.params()
	params.Set("term", term)
	params.Set("retmode", "json")
	if q.MaxResults > 0 {
		params.Set("retmax", strconv.Itoa(q.MaxResults))
	}
	if q.Since != nil {
		until := q.Until
		if until.IsZero() {
			until = time.Now()
		}
		params.Set("datetype", "edat")
		params.Set("mindate", domain.FormatWatermark(*q.Since))
		params.Set("maxdate", domain.FormatWatermark(until))
	}

	body, err := c.get(ctx, "esearch.fcgi", params)
	if err != nil {
		return nil, err
	}

	var resp esearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode esearch: %w", err)
	}
	if resp.Error != "" {
		if strings.Contains(strings.ToLower(resp.Error), "rate limit") {
			return nil, fmt.Errorf("%w: %s", ErrRateLimited, resp.Error)
		}
		return nil, fmt.Errorf("esearch: %s", resp.Error)
	}
	if resp.Result.Error != "" {
		return nil, fmt.Errorf("esearch: %s", resp.Result.Error)
	}

	logger.Debug("esearch matched %s records, returned %d", resp.Result.Count, len(resp.Result.IDList))
	return resp.Result.IDList, nil
}
