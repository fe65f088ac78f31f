package services

import (
	"math"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
)

// rerankMMR orders candidates by maximal marginal relevance:
//
//	lambda*score - (1-lambda)*max(cos(candidate, selected))
//
// and returns at most k results with the adjusted score. When any candidate
// has no vector the input order is kept. Ties keep the earlier candidate.
func rerankMMR(cands []domain.Candidate, lambda float64, k int) ([]domain.Candidate, bool) {
	if k > len(cands) {
		k = len(cands)
	}
	for _, c := range cands {
		if len(c.Vector) == 0 {
			return cands[:k], false
		}
	}

	remaining := make([]int, len(cands))
	for i := range remaining {
		remaining[i] = i
	}
	selected := make([]domain.Candidate, 0, k)

	for len(selected) < k {
		bestPos := -1
		var bestScore float64
		for pos, idx := range remaining {
			c := cands[idx]
			// Redundancy is 0 for the first pick and may be negative after.
			var redundancy float64
			if len(selected) > 0 {
				redundancy = math.Inf(-1)
			}
			for _, s := range selected {
				if sim := domain.CosineSimilarity(c.Vector, s.Vector); sim > redundancy {
					redundancy = sim
				}
			}
			score := lambda*c.Score - (1-lambda)*redundancy
			if bestPos < 0 || score > bestScore {
				bestPos, bestScore = pos, score
			}
		}
		chosen := cands[remaining[bestPos]]
		chosen.Score = bestScore
		selected = append(selected, chosen)
		remaining = append(remaining[:bestPos], remaining[bestPos+1:]...)
	}
	return selected, true
}
