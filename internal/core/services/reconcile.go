package services

import "github.com/custodia-labs/bioorbit/internal/core/domain"

// Reconcile drops records whose identifier is already known, or that repeat
// an earlier record in the same batch. Order is preserved.
func Reconcile(
	fetched []domain.SourceRecord, known map[string]struct{},
) (fresh []domain.SourceRecord, duplicates int) {
	seen := make(map[string]struct{}, len(fetched))
	fresh = make([]domain.SourceRecord, 0, len(fetched))
	for _, r := range fetched {
		if _, ok := known[r.ID]; ok {
			duplicates++
			continue
		}
		if _, ok := seen[r.ID]; ok {
			duplicates++
			continue
		}
		seen[r.ID] = struct{}{}
		fresh = append(fresh, r)
	}
	return fresh, duplicates
}
