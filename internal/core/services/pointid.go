package services

import (
	"fmt"

	"github.com/google/uuid"
)

// pointNamespace scopes point identifiers to this application.
var pointNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://pubmed.ncbi.nlm.nih.gov/bioorbit"))

// PointID returns the stable identifier of a record's chunk.
// Re-ingesting the same chunk yields the same ID and overwrites the point.
func PointID(recordID string, ordinal int) string {
	return uuid.NewSHA1(pointNamespace, []byte(fmt.Sprintf("%s:%d", recordID, ordinal))).String()
}
