// internal/workers/matching/assemble-recommendations/models.go
package assemblerecs

import "match-workers/internal/models"

type Input struct {
	UserID    string             `json:"userId"`
	RequestID string             `json:"requestId,omitempty"`
	Shortlist []models.ScoredJob `json:"shortlist"`
	Reranked  bool               `json:"reranked"`

	// Hashes to drop at assembly time, on top of the coarse-stage exclusions.
	ExcludeHashes []string `json:"excludeHashes,omitempty"`

	// Limit caps the final list for this request. Zero means the configured
	// default.
	Limit int `json:"limit,omitempty"`
}

type Output struct {
	Set models.RecommendationSet `json:"recommendationSet"`
}
