// internal/workers/matching/recommend/models.go
package recommend

import "match-workers/internal/models"

type Input struct {
	UserID    string `json:"userId"`
	RequestID string `json:"requestId,omitempty"`

	// Hashes to suppress in the response on top of the saved/applied
	// exclusions, e.g. jobs already shown this session.
	ExcludeHashes []string `json:"excludeHashes,omitempty"`

	// Limit caps the final list for this request. Zero means the configured
	// default.
	Limit int `json:"limit,omitempty"`
}

type Output struct {
	Set models.RecommendationSet `json:"recommendationSet"`
}
