// internal/workers/matching/coarse-score/models.go
package coarsescore

import "match-workers/internal/models"

type Input struct {
	Profile models.CandidateProfile `json:"profile"`

	// Optional keyword-prefilter result. When set the scorer hydrates these
	// hashes instead of paging the full active set.
	JobHashes []string `json:"jobHashes,omitempty"`
}

type Output struct {
	Shortlist  []models.ScoredJob `json:"shortlist"`
	Considered int                `json:"considered"`
}
