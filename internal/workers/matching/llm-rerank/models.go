// internal/workers/matching/llm-rerank/models.go
package llmrerank

import "match-workers/internal/models"

type Input struct {
	Profile   models.CandidateProfile `json:"profile"`
	Shortlist []models.ScoredJob      `json:"shortlist"`
}

type Output struct {
	Shortlist []models.ScoredJob `json:"shortlist"`

	// Reranked is false when the completion service failed and the shortlist
	// passed through with its coarse scores intact.
	Reranked     bool   `json:"reranked"`
	FallbackCode string `json:"fallbackCode,omitempty"`
}

// ranking is one value of the model's structured response. The response is a
// JSON object mapping job_hash to one of these.
type ranking struct {
	Score           float64  `json:"score"`
	MatchingReasons []string `json:"matching_reasons"`
	NonMatching     []string `json:"non_matching_points"`
	Assessment      string   `json:"personalized_assessment"`
	CareerImpact    string   `json:"career_impact"`
	LeadershipMatch bool     `json:"leadership_match"`
}
