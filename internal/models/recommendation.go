package models

// ScoredJob is the ephemeral per-request scoring record: created by the
// coarse-score worker, enriched once by llm-rerank, consumed by the assembler
// and then discarded.
type ScoredJob struct {
	Job             JobPosting `json:"job"`
	CoarseScore     float64    `json:"coarseScore"` // 0-100
	MatchingReasons []string   `json:"matchingReasons,omitempty"`

	// Set by the re-ranker when the completion service covered this job.
	HasLLM          bool     `json:"hasLlm"`
	LLMScore        float64  `json:"llmScore,omitempty"`
	LLMReasons      []string `json:"llmReasons,omitempty"`
	NonMatching     []string `json:"nonMatchingPoints,omitempty"`
	Assessment      string   `json:"personalizedAssessment,omitempty"`
	CareerImpact    string   `json:"careerImpact,omitempty"`
	LeadershipMatch bool     `json:"leadershipMatch,omitempty"`
}

// FinalScore returns the authoritative score: the LLM score when present,
// otherwise the coarse score gates and ranks.
func (s *ScoredJob) FinalScore() float64 {
	if s.HasLLM {
		return s.LLMScore
	}
	return s.CoarseScore
}

// Result source markers for RecommendationSet.
const (
	SourceTwoStage   = "two-stage"
	SourceCoarseOnly = "coarse-only"
)

// Recommendation is one entry of the final ranked list, ready for an API
// response.
type Recommendation struct {
	JobHash         string   `json:"jobHash"`
	Company         string   `json:"company"`
	Title           string   `json:"title"`
	Location        string   `json:"location,omitempty"`
	Score           float64  `json:"score"`
	MatchingReasons []string `json:"matchingReasons,omitempty"`
	NonMatching     []string `json:"nonMatchingPoints,omitempty"`
	Assessment      string   `json:"personalizedAssessment,omitempty"`
	CareerImpact    string   `json:"careerImpact,omitempty"`
	LeadershipMatch bool     `json:"leadershipMatch"`
}

// RecommendationSet is the assembler output. Source distinguishes degraded
// coarse-only responses from full two-stage ones.
type RecommendationSet struct {
	RequestID       string           `json:"requestId"`
	UserID          string           `json:"userId"`
	Source          string           `json:"source"`
	Recommendations []Recommendation `json:"recommendations"`
}
