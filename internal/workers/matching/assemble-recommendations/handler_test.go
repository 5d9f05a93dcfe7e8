// internal/workers/matching/assemble-recommendations/handler_test.go
package assemblerecs

import (
	"context"
	"testing"
	"time"

	"match-workers/internal/common/logger"
	"match-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAssembler(limit int) *Handler {
	return NewHandler(&Config{Timeout: 5 * time.Second, FinalLimit: limit}, logger.NewNop())
}

func scoredJob(hash string, coarse float64) models.ScoredJob {
	return models.ScoredJob{
		Job: models.JobPosting{
			JobHash:  hash,
			Company:  "Acme",
			Title:    "Backend Engineer",
			PostDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		CoarseScore:     coarse,
		MatchingReasons: []string{"title matches: backend, engineer"},
	}
}

func rerankedJob(hash string, coarse, llm float64) models.ScoredJob {
	s := scoredJob(hash, coarse)
	s.HasLLM = true
	s.LLMScore = llm
	s.LLMReasons = []string{"deep skill alignment"}
	s.Assessment = "A natural next step."
	s.CareerImpact = "Moves you toward platform work."
	s.LeadershipMatch = true
	return s
}

func TestExecuteLLMScoreWinsOrdering(t *testing.T) {
	h := newAssembler(5)

	// Coarse order says h1 first; the LLM disagrees.
	out, err := h.Execute(context.Background(), &Input{
		UserID: "user-1",
		Shortlist: []models.ScoredJob{
			rerankedJob("h1", 90, 40),
			rerankedJob("h2", 60, 85),
		},
		Reranked: true,
	})
	require.NoError(t, err)

	set := out.Set
	assert.Equal(t, models.SourceTwoStage, set.Source)
	require.Len(t, set.Recommendations, 2)
	assert.Equal(t, "h2", set.Recommendations[0].JobHash)
	assert.Equal(t, 85.0, set.Recommendations[0].Score)
	assert.Equal(t, []string{"deep skill alignment"}, set.Recommendations[0].MatchingReasons)
	assert.Equal(t, "A natural next step.", set.Recommendations[0].Assessment)
}

func TestExecuteMixedCoverageOrdersByFinalScore(t *testing.T) {
	h := newAssembler(5)

	out, err := h.Execute(context.Background(), &Input{
		UserID: "user-1",
		Shortlist: []models.ScoredJob{
			scoredJob("coarse-only", 70), // model skipped this one
			rerankedJob("ranked", 50, 65),
		},
		Reranked: true,
	})
	require.NoError(t, err)

	recs := out.Set.Recommendations
	require.Len(t, recs, 2)
	assert.Equal(t, "coarse-only", recs[0].JobHash)
	assert.Equal(t, 70.0, recs[0].Score)
	// Skipped entries keep the scorer's reasons, not model prose.
	assert.Equal(t, []string{"title matches: backend, engineer"}, recs[0].MatchingReasons)
	assert.Empty(t, recs[0].Assessment)
}

func TestExecuteCoarseOnlySource(t *testing.T) {
	h := newAssembler(5)

	out, err := h.Execute(context.Background(), &Input{
		UserID:    "user-1",
		Shortlist: []models.ScoredJob{scoredJob("h1", 80)},
		Reranked:  false,
	})
	require.NoError(t, err)

	assert.Equal(t, models.SourceCoarseOnly, out.Set.Source)
	assert.NotEmpty(t, out.Set.RequestID)
}

func TestExecuteTruncatesToLimit(t *testing.T) {
	h := newAssembler(2)

	out, err := h.Execute(context.Background(), &Input{
		UserID: "user-1",
		Shortlist: []models.ScoredJob{
			scoredJob("h1", 90),
			scoredJob("h2", 80),
			scoredJob("h3", 70),
		},
	})
	require.NoError(t, err)

	require.Len(t, out.Set.Recommendations, 2)
	assert.Equal(t, "h1", out.Set.Recommendations[0].JobHash)
	assert.Equal(t, "h2", out.Set.Recommendations[1].JobHash)
}

func TestExecuteCallerLimitOverridesDefault(t *testing.T) {
	h := newAssembler(5)

	out, err := h.Execute(context.Background(), &Input{
		UserID: "user-1",
		Shortlist: []models.ScoredJob{
			scoredJob("h1", 90),
			scoredJob("h2", 80),
			scoredJob("h3", 70),
		},
		Limit: 1,
	})
	require.NoError(t, err)

	require.Len(t, out.Set.Recommendations, 1)
	assert.Equal(t, "h1", out.Set.Recommendations[0].JobHash)
}

func TestExecuteExcludesAndDeduplicates(t *testing.T) {
	h := newAssembler(5)

	out, err := h.Execute(context.Background(), &Input{
		UserID: "user-1",
		Shortlist: []models.ScoredJob{
			scoredJob("h1", 90),
			scoredJob("h1", 90), // duplicate hash
			scoredJob("h2", 80),
		},
		ExcludeHashes: []string{"h2"},
	})
	require.NoError(t, err)

	require.Len(t, out.Set.Recommendations, 1)
	assert.Equal(t, "h1", out.Set.Recommendations[0].JobHash)
}

func TestExecuteTieBreaksDeterministic(t *testing.T) {
	h := newAssembler(5)

	older := scoredJob("bbb", 80)
	older.Job.PostDate = time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	newer := scoredJob("aaa", 80)

	out, err := h.Execute(context.Background(), &Input{
		UserID:    "user-1",
		Shortlist: []models.ScoredJob{older, newer},
	})
	require.NoError(t, err)

	recs := out.Set.Recommendations
	require.Len(t, recs, 2)
	assert.Equal(t, "aaa", recs[0].JobHash) // newer posting wins the tie
	assert.Equal(t, "bbb", recs[1].JobHash)
}

func TestExecutePreservesRequestID(t *testing.T) {
	h := newAssembler(5)

	out, err := h.Execute(context.Background(), &Input{
		UserID:    "user-1",
		RequestID: "req-42",
		Shortlist: []models.ScoredJob{scoredJob("h1", 80)},
	})
	require.NoError(t, err)
	assert.Equal(t, "req-42", out.Set.RequestID)
}
