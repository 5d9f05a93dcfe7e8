// internal/workers/matching/llm-rerank/handler_test.go
package llmrerank

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	stderrors "match-workers/internal/common/errors"
	"match-workers/internal/common/logger"
	"match-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompletion scripts completion responses per call.
type fakeCompletion struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (f *fakeCompletion) Complete(_ context.Context, _ string, userPrompt string) (string, error) {
	idx := f.calls
	f.calls++
	f.prompts = append(f.prompts, userPrompt)
	var err error
	if idx < len(f.errs) {
		err = f.errs[idx]
	}
	var resp string
	if idx < len(f.responses) {
		resp = f.responses[idx]
	}
	return resp, err
}

func newRerankHandler(fake *fakeCompletion) *Handler {
	return NewHandler(&Config{Timeout: 30 * time.Second, MaxRetries: 1}, fake, logger.NewNop())
}

func shortlistOf(hashes ...string) []models.ScoredJob {
	out := make([]models.ScoredJob, 0, len(hashes))
	for i, h := range hashes {
		out = append(out, models.ScoredJob{
			Job: models.JobPosting{
				JobHash:  h,
				Company:  "Acme",
				Title:    "Backend Engineer",
				PostDate: time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
			},
			CoarseScore: float64(70 - i*10),
		})
	}
	return out
}

func rankingJSON(entries ...string) string {
	return fmt.Sprintf(`{%s}`, strings.Join(entries, ","))
}

func entry(hash string, score float64) string {
	return fmt.Sprintf(`%q: {"score": %v,
		"matching_reasons": ["strong skill fit"],
		"non_matching_points": ["salary slightly below target"],
		"personalized_assessment": "Good step forward.",
		"career_impact": "Broadens backend depth.",
		"leadership_match": true}`, hash, score)
}

func TestExecuteMergesRankings(t *testing.T) {
	fake := &fakeCompletion{responses: []string{rankingJSON(entry("h1", 85), entry("h2", 40))}}
	h := newRerankHandler(fake)

	out, err := h.Execute(context.Background(), &Input{
		Profile:   models.CandidateProfile{UserID: "user-1", Titles: []string{"Backend Engineer"}},
		Shortlist: shortlistOf("h1", "h2"),
	})
	require.NoError(t, err)

	assert.True(t, out.Reranked)
	require.Len(t, out.Shortlist, 2)

	first := out.Shortlist[0]
	assert.True(t, first.HasLLM)
	assert.Equal(t, 85.0, first.LLMScore)
	assert.Equal(t, 85.0, first.FinalScore())
	assert.Equal(t, []string{"strong skill fit"}, first.LLMReasons)
	assert.Equal(t, "Good step forward.", first.Assessment)
	assert.True(t, first.LeadershipMatch)

	// The request enumerates every job_hash.
	require.Len(t, fake.prompts, 1)
	assert.Contains(t, fake.prompts[0], "h1")
	assert.Contains(t, fake.prompts[0], "h2")
}

func TestExecuteMissingHashKeepsCoarseScore(t *testing.T) {
	fake := &fakeCompletion{responses: []string{rankingJSON(entry("h1", 90))}}
	h := newRerankHandler(fake)

	out, err := h.Execute(context.Background(), &Input{Shortlist: shortlistOf("h1", "h2")})
	require.NoError(t, err)

	assert.True(t, out.Reranked)
	assert.True(t, out.Shortlist[0].HasLLM)
	assert.False(t, out.Shortlist[1].HasLLM)
	assert.Equal(t, 60.0, out.Shortlist[1].FinalScore())
}

func TestExecuteIgnoresInventedHashes(t *testing.T) {
	fake := &fakeCompletion{responses: []string{rankingJSON(entry("h1", 90), entry("made-up", 99))}}
	h := newRerankHandler(fake)

	out, err := h.Execute(context.Background(), &Input{Shortlist: shortlistOf("h1")})
	require.NoError(t, err)

	require.Len(t, out.Shortlist, 1)
	assert.Equal(t, "h1", out.Shortlist[0].Job.JobHash)
}

func TestExecuteStripsMarkdownFences(t *testing.T) {
	fenced := "```json\n" + rankingJSON(entry("h1", 75)) + "\n```"
	fake := &fakeCompletion{responses: []string{fenced}}
	h := newRerankHandler(fake)

	out, err := h.Execute(context.Background(), &Input{Shortlist: shortlistOf("h1")})
	require.NoError(t, err)
	assert.True(t, out.Reranked)
	assert.Equal(t, 75.0, out.Shortlist[0].LLMScore)
}

func TestExecuteRetriesTransientOnce(t *testing.T) {
	fake := &fakeCompletion{
		errs:      []error{errors.New("connection refused"), nil},
		responses: []string{"", rankingJSON(entry("h1", 80))},
	}
	h := newRerankHandler(fake)

	out, err := h.Execute(context.Background(), &Input{Shortlist: shortlistOf("h1")})
	require.NoError(t, err)

	assert.Equal(t, 2, fake.calls)
	assert.True(t, out.Reranked)
}

func TestExecuteFallsBackAfterRetryExhausted(t *testing.T) {
	fake := &fakeCompletion{
		errs: []error{errors.New("connection refused"), errors.New("service unavailable")},
	}
	h := newRerankHandler(fake)

	input := &Input{Shortlist: shortlistOf("h1", "h2")}
	out, err := h.Execute(context.Background(), input)

	// Degraded service never fails the request: the coarse shortlist passes
	// through untouched.
	require.NoError(t, err)
	assert.False(t, out.Reranked)
	assert.Equal(t, string(stderrors.ErrCodeExternalServiceDegraded), out.FallbackCode)
	assert.Equal(t, input.Shortlist, out.Shortlist)
	assert.Equal(t, 2, fake.calls)
}

func TestExecuteFatalErrorNoRetry(t *testing.T) {
	fake := &fakeCompletion{errs: []error{errors.New("API key not valid")}}
	h := newRerankHandler(fake)

	out, err := h.Execute(context.Background(), &Input{Shortlist: shortlistOf("h1")})
	require.NoError(t, err)

	assert.Equal(t, 1, fake.calls)
	assert.False(t, out.Reranked)
	assert.Equal(t, string(stderrors.ErrCodeExternalServiceFatal), out.FallbackCode)
}

func TestExecuteMalformedResponseFallsBack(t *testing.T) {
	fake := &fakeCompletion{responses: []string{`{"h1": {"matching_reasons": ["fit"]}}`}}
	h := newRerankHandler(fake)

	out, err := h.Execute(context.Background(), &Input{Shortlist: shortlistOf("h1")})
	require.NoError(t, err)

	assert.False(t, out.Reranked)
	assert.Equal(t, string(stderrors.ErrCodeExternalServiceFatal), out.FallbackCode)
	assert.False(t, out.Shortlist[0].HasLLM)
}

func TestTruncateCutsAtRuneBoundary(t *testing.T) {
	s := strings.Repeat("é", 10)

	out := truncate(s, 5)

	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, strings.Repeat("é", 2)+"...", out)

	assert.Equal(t, "plain", truncate("plain", 10))
}

func TestExecuteEmptyResponseKeepsCoarseOnly(t *testing.T) {
	fake := &fakeCompletion{responses: []string{`{}`}}
	h := newRerankHandler(fake)

	input := &Input{Shortlist: shortlistOf("h1", "h2")}
	out, err := h.Execute(context.Background(), input)
	require.NoError(t, err)

	// Schema-valid but covering nothing: the result is coarse-only, never
	// labeled as re-ranked.
	assert.False(t, out.Reranked)
	assert.Equal(t, string(stderrors.ErrCodeExternalServiceFatal), out.FallbackCode)
	assert.Equal(t, input.Shortlist, out.Shortlist)
}

func TestExecuteEmptyShortlistNoCall(t *testing.T) {
	fake := &fakeCompletion{}
	h := newRerankHandler(fake)

	out, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.False(t, out.Reranked)
	assert.Zero(t, fake.calls)
}
