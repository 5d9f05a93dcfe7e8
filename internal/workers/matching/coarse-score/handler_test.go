// internal/workers/matching/coarse-score/handler_test.go
package coarsescore

import (
	"context"
	"testing"
	"time"

	stderrors "match-workers/internal/common/errors"
	"match-workers/internal/common/logger"
	"match-workers/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCoarseHandler(t *testing.T, excludeSavedApplied bool) (*Handler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := testMatchingConfig()
	cfg.ExcludeSavedApplied = excludeSavedApplied

	h := NewHandler(
		&Config{Timeout: 10 * time.Second, Matching: cfg},
		store.NewJobStore(db),
		store.NewUserStateStore(db),
		logger.NewNop(),
	)
	return h, mock
}

func jobRows(hashes ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "job_hash", "company", "title", "location", "salary_low",
		"salary_high", "industry", "job_type", "seniority_level", "post_date",
		"description",
	})
	for i, h := range hashes {
		rows.AddRow(h, h, "Acme", "Backend Engineer", "Remote", 7000, 10000,
			"Fintech", "full-time", "", time.Now().AddDate(0, 0, -(i+1)), "")
	}
	return rows
}

func TestExecuteBuildsShortlistFromActivePage(t *testing.T) {
	h, mock := newTestCoarseHandler(t, false)

	mock.ExpectQuery("FROM jobs").WillReturnRows(jobRows("h1", "h2"))

	profile := testProfile()
	out, err := h.Execute(context.Background(), &Input{Profile: profile})
	require.NoError(t, err)

	assert.Equal(t, 2, out.Considered)
	require.Len(t, out.Shortlist, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteHydratesPrefilteredHashes(t *testing.T) {
	h, mock := newTestCoarseHandler(t, false)

	mock.ExpectQuery("job_hash = ANY").WillReturnRows(jobRows("h9"))

	profile := testProfile()
	out, err := h.Execute(context.Background(), &Input{
		Profile:   profile,
		JobHashes: []string{"h9"},
	})
	require.NoError(t, err)

	require.Len(t, out.Shortlist, 1)
	assert.Equal(t, "h9", out.Shortlist[0].Job.JobHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteNoCandidatesAfterFilter(t *testing.T) {
	h, mock := newTestCoarseHandler(t, false)

	mock.ExpectQuery("FROM jobs").WillReturnRows(jobRows())

	profile := testProfile()
	_, err := h.Execute(context.Background(), &Input{Profile: profile})
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeNoCandidatesAfterFilter, stderrors.CodeOf(err))
	assert.True(t, stderrors.IsUserVisible(err))
}

func TestExecuteAppliesSavedAppliedExclusions(t *testing.T) {
	h, mock := newTestCoarseHandler(t, true)

	mock.ExpectQuery("FROM jobs").WillReturnRows(jobRows("keep", "seen"))
	mock.ExpectQuery("FROM saved_jobs").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"job_hash"}).AddRow("seen"))

	profile := testProfile()
	out, err := h.Execute(context.Background(), &Input{Profile: profile})
	require.NoError(t, err)

	require.Len(t, out.Shortlist, 1)
	assert.Equal(t, "keep", out.Shortlist[0].Job.JobHash)
}
