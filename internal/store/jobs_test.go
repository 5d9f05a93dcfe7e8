package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	stderrors "match-workers/internal/common/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jobRows(hashes ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "job_hash", "company", "title", "location", "salary_low",
		"salary_high", "industry", "job_type", "seniority_level", "post_date",
		"description",
	})
	for i, h := range hashes {
		rows.AddRow(h, h, "Acme", "Backend Engineer", "Remote", 6000, 9000,
			"Fintech", "full-time", "senior", time.Now().AddDate(0, 0, -(i+1)), "desc")
	}
	return rows
}

func TestListActiveJobs(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewJobStore(db)

	cutoff := time.Now().AddDate(0, 0, -90)
	mock.ExpectQuery("FROM jobs").
		WithArgs(cutoff, 100).
		WillReturnRows(jobRows("h1", "h2"))

	jobs, err := s.ListActiveJobs(context.Background(), ListJobsFilter{
		PostedAfter: cutoff,
		Limit:       100,
	})
	require.NoError(t, err)

	require.Len(t, jobs, 2)
	assert.Equal(t, "h1", jobs[0].JobHash)
	assert.Equal(t, "Acme", jobs[0].Company)
	assert.Equal(t, 6000, jobs[0].SalaryLow)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListJobsByHashes(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewJobStore(db)

	mock.ExpectQuery("job_hash = ANY").
		WillReturnRows(jobRows("h3"))

	jobs, err := s.ListJobsByHashes(context.Background(), []string{"h3"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "h3", jobs[0].JobHash)
}

func TestListJobsByHashesEmptyInput(t *testing.T) {
	db, _ := newMockDB(t)
	s := NewJobStore(db)

	jobs, err := s.ListJobsByHashes(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, jobs)
}

func TestGetJobByHash(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewJobStore(db)

	mock.ExpectQuery("FROM jobs WHERE job_hash").
		WithArgs("h1").
		WillReturnRows(jobRows("h1"))

	job, err := s.GetJobByHash(context.Background(), "h1")
	require.NoError(t, err)
	assert.Equal(t, "h1", job.JobHash)
	assert.Equal(t, "senior", job.SeniorityLevel)
}

func TestGetJobByHashNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewJobStore(db)

	mock.ExpectQuery("FROM jobs WHERE job_hash").
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetJobByHash(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeJobNotFound, stderrors.CodeOf(err))
}
