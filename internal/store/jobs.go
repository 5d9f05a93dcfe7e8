package store

import (
	"context"
	"database/sql"
	"time"

	stderrors "match-workers/internal/common/errors"
	"match-workers/internal/models"

	"github.com/lib/pq"
)

// JobStore reads persisted job postings.
type JobStore struct {
	db *sql.DB
}

func NewJobStore(db *sql.DB) *JobStore {
	return &JobStore{db: db}
}

// ListJobsFilter narrows the active job page handed to the coarse scorer.
type ListJobsFilter struct {
	PostedAfter time.Time
	Limit       int
}

const jobColumns = `id, job_hash, company, title, COALESCE(location, ''),
	COALESCE(salary_low, 0), COALESCE(salary_high, 0), COALESCE(industry, ''),
	COALESCE(job_type, ''), COALESCE(seniority_level, ''), post_date,
	COALESCE(description, '')`

// ListActiveJobs returns the active postings page, most recent first with a
// job_hash tie-break so pagination is reproducible.
func (s *JobStore) ListActiveJobs(ctx context.Context, filter ListJobsFilter) ([]models.JobPosting, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE status = 'active' AND post_date >= $1
		ORDER BY post_date DESC, job_hash ASC
		LIMIT $2`, filter.PostedAfter, limit)
	if err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("list_active_jobs", err)
	}
	defer rows.Close()

	return scanJobs(rows)
}

// ListJobsByHashes hydrates postings for a set of job hashes (used after an
// Elasticsearch keyword prefilter).
func (s *JobStore) ListJobsByHashes(ctx context.Context, hashes []string) ([]models.JobPosting, error) {
	if len(hashes) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE status = 'active' AND job_hash = ANY($1)
		ORDER BY post_date DESC, job_hash ASC`, pq.Array(hashes))
	if err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("list_jobs_by_hashes", err)
	}
	defer rows.Close()

	return scanJobs(rows)
}

// GetJobByHash resolves a single posting by its content-addressed identity.
func (s *JobStore) GetJobByHash(ctx context.Context, hash string) (*models.JobPosting, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+jobColumns+`
		FROM jobs WHERE job_hash = $1`, hash)

	var j models.JobPosting
	err := row.Scan(&j.ID, &j.JobHash, &j.Company, &j.Title, &j.Location,
		&j.SalaryLow, &j.SalaryHigh, &j.Industry, &j.JobType,
		&j.SeniorityLevel, &j.PostDate, &j.Description)
	if err == sql.ErrNoRows {
		return nil, stderrors.NewJobNotFoundError(hash)
	}
	if err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("get_job_by_hash", err)
	}
	return &j, nil
}

func scanJobs(rows *sql.Rows) ([]models.JobPosting, error) {
	var jobs []models.JobPosting
	for rows.Next() {
		var j models.JobPosting
		if err := rows.Scan(&j.ID, &j.JobHash, &j.Company, &j.Title, &j.Location,
			&j.SalaryLow, &j.SalaryHigh, &j.Industry, &j.JobType,
			&j.SeniorityLevel, &j.PostDate, &j.Description); err != nil {
			return nil, stderrors.NewQueryExecutionFailedError("scan_jobs", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}
