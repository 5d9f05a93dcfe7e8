package store

import (
	"context"
	"database/sql"
	"fmt"

	stderrors "match-workers/internal/common/errors"
	"match-workers/internal/models"
)

// UserStateStore owns a user's saved/applied job state: the exclusion set for
// recommendations and the application status machine.
type UserStateStore struct {
	db *sql.DB
}

func NewUserStateStore(db *sql.DB) *UserStateStore {
	return &UserStateStore{db: db}
}

// ListSavedOrApplied returns the set of job hashes the user has already saved
// or applied to, in any non-deleted status.
func (s *UserStateStore) ListSavedOrApplied(ctx context.Context, userID string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT job_hash FROM saved_jobs WHERE user_id = $1
		UNION
		SELECT job_hash FROM job_applications WHERE user_id = $1`, userID)
	if err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("list_saved_or_applied", err)
	}
	defer rows.Close()

	hashes := make(map[string]struct{})
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, stderrors.NewQueryExecutionFailedError("list_saved_or_applied", err)
		}
		hashes[h] = struct{}{}
	}
	return hashes, rows.Err()
}

// SaveJob stores a posting for the user in status "saved". Saving the same
// hash twice is a no-op.
func (s *UserStateStore) SaveJob(ctx context.Context, userID, jobHash string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO saved_jobs (user_id, job_hash, status, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, job_hash) DO NOTHING`,
		userID, jobHash, models.StatusSaved)
	if err != nil {
		return stderrors.NewQueryExecutionFailedError("save_job", err)
	}
	return nil
}

// UnsaveJob deletes the saved row outright. Not a status transition.
func (s *UserStateStore) UnsaveJob(ctx context.Context, userID, jobHash string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM saved_jobs WHERE user_id = $1 AND job_hash = $2`,
		userID, jobHash)
	if err != nil {
		return stderrors.NewQueryExecutionFailedError("unsave_job", err)
	}
	return nil
}

// GetSavedJob fetches one saved row, or JOB_NOT_FOUND.
func (s *UserStateStore) GetSavedJob(ctx context.Context, userID, jobHash string) (*models.SavedJob, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, job_hash, status
		FROM saved_jobs WHERE user_id = $1 AND job_hash = $2`,
		userID, jobHash)

	var sj models.SavedJob
	var raw string
	err := row.Scan(&sj.UserID, &sj.JobHash, &raw)
	if err == sql.ErrNoRows {
		return nil, stderrors.NewJobNotFoundError(jobHash)
	}
	if err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("get_saved_job", err)
	}

	sj.Status, err = models.ParseApplicationStatus(raw)
	if err != nil {
		return nil, stderrors.NewParseError(err)
	}
	return &sj, nil
}

// UpdateApplicationStatus advances a saved row through the status machine.
// Illegal transitions are rejected before touching the database.
func (s *UserStateStore) UpdateApplicationStatus(ctx context.Context, userID, jobHash string, to models.ApplicationStatus) error {
	current, err := s.GetSavedJob(ctx, userID, jobHash)
	if err != nil {
		return err
	}

	if !models.IsTransitionAllowed(current.Status, to) {
		return stderrors.NewParseError(
			fmt.Errorf("status transition %s -> %s is not allowed", current.Status, to))
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE saved_jobs SET status = $3, updated_at = NOW()
		WHERE user_id = $1 AND job_hash = $2`,
		userID, jobHash, to)
	if err != nil {
		return stderrors.NewQueryExecutionFailedError("update_application_status", err)
	}
	return nil
}
