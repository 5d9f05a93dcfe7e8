// Package store implements the collaborator data sources of the matching
// pipeline: candidate profile rows, job postings and per-user saved/applied
// state.
package store

import (
	"context"
	"database/sql"
	"encoding/json"

	stderrors "match-workers/internal/common/errors"

	"github.com/lib/pq"
)

// SkillRow is one row of candidate_skills.
type SkillRow struct {
	Name     string
	Level    int
	LastUsed string
}

// WorkRow is one row of candidate_work. Dates are kept as stored ("2006-01"
// or "2006-01-02"); the build-profile worker derives experience years.
type WorkRow struct {
	Company   string
	Title     string
	StartDate string
	EndDate   sql.NullString
}

// ProfileData is the raw resume-derived material for one user, straight from
// the candidate tables.
type ProfileData struct {
	CurrentTitle   string
	TargetTitles   []string
	Industries     []string
	Locations      []string
	SeniorityLevel string
	SalaryMin      int
	SalaryMax      int
	SalaryCurrency string
	WorkAuthorized bool
	Skills         []SkillRow
	Work           []WorkRow
}

// CandidateStore reads resume-derived candidate rows.
type CandidateStore struct {
	db *sql.DB
}

func NewCandidateStore(db *sql.DB) *CandidateStore {
	return &CandidateStore{db: db}
}

// GetProfileData fetches everything the Profile Builder needs in one pass.
// Returns PROFILE_NOT_FOUND when the user has no candidate_basics row.
func (s *CandidateStore) GetProfileData(ctx context.Context, userID string) (*ProfileData, error) {
	var (
		data     ProfileData
		workAuth []byte
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT current_title, target_titles, industries, work_prefs_locations,
		       seniority_level, salary_expect_min, salary_expect_max,
		       salary_currency, work_auth
		FROM candidate_basics WHERE user_id = $1`, userID).Scan(
		&data.CurrentTitle,
		pq.Array(&data.TargetTitles),
		pq.Array(&data.Industries),
		pq.Array(&data.Locations),
		&data.SeniorityLevel,
		&data.SalaryMin,
		&data.SalaryMax,
		&data.SalaryCurrency,
		&workAuth,
	)
	if err == sql.ErrNoRows {
		return nil, stderrors.NewProfileNotFoundError(userID)
	}
	if err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("candidate_basics", err)
	}

	if len(workAuth) > 0 {
		var auth struct {
			Authorized bool `json:"authorized"`
		}
		if err := json.Unmarshal(workAuth, &auth); err == nil {
			data.WorkAuthorized = auth.Authorized
		}
	}

	if data.Skills, err = s.listSkills(ctx, userID); err != nil {
		return nil, err
	}
	if data.Work, err = s.listWork(ctx, userID); err != nil {
		return nil, err
	}

	return &data, nil
}

func (s *CandidateStore) listSkills(ctx context.Context, userID string) ([]SkillRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT skill_name, level, COALESCE(last_used, '')
		FROM candidate_skills WHERE user_id = $1
		ORDER BY level DESC, skill_name ASC`, userID)
	if err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("candidate_skills", err)
	}
	defer rows.Close()

	var skills []SkillRow
	for rows.Next() {
		var sk SkillRow
		if err := rows.Scan(&sk.Name, &sk.Level, &sk.LastUsed); err != nil {
			return nil, stderrors.NewQueryExecutionFailedError("candidate_skills", err)
		}
		skills = append(skills, sk)
	}
	return skills, rows.Err()
}

func (s *CandidateStore) listWork(ctx context.Context, userID string) ([]WorkRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT company, title, start_date, end_date
		FROM candidate_work WHERE user_id = $1
		ORDER BY start_date DESC`, userID)
	if err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("candidate_work", err)
	}
	defer rows.Close()

	var work []WorkRow
	for rows.Next() {
		var w WorkRow
		if err := rows.Scan(&w.Company, &w.Title, &w.StartDate, &w.EndDate); err != nil {
			return nil, stderrors.NewQueryExecutionFailedError("candidate_work", err)
		}
		work = append(work, w)
	}
	return work, rows.Err()
}
