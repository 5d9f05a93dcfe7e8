package models

import (
	"time"
)

// JobPosting is a persisted job row. JobHash is content-addressed and is the
// external identity of a posting: saved jobs, applications and URL routing all
// key on it instead of the surrogate database id.
type JobPosting struct {
	ID             string    `json:"id,omitempty"`
	JobHash        string    `json:"jobHash"`
	Company        string    `json:"company"`
	Title          string    `json:"title"`
	Location       string    `json:"location,omitempty"`
	SalaryLow      int       `json:"salaryLow,omitempty"`
	SalaryHigh     int       `json:"salaryHigh,omitempty"`
	Industry       string    `json:"industry,omitempty"`
	JobType        string    `json:"jobType,omitempty"`
	SeniorityLevel string    `json:"seniorityLevel,omitempty"`
	PostDate       time.Time `json:"postDate"`
	Description    string    `json:"description,omitempty"`
}

// HasSalary reports whether the posting published a usable salary band.
func (j *JobPosting) HasSalary() bool {
	return j.SalaryLow > 0 || j.SalaryHigh > 0
}

// SalaryValid enforces the posting invariant salary_low <= salary_high when
// both ends are present.
func (j *JobPosting) SalaryValid() bool {
	if j.SalaryLow > 0 && j.SalaryHigh > 0 {
		return j.SalaryLow <= j.SalaryHigh
	}
	return true
}

// AgeDays returns whole days since the posting date, relative to now.
func (j *JobPosting) AgeDays(now time.Time) int {
	return int(now.Sub(j.PostDate).Hours() / 24)
}

// LeadershipLevel derives the ordinal level from the posting's seniority
// field, falling back to the experience-level naming of older rows.
func (j *JobPosting) LeadershipLevel() LeadershipLevel {
	return ParseLeadershipLevel(j.SeniorityLevel)
}
