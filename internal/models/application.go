// Application status state machine for user job state.
//
// Valid status graph:
//
//	saved ──► applied ──► interviewed ──► offered
//	    │          │             │
//	    └──────────┴─────────────┴──────► rejected
//
// offered and rejected are terminal. A saved row may also be deleted outright
// on explicit unsave; deletion is not a transition.
package models

import "fmt"

// ApplicationStatus mirrors the status enum on the saved_jobs/applications
// tables.
type ApplicationStatus string

const (
	StatusSaved       ApplicationStatus = "saved"
	StatusApplied     ApplicationStatus = "applied"
	StatusInterviewed ApplicationStatus = "interviewed"
	StatusOffered     ApplicationStatus = "offered"
	StatusRejected    ApplicationStatus = "rejected"
)

// validTransitions lists every allowed (from -> to) pair.
var validTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusSaved:       {StatusApplied, StatusRejected},
	StatusApplied:     {StatusInterviewed, StatusRejected},
	StatusInterviewed: {StatusOffered, StatusRejected},
	// offered and rejected are terminal
}

// ParseApplicationStatus converts a raw string to an ApplicationStatus,
// returning an error for unknown values.
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(s)
	switch st {
	case StatusSaved, StatusApplied, StatusInterviewed, StatusOffered, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// IsTransitionAllowed returns true when moving from -> to is permitted.
func IsTransitionAllowed(from, to ApplicationStatus) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false // terminal state
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// SavedJob is a user's saved or in-progress posting, keyed by
// (user_id, job_hash).
type SavedJob struct {
	UserID  string            `json:"userId"`
	JobHash string            `json:"jobHash"`
	Status  ApplicationStatus `json:"status"`
}
