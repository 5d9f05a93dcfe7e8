// internal/workers/matching/build-profile/models.go
package buildprofile

import "match-workers/internal/models"

type Input struct {
	UserID string `json:"userId"`
}

type Output struct {
	Profile models.CandidateProfile `json:"profile"`
}
