package models

import (
	"fmt"
	"strings"
	"time"
)

// LeadershipLevel is the ordinal management-scope classification.
// IC < TeamLead < TeamLeadPlus.
type LeadershipLevel int

const (
	LevelIC LeadershipLevel = iota
	LevelTeamLead
	LevelTeamLeadPlus
)

func (l LeadershipLevel) String() string {
	switch l {
	case LevelTeamLead:
		return "TeamLead"
	case LevelTeamLeadPlus:
		return "TeamLead++"
	}
	return "IC"
}

// ParseLeadershipLevel maps the free-form level strings found in job rows and
// candidate signals onto the ordinal scale. Unknown values default to IC.
func ParseLeadershipLevel(s string) LeadershipLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "teamlead", "team lead", "lead", "manager":
		return LevelTeamLead
	case "teamlead++", "teamleadplus", "team lead++", "director", "executive", "head":
		return LevelTeamLeadPlus
	}
	return LevelIC
}

// Distance returns the absolute ordinal distance between two levels.
func (l LeadershipLevel) Distance(other LeadershipLevel) int {
	d := int(l) - int(other)
	if d < 0 {
		d = -d
	}
	return d
}

// Skill is one resume-derived skill with proficiency 1-5.
type Skill struct {
	Name     string    `json:"name"`
	Level    int       `json:"level"`
	LastUsed time.Time `json:"lastUsed,omitempty"`
}

// SalaryRange is the candidate's expected monthly salary band.
type SalaryRange struct {
	Min      int    `json:"min"`
	Max      int    `json:"max"`
	Currency string `json:"currency,omitempty"`
}

// Validate reports a malformed range.
func (r SalaryRange) Validate() error {
	if r.Min > r.Max && r.Max > 0 {
		return fmt.Errorf("salary range min %d exceeds max %d", r.Min, r.Max)
	}
	return nil
}

// CandidateProfile is the per-request snapshot of a candidate built by the
// build-profile worker. It is a projection of the underlying candidate tables,
// owned by the request that built it and discarded at request end.
type CandidateProfile struct {
	UserID          string          `json:"userId"`
	Titles          []string        `json:"titles"` // ordered by recency
	Skills          []Skill         `json:"skills"`
	ExperienceYears int             `json:"experienceYears"`
	SalaryExpect    *SalaryRange    `json:"salaryExpect,omitempty"` // nil = no preference
	Leadership      LeadershipLevel `json:"leadershipLevel"`
	Industries      []string        `json:"targetIndustries,omitempty"`
	Locations       []string        `json:"preferredLocations,omitempty"`
	WorkAuthorized  bool            `json:"workAuthorized"`
}

// Tokens returns the lowercase token set of titles and skill names, used by
// the title/skill overlap sub-score.
func (p *CandidateProfile) Tokens() map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, t := range p.Titles {
		for _, tok := range Tokenize(t) {
			tokens[tok] = struct{}{}
		}
	}
	for _, s := range p.Skills {
		for _, tok := range Tokenize(s.Name) {
			tokens[tok] = struct{}{}
		}
	}
	return tokens
}

// Tokenize lowercases and splits a string into alphanumeric tokens, dropping
// one-character noise.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '+' && r != '#'
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) > 1 {
			out = append(out, f)
		}
	}
	return out
}
