package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseApplicationStatus(t *testing.T) {
	for _, valid := range []string{"saved", "applied", "interviewed", "offered", "rejected"} {
		st, err := ParseApplicationStatus(valid)
		assert.NoError(t, err)
		assert.Equal(t, ApplicationStatus(valid), st)
	}

	_, err := ParseApplicationStatus("SAVED")
	assert.Error(t, err)
	_, err = ParseApplicationStatus("")
	assert.Error(t, err)
}

func TestIsTransitionAllowed(t *testing.T) {
	cases := []struct {
		from, to ApplicationStatus
		allowed  bool
	}{
		{StatusSaved, StatusApplied, true},
		{StatusSaved, StatusRejected, true},
		{StatusSaved, StatusInterviewed, false},
		{StatusApplied, StatusInterviewed, true},
		{StatusApplied, StatusOffered, false},
		{StatusInterviewed, StatusOffered, true},
		{StatusInterviewed, StatusRejected, true},
		{StatusOffered, StatusRejected, false}, // terminal
		{StatusRejected, StatusSaved, false},   // terminal
		{StatusApplied, StatusSaved, false},    // no going back
	}

	for _, tc := range cases {
		assert.Equalf(t, tc.allowed, IsTransitionAllowed(tc.from, tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestParseLeadershipLevel(t *testing.T) {
	assert.Equal(t, LevelIC, ParseLeadershipLevel("IC"))
	assert.Equal(t, LevelIC, ParseLeadershipLevel(""))
	assert.Equal(t, LevelIC, ParseLeadershipLevel("Senior"))
	assert.Equal(t, LevelTeamLead, ParseLeadershipLevel("Team Lead"))
	assert.Equal(t, LevelTeamLead, ParseLeadershipLevel("manager"))
	assert.Equal(t, LevelTeamLeadPlus, ParseLeadershipLevel("TeamLead++"))
	assert.Equal(t, LevelTeamLeadPlus, ParseLeadershipLevel("Director"))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"senior", "software", "engineer"}, Tokenize("Senior Software Engineer"))
	assert.Equal(t, []string{"c#", "c++"}, Tokenize("C#/C++"))
	assert.Empty(t, Tokenize("- -"))
}
