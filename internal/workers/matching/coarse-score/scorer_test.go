// internal/workers/matching/coarse-score/scorer_test.go
package coarsescore

import (
	"testing"
	"time"

	"match-workers/internal/common/config"
	"match-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

func testMatchingConfig() config.MatchingConfig {
	return config.MatchingConfig{
		ShortlistSize:     20,
		RecencyCutoffDays: 90,
		JobPageSize:       500,
		UnderLevelPenalty: 10,
		Weights: config.MatchWeights{
			TitleSkill: 0.35,
			Salary:     0.20,
			Leadership: 0.15,
			Industry:   0.15,
			Recency:    0.15,
		},
	}
}

func testProfile() models.CandidateProfile {
	return models.CandidateProfile{
		UserID: "user-1",
		Titles: []string{"Backend Engineer", "Software Engineer"},
		Skills: []models.Skill{
			{Name: "Go", Level: 5},
			{Name: "PostgreSQL", Level: 4},
		},
		ExperienceYears: 6,
		SalaryExpect:    &models.SalaryRange{Min: 6000, Max: 9000},
		Leadership:      models.LevelIC,
		Industries:      []string{"Fintech"},
	}
}

func posting(hash string, ageDays int) models.JobPosting {
	return models.JobPosting{
		JobHash:  hash,
		Company:  "Acme",
		Title:    "Backend Engineer",
		PostDate: testNow.AddDate(0, 0, -ageDays),
	}
}

func TestBuildShortlistExcludesStaleJobs(t *testing.T) {
	profile := testProfile()
	jobs := []models.JobPosting{
		posting("fresh", 10),
		posting("stale", 120),
	}

	shortlist := BuildShortlist(&profile, jobs, nil, testNow, testMatchingConfig())

	// Jobs past the cutoff are excluded entirely, not down-weighted.
	require.Len(t, shortlist, 1)
	assert.Equal(t, "fresh", shortlist[0].Job.JobHash)
}

func TestBuildShortlistSkipsMalformedSalary(t *testing.T) {
	profile := testProfile()
	bad := posting("bad-salary", 5)
	bad.SalaryLow, bad.SalaryHigh = 9000, 4000

	shortlist := BuildShortlist(&profile, []models.JobPosting{bad, posting("ok", 5)}, nil, testNow, testMatchingConfig())

	require.Len(t, shortlist, 1)
	assert.Equal(t, "ok", shortlist[0].Job.JobHash)
}

func TestBuildShortlistExcludesSavedApplied(t *testing.T) {
	profile := testProfile()
	jobs := []models.JobPosting{posting("seen", 5), posting("new", 5)}
	exclude := map[string]struct{}{"seen": {}}

	shortlist := BuildShortlist(&profile, jobs, exclude, testNow, testMatchingConfig())

	require.Len(t, shortlist, 1)
	assert.Equal(t, "new", shortlist[0].Job.JobHash)
}

func TestBuildShortlistDeterministicTieBreaks(t *testing.T) {
	profile := testProfile()
	// Identical postings except hash and age. Same age -> hash ascending.
	a := posting("bbb", 5)
	b := posting("aaa", 5)
	c := posting("ccc", 2) // newer, same content otherwise

	first := BuildShortlist(&profile, []models.JobPosting{a, b, c}, nil, testNow, testMatchingConfig())
	second := BuildShortlist(&profile, []models.JobPosting{c, a, b}, nil, testNow, testMatchingConfig())

	require.Len(t, first, 3)
	assert.Equal(t, first, second)

	// c scores higher on recency; a and b tie and fall back to hash order.
	assert.Equal(t, "ccc", first[0].Job.JobHash)
	assert.Equal(t, "aaa", first[1].Job.JobHash)
	assert.Equal(t, "bbb", first[2].Job.JobHash)
}

func TestSalaryScoreNeutralWithoutPreference(t *testing.T) {
	job := posting("j", 5)
	job.SalaryLow, job.SalaryHigh = 5000, 7000

	assert.Equal(t, 50.0, salaryScore(nil, &job))

	noSalary := posting("k", 5)
	assert.Equal(t, 50.0, salaryScore(&models.SalaryRange{Min: 6000, Max: 9000}, &noSalary))
}

func TestSalaryScoreContainmentAndDecay(t *testing.T) {
	expect := &models.SalaryRange{Min: 6000, Max: 9000}

	contained := posting("j", 5)
	contained.SalaryLow, contained.SalaryHigh = 5000, 10000
	assert.Equal(t, 100.0, salaryScore(expect, &contained))

	// Partial overlap leaves part of the expectation uncovered and must score
	// below full containment.
	partial := posting("p", 5)
	partial.SalaryLow, partial.SalaryHigh = 3000, 6100
	partialScore := salaryScore(expect, &partial)
	assert.Less(t, partialScore, 100.0)
	assert.Greater(t, partialScore, 0.0)

	below := posting("k", 5)
	below.SalaryLow, below.SalaryHigh = 3000, 4500
	belowScore := salaryScore(expect, &below)
	assert.Less(t, belowScore, partialScore)

	farBelow := posting("l", 5)
	farBelow.SalaryLow, farBelow.SalaryHigh = 100, 200
	assert.Less(t, salaryScore(expect, &farBelow), belowScore)
}

func TestLeadershipScoreAsymmetric(t *testing.T) {
	penalty := 10.0

	assert.Equal(t, 100.0, leadershipScore(models.LevelIC, models.LevelIC, penalty))

	// Stepping down one level costs less than reaching up one level.
	down := leadershipScore(models.LevelTeamLead, models.LevelIC, penalty)
	up := leadershipScore(models.LevelIC, models.LevelTeamLead, penalty)
	assert.Equal(t, 60.0, down)
	assert.Equal(t, 50.0, up)
	assert.Less(t, up, down)

	assert.Equal(t, 10.0, leadershipScore(models.LevelIC, models.LevelTeamLeadPlus, penalty))
}

func TestIndustryScore(t *testing.T) {
	assert.Equal(t, 50.0, industryScore(nil, "Fintech"))
	assert.Equal(t, 50.0, industryScore([]string{"Fintech"}, ""))
	assert.Equal(t, 100.0, industryScore([]string{"fintech"}, "Fintech"))
	assert.Equal(t, 60.0, industryScore([]string{"Consumer Fintech"}, "Fintech Infrastructure"))
	assert.Equal(t, 0.0, industryScore([]string{"Healthcare"}, "Fintech"))
}

func TestRecencyScoreLinearDecay(t *testing.T) {
	assert.Equal(t, 100.0, recencyScore(0, 90))
	assert.InDelta(t, 50.0, recencyScore(45, 90), 0.01)
	assert.Equal(t, 0.0, recencyScore(90, 90))
}

func TestWellMatchedJobOutscoresPoorMatch(t *testing.T) {
	profile := testProfile()
	cfg := testMatchingConfig()

	good := models.JobPosting{
		JobHash:     "job-a",
		Company:     "Acme",
		Title:       "Backend Engineer",
		SalaryLow:   7000,
		SalaryHigh:  10000,
		Industry:    "Fintech",
		PostDate:    testNow.AddDate(0, 0, -3),
		Description: "We build payment systems in Go on PostgreSQL.",
	}
	poor := models.JobPosting{
		JobHash:        "job-b",
		Company:        "Globex",
		Title:          "Sales Director",
		SalaryLow:      2000,
		SalaryHigh:     3000,
		Industry:       "Retail",
		SeniorityLevel: "director",
		PostDate:       testNow.AddDate(0, 0, -80),
	}

	shortlist := BuildShortlist(&profile, []models.JobPosting{poor, good}, nil, testNow, cfg)
	require.Len(t, shortlist, 2)

	assert.Equal(t, "job-a", shortlist[0].Job.JobHash)
	assert.Greater(t, shortlist[0].CoarseScore, 50.0)
	assert.Greater(t, shortlist[0].CoarseScore, shortlist[1].CoarseScore)
	assert.NotEmpty(t, shortlist[0].MatchingReasons)
}

func TestBuildShortlistTruncates(t *testing.T) {
	profile := testProfile()
	cfg := testMatchingConfig()
	cfg.ShortlistSize = 3

	var jobs []models.JobPosting
	for i := 0; i < 10; i++ {
		jobs = append(jobs, posting(string(rune('a'+i)), i+1))
	}

	shortlist := BuildShortlist(&profile, jobs, nil, testNow, cfg)
	assert.Len(t, shortlist, 3)
}
