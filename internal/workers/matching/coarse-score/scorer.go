// internal/workers/matching/coarse-score/scorer.go
package coarsescore

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"match-workers/internal/common/config"
	"match-workers/internal/models"
)

const neutralScore = 50.0

// BuildShortlist filters and scores the job page against the profile and
// returns the ranked shortlist, largest score first. Jobs older than the
// recency cutoff, jobs with a malformed salary band and excluded hashes are
// dropped before scoring, never down-weighted.
func BuildShortlist(profile *models.CandidateProfile, jobs []models.JobPosting,
	exclude map[string]struct{}, now time.Time, cfg config.MatchingConfig) []models.ScoredJob {

	tokens := profile.Tokens()

	var scored []models.ScoredJob
	for i := range jobs {
		job := &jobs[i]

		if _, skip := exclude[job.JobHash]; skip {
			continue
		}
		if job.AgeDays(now) > cfg.RecencyCutoffDays {
			continue
		}
		if !job.SalaryValid() {
			continue
		}

		score, reasons := scoreJob(profile, tokens, job, now, cfg)
		scored = append(scored, models.ScoredJob{
			Job:             *job,
			CoarseScore:     score,
			MatchingReasons: reasons,
		})
	}

	// Score descending, then newest posting, then job_hash so equal inputs
	// always produce the same order.
	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.CoarseScore != b.CoarseScore {
			return a.CoarseScore > b.CoarseScore
		}
		if !a.Job.PostDate.Equal(b.Job.PostDate) {
			return a.Job.PostDate.After(b.Job.PostDate)
		}
		return a.Job.JobHash < b.Job.JobHash
	})

	if cfg.ShortlistSize > 0 && len(scored) > cfg.ShortlistSize {
		scored = scored[:cfg.ShortlistSize]
	}
	return scored
}

func scoreJob(profile *models.CandidateProfile, tokens map[string]struct{},
	job *models.JobPosting, now time.Time, cfg config.MatchingConfig) (float64, []string) {

	var reasons []string

	titleSkill, matched := titleSkillScore(profile, tokens, job)
	if len(matched) > 0 {
		reasons = append(reasons, fmt.Sprintf("title matches: %s", strings.Join(matched, ", ")))
	}

	salary := salaryScore(profile.SalaryExpect, job)
	if salary >= 100 {
		reasons = append(reasons, "salary within expected range")
	}

	leadership := leadershipScore(profile.Leadership, job.LeadershipLevel(), cfg.UnderLevelPenalty)
	if profile.Leadership == job.LeadershipLevel() && job.SeniorityLevel != "" {
		reasons = append(reasons, "leadership level matches")
	}

	industry := industryScore(profile.Industries, job.Industry)
	if industry >= 100 {
		reasons = append(reasons, fmt.Sprintf("industry match: %s", job.Industry))
	}

	recency := recencyScore(job.AgeDays(now), cfg.RecencyCutoffDays)
	if job.AgeDays(now) <= 7 {
		reasons = append(reasons, "posted within the last week")
	}

	w := cfg.Weights
	total := titleSkill*w.TitleSkill +
		salary*w.Salary +
		leadership*w.Leadership +
		industry*w.Industry +
		recency*w.Recency

	return clamp(total), reasons
}

// titleSkillScore measures token overlap between the job title and the
// candidate's titles and skills, with a bonus for skills the description
// names explicitly.
func titleSkillScore(profile *models.CandidateProfile, tokens map[string]struct{},
	job *models.JobPosting) (float64, []string) {

	jobTokens := models.Tokenize(job.Title)
	if len(jobTokens) == 0 {
		return 0, nil
	}

	var matched []string
	for _, tok := range jobTokens {
		if _, ok := tokens[tok]; ok {
			matched = append(matched, tok)
		}
	}
	score := float64(len(matched)) / float64(len(jobTokens)) * 100

	if job.Description != "" && len(profile.Skills) > 0 {
		desc := make(map[string]struct{})
		for _, tok := range models.Tokenize(job.Description) {
			desc[tok] = struct{}{}
		}
		hits := 0
		for _, sk := range profile.Skills {
			if skillMentioned(sk.Name, desc) {
				hits++
			}
		}
		// up to 20 points for skills the posting asks for by name
		bonus := float64(hits) * 5
		if bonus > 20 {
			bonus = 20
		}
		score += bonus
	}

	return clamp(score), matched
}

func skillMentioned(name string, desc map[string]struct{}) bool {
	toks := models.Tokenize(name)
	if len(toks) == 0 {
		return false
	}
	for _, t := range toks {
		if _, ok := desc[t]; !ok {
			return false
		}
	}
	return true
}

// salaryScore compares the posting band with the expectation. Either side
// missing scores neutral 50: no preference is not a match and not a mismatch.
// A band that fully contains the expected range scores 100; anything less
// decays linearly with the part of the expectation the posting cannot cover,
// relative to the expectation midpoint.
func salaryScore(expect *models.SalaryRange, job *models.JobPosting) float64 {
	if expect == nil || !job.HasSalary() {
		return neutralScore
	}

	expLow, expHigh := fillBand(expect.Min, expect.Max)
	jobLow, jobHigh := fillBand(job.SalaryLow, job.SalaryHigh)

	mid := float64(expLow+expHigh) / 2
	if mid <= 0 {
		return 0
	}

	var uncovered float64
	if jobLow > expLow {
		uncovered += float64(jobLow - expLow)
	}
	if jobHigh < expHigh {
		uncovered += float64(expHigh - jobHigh)
	}
	if uncovered == 0 {
		return 100
	}
	return clamp(100 - uncovered/mid*100)
}

func fillBand(low, high int) (int, int) {
	if low == 0 {
		low = high
	}
	if high == 0 {
		high = low
	}
	return low, high
}

// leadershipScore maps ordinal distance to 100/60/20 and applies an extra
// penalty when the posting sits above the candidate's level, since reaching up
// is harder than stepping down.
func leadershipScore(candidate, job models.LeadershipLevel, underLevelPenalty float64) float64 {
	var base float64
	switch candidate.Distance(job) {
	case 0:
		base = 100
	case 1:
		base = 60
	default:
		base = 20
	}
	if job > candidate {
		base -= underLevelPenalty
	}
	return clamp(base)
}

// industryScore is neutral without stated preferences, 100 on an exact match,
// 60 on token overlap and 0 otherwise.
func industryScore(preferences []string, jobIndustry string) float64 {
	if len(preferences) == 0 {
		return neutralScore
	}
	if jobIndustry == "" {
		return neutralScore
	}

	jobTokens := make(map[string]struct{})
	for _, tok := range models.Tokenize(jobIndustry) {
		jobTokens[tok] = struct{}{}
	}

	best := 0.0
	for _, pref := range preferences {
		if strings.EqualFold(strings.TrimSpace(pref), strings.TrimSpace(jobIndustry)) {
			return 100
		}
		for _, tok := range models.Tokenize(pref) {
			if _, ok := jobTokens[tok]; ok {
				best = 60
			}
		}
	}
	return best
}

// recencyScore decays linearly from 100 at post time to 0 at the cutoff.
func recencyScore(ageDays, cutoffDays int) float64 {
	if cutoffDays <= 0 {
		return 100
	}
	if ageDays <= 0 {
		return 100
	}
	return clamp(100 * (1 - float64(ageDays)/float64(cutoffDays)))
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
