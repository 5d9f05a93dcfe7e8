// internal/workers/matching/llm-rerank/prompt.go
package llmrerank

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"match-workers/internal/models"
)

const systemPrompt = `You are a career advisor ranking job postings for one candidate.
You receive the candidate profile and a numbered shortlist of postings, each with
its job_hash. Assess every posting for fit against the profile.

Respond with JSON only, no prose and no markdown fences. The response is one
object mapping each job_hash, exactly as given, to its assessment:
{
  "<job_hash>": {
    "score": <0-100>,
    "matching_reasons": ["..."],
    "non_matching_points": ["..."],
    "personalized_assessment": "<2-3 sentences addressed to the candidate>",
    "career_impact": "<one sentence on trajectory>",
    "leadership_match": <true|false>
  }
}

Include one entry per posting. Never invent a job_hash and never omit one.`

// buildUserPrompt renders the profile and the shortlist into the single
// re-ranking request. Every job_hash is enumerated so the response can be
// joined back deterministically.
func buildUserPrompt(profile *models.CandidateProfile, shortlist []models.ScoredJob) string {
	var b strings.Builder

	b.WriteString("Candidate profile:\n")
	fmt.Fprintf(&b, "- Titles: %s\n", strings.Join(profile.Titles, "; "))
	if len(profile.Skills) > 0 {
		names := make([]string, 0, len(profile.Skills))
		for _, s := range profile.Skills {
			names = append(names, fmt.Sprintf("%s (level %d)", s.Name, s.Level))
		}
		fmt.Fprintf(&b, "- Skills: %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(&b, "- Experience: %d years\n", profile.ExperienceYears)
	fmt.Fprintf(&b, "- Leadership level: %s\n", profile.Leadership.String())
	if profile.SalaryExpect != nil {
		fmt.Fprintf(&b, "- Expected salary: %d-%d %s\n",
			profile.SalaryExpect.Min, profile.SalaryExpect.Max, profile.SalaryExpect.Currency)
	}
	if len(profile.Industries) > 0 {
		fmt.Fprintf(&b, "- Target industries: %s\n", strings.Join(profile.Industries, ", "))
	}
	if len(profile.Locations) > 0 {
		fmt.Fprintf(&b, "- Preferred locations: %s\n", strings.Join(profile.Locations, ", "))
	}

	fmt.Fprintf(&b, "\nShortlist (%d postings):\n", len(shortlist))
	for i, s := range shortlist {
		job := s.Job
		fmt.Fprintf(&b, "\n%d. job_hash: %s\n", i+1, job.JobHash)
		fmt.Fprintf(&b, "   %s at %s", job.Title, job.Company)
		if job.Location != "" {
			fmt.Fprintf(&b, " (%s)", job.Location)
		}
		b.WriteString("\n")
		if job.HasSalary() {
			fmt.Fprintf(&b, "   Salary: %d-%d\n", job.SalaryLow, job.SalaryHigh)
		}
		if job.Industry != "" {
			fmt.Fprintf(&b, "   Industry: %s\n", job.Industry)
		}
		if job.SeniorityLevel != "" {
			fmt.Fprintf(&b, "   Seniority: %s\n", job.SeniorityLevel)
		}
		if desc := truncate(job.Description, 600); desc != "" {
			fmt.Fprintf(&b, "   Description: %s\n", desc)
		}
	}

	return b.String()
}

// truncate cuts at a rune boundary so a multi-byte character is never split.
func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// extractJSON strips markdown code fences that models wrap around JSON despite
// instructions, and trims to the outermost object.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
