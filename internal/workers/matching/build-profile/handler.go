// internal/workers/matching/build-profile/handler.go
package buildprofile

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	stderrors "match-workers/internal/common/errors"
	"match-workers/internal/common/logger"
	"match-workers/internal/models"
	"match-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "build-profile"

	cacheKeyPrefix = "candidate:profile:"
)

// Handler builds the per-request CandidateProfile snapshot from the candidate
// tables, with a short-lived Redis cache in front.
type Handler struct {
	config     *Config
	candidates *store.CandidateStore
	redis      *redis.Client
	logger     logger.Logger
	errHandler *stderrors.ErrorHandler
}

func NewHandler(config *Config, candidates *store.CandidateStore, rdb *redis.Client, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		candidates: candidates,
		redis:      rdb,
		logger:     l,
		errHandler: stderrors.NewErrorHandler(l),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errHandler.HandleJobError(context.Background(), client, job, stderrors.NewParseError(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if cached := h.fromCache(ctx, input.UserID); cached != nil {
		return &Output{Profile: *cached}, nil
	}

	data, err := h.candidates.GetProfileData(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	profile := buildProfile(input.UserID, data, time.Now())

	h.toCache(ctx, &profile)

	h.logger.Info("profile built", map[string]interface{}{
		"userId":          input.UserID,
		"titles":          len(profile.Titles),
		"skills":          len(profile.Skills),
		"experienceYears": profile.ExperienceYears,
		"leadership":      profile.Leadership.String(),
	})

	return &Output{Profile: profile}, nil
}

// buildProfile assembles the snapshot. Missing salary expectation becomes a
// nil range (no preference, never zero); missing leadership signals default
// to IC.
func buildProfile(userID string, data *store.ProfileData, now time.Time) models.CandidateProfile {
	profile := models.CandidateProfile{
		UserID:         userID,
		Titles:         collectTitles(data),
		Leadership:     models.ParseLeadershipLevel(data.SeniorityLevel),
		Industries:     data.Industries,
		Locations:      data.Locations,
		WorkAuthorized: data.WorkAuthorized,
	}

	for _, sk := range data.Skills {
		skill := models.Skill{Name: sk.Name, Level: clampLevel(sk.Level)}
		if t, ok := parseFlexibleDate(sk.LastUsed); ok {
			skill.LastUsed = t
		}
		profile.Skills = append(profile.Skills, skill)
	}

	profile.ExperienceYears = experienceYears(data.Work, now)

	if data.SalaryMin > 0 || data.SalaryMax > 0 {
		expect := models.SalaryRange{
			Min:      data.SalaryMin,
			Max:      data.SalaryMax,
			Currency: data.SalaryCurrency,
		}
		if expect.Max > 0 && expect.Min > expect.Max {
			expect.Min, expect.Max = expect.Max, expect.Min
		}
		profile.SalaryExpect = &expect
	}

	return profile
}

// collectTitles orders titles by recency: current title first, then work
// history (already newest-first), then stated target titles. Duplicates keep
// their first position.
func collectTitles(data *store.ProfileData) []string {
	seen := make(map[string]struct{})
	var titles []string

	add := func(t string) {
		if t == "" {
			return
		}
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		titles = append(titles, t)
	}

	add(data.CurrentTitle)
	for _, w := range data.Work {
		add(w.Title)
	}
	for _, t := range data.TargetTitles {
		add(t)
	}
	return titles
}

// experienceYears merges overlapping work ranges and sums whole years so
// parallel positions are not double counted.
func experienceYears(work []store.WorkRow, now time.Time) int {
	type interval struct{ start, end time.Time }
	var intervals []interval

	for _, w := range work {
		start, ok := parseFlexibleDate(w.StartDate)
		if !ok {
			continue
		}
		end := now
		if w.EndDate.Valid {
			if e, ok := parseFlexibleDate(w.EndDate.String); ok {
				end = e
			}
		}
		if end.Before(start) {
			continue
		}
		intervals = append(intervals, interval{start: start, end: end})
	}

	if len(intervals) == 0 {
		return 0
	}

	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].start.Before(intervals[j].start)
	})

	var total time.Duration
	current := intervals[0]
	for _, iv := range intervals[1:] {
		if iv.start.After(current.end) {
			total += current.end.Sub(current.start)
			current = iv
			continue
		}
		if iv.end.After(current.end) {
			current.end = iv.end
		}
	}
	total += current.end.Sub(current.start)

	return int(total.Hours() / (24 * 365.25))
}

// parseFlexibleDate accepts the date shapes found in the candidate tables:
// "2006-01-02", "2006-01" and "2006".
func parseFlexibleDate(s string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func clampLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > 5 {
		return 5
	}
	return level
}

func (h *Handler) fromCache(ctx context.Context, userID string) *models.CandidateProfile {
	if h.redis == nil {
		return nil
	}
	val, err := h.redis.Get(ctx, cacheKeyPrefix+userID).Result()
	if err != nil {
		return nil
	}
	var profile models.CandidateProfile
	if err := json.Unmarshal([]byte(val), &profile); err != nil {
		return nil
	}
	return &profile
}

func (h *Handler) toCache(ctx context.Context, profile *models.CandidateProfile) {
	if h.redis == nil {
		return
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := h.redis.Set(ctx, cacheKeyPrefix+profile.UserID, data, h.config.CacheTTL).Err(); err != nil {
		h.logger.Warn("profile cache write failed", map[string]interface{}{
			"userId": profile.UserID,
			"error":  err.Error(),
		})
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

// Execute runs the profile build directly, outside a Zeebe job.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
