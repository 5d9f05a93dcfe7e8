// internal/workers/matching/coarse-score/handler.go
package coarsescore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	stderrors "match-workers/internal/common/errors"
	"match-workers/internal/common/logger"
	"match-workers/internal/common/metrics"
	"match-workers/internal/models"
	"match-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "coarse-score"

// Handler runs the cheap deterministic filter and scorer that turns the
// active job page into a shortlist for the re-ranker.
type Handler struct {
	config     *Config
	jobs       *store.JobStore
	userState  *store.UserStateStore
	logger     logger.Logger
	errHandler *stderrors.ErrorHandler
}

func NewHandler(config *Config, jobs *store.JobStore, userState *store.UserStateStore, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		jobs:       jobs,
		userState:  userState,
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
	now := time.Now()
	cfg := h.config.Matching
	cutoff := now.AddDate(0, 0, -cfg.RecencyCutoffDays)

	var (
		jobs []models.JobPosting
		err  error
	)
	if len(input.JobHashes) > 0 {
		jobs, err = h.jobs.ListJobsByHashes(ctx, input.JobHashes)
	} else {
		jobs, err = h.jobs.ListActiveJobs(ctx, store.ListJobsFilter{
			PostedAfter: cutoff,
			Limit:       cfg.JobPageSize,
		})
	}
	if err != nil {
		return nil, err
	}

	exclude := map[string]struct{}{}
	if cfg.ExcludeSavedApplied {
		exclude, err = h.userState.ListSavedOrApplied(ctx, input.Profile.UserID)
		if err != nil {
			// The exclusion set is an improvement, not a gate.
			h.logger.Warn("saved/applied lookup failed, recommending without exclusions", map[string]interface{}{
				"userId": input.Profile.UserID,
				"error":  err.Error(),
			})
			exclude = map[string]struct{}{}
		}
	}

	shortlist := BuildShortlist(&input.Profile, jobs, exclude, now, cfg)
	if len(shortlist) == 0 {
		return nil, stderrors.NewNoCandidatesAfterFilterError(
			fmt.Sprintf("considered %d postings, cutoff %d days", len(jobs), cfg.RecencyCutoffDays))
	}

	metrics.ShortlistSize.Observe(float64(len(shortlist)))

	h.logger.Info("shortlist built", map[string]interface{}{
		"userId":     input.Profile.UserID,
		"considered": len(jobs),
		"shortlist":  len(shortlist),
		"topScore":   shortlist[0].CoarseScore,
	})

	return &Output{Shortlist: shortlist, Considered: len(jobs)}, nil
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

// Execute runs the filter and scorer directly, outside a Zeebe job.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
