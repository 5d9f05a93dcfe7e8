// internal/workers/matching/recommend/handler.go
package recommend

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	stderrors "match-workers/internal/common/errors"
	"match-workers/internal/common/logger"
	"match-workers/internal/common/observability"
	"match-workers/internal/models"
	assemblerecs "match-workers/internal/workers/matching/assemble-recommendations"
	buildprofile "match-workers/internal/workers/matching/build-profile"
	coarsescore "match-workers/internal/workers/matching/coarse-score"
	llmrerank "match-workers/internal/workers/matching/llm-rerank"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const TaskType = "recommend-jobs"

// Searcher is the optional keyword prefilter in front of the coarse scorer.
type Searcher interface {
	SearchJobHashes(ctx context.Context, keywords string, postedAfter time.Time, size int) ([]string, error)
}

// Handler runs the whole recommendation pipeline for one request: profile
// build, coarse scoring, re-ranking and assembly. Only PROFILE_NOT_FOUND and
// NO_CANDIDATES_AFTER_FILTER escape to the caller; everything downstream of a
// valid shortlist degrades instead of failing.
type Handler struct {
	config     *Config
	cutoffDays int

	profiles  *buildprofile.Handler
	scorer    *coarsescore.Handler
	reranker  *llmrerank.Handler
	assembler *assemblerecs.Handler
	search    Searcher

	obs        *observability.Observability
	logger     logger.Logger
	errHandler *stderrors.ErrorHandler
}

func NewHandler(
	config *Config,
	cutoffDays int,
	profiles *buildprofile.Handler,
	scorer *coarsescore.Handler,
	reranker *llmrerank.Handler,
	assembler *assemblerecs.Handler,
	search Searcher,
	obs *observability.Observability,
	log logger.Logger,
) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		cutoffDays: cutoffDays,
		profiles:   profiles,
		scorer:     scorer,
		reranker:   reranker,
		assembler:  assembler,
		search:     search,
		obs:        obs,
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
		h.recordRequest(ctx, "error")
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.recordRequest(ctx, output.Set.Source)
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	requestID := input.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	log := h.logger.WithFields(map[string]interface{}{
		"userId":    input.UserID,
		"requestId": requestID,
	})

	start := time.Now()
	profileOut, err := h.profiles.Execute(ctx, &buildprofile.Input{UserID: input.UserID})
	h.recordStage(ctx, "build-profile", start)
	if err != nil {
		return nil, err
	}
	profile := profileOut.Profile

	hashes := h.prefilter(ctx, &profile, log)

	start = time.Now()
	coarseOut, err := h.scorer.Execute(ctx, &coarsescore.Input{Profile: profile, JobHashes: hashes})
	h.recordStage(ctx, "coarse-score", start)
	if err != nil {
		return nil, err
	}

	rctx := ctx
	if h.config.RerankTimeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, h.config.RerankTimeout)
		defer cancel()
	}
	start = time.Now()
	reranked, err := h.reranker.Execute(rctx, &llmrerank.Input{
		Profile:   profile,
		Shortlist: coarseOut.Shortlist,
	})
	h.recordStage(ctx, "llm-rerank", start)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	assembleOut, err := h.assembler.Execute(ctx, &assemblerecs.Input{
		UserID:        input.UserID,
		RequestID:     requestID,
		Shortlist:     reranked.Shortlist,
		Reranked:      reranked.Reranked,
		ExcludeHashes: input.ExcludeHashes,
		Limit:         input.Limit,
	})
	h.recordStage(ctx, "assemble", start)
	if err != nil {
		return nil, err
	}
	set := assembleOut.Set

	log.Info("recommendation request finished", map[string]interface{}{
		"source":          set.Source,
		"recommendations": len(set.Recommendations),
	})

	return &Output{Set: set}, nil
}

// prefilter narrows the job set through the search index when enabled. A
// search failure is logged and skipped: the scorer pages PostgreSQL instead.
func (h *Handler) prefilter(ctx context.Context, profile *models.CandidateProfile, log logger.Logger) []string {
	if !h.config.SearchEnabled || h.search == nil {
		return nil
	}

	keywords := searchKeywords(profile)
	cutoff := time.Now().AddDate(0, 0, -h.cutoffDays)

	hashes, err := h.search.SearchJobHashes(ctx, keywords, cutoff, h.config.SearchSize)
	if err != nil {
		log.Warn("search prefilter failed, falling back to full page", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}
	return hashes
}

// searchKeywords builds the prefilter query from titles and the strongest
// skills.
func searchKeywords(profile *models.CandidateProfile) string {
	parts := append([]string{}, profile.Titles...)
	for i, s := range profile.Skills {
		if i >= 5 {
			break
		}
		parts = append(parts, s.Name)
	}
	return strings.Join(parts, " ")
}

func (h *Handler) recordStage(ctx context.Context, stage string, start time.Time) {
	if h.obs != nil {
		h.obs.RecordStageDuration(ctx, stage, time.Since(start))
	}
}

func (h *Handler) recordRequest(ctx context.Context, outcome string) {
	if h.obs != nil {
		h.obs.RecordRequest(ctx, outcome)
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

// Execute runs the pipeline directly, outside a Zeebe job.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
