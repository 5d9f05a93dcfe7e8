// internal/workers/matching/assemble-recommendations/handler.go
package assemblerecs

import (
	"context"
	"encoding/json"
	"sort"

	stderrors "match-workers/internal/common/errors"
	"match-workers/internal/common/logger"
	"match-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const TaskType = "assemble-recommendations"

// Handler turns the (possibly re-ranked) shortlist into the final
// RecommendationSet: authoritative ordering, truncation to the response limit
// and the degraded-source marker.
type Handler struct {
	config     *Config
	logger     logger.Logger
	errHandler *stderrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
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

	output, err := h.execute(context.Background(), &input)
	if err != nil {
		h.errHandler.HandleJobError(context.Background(), client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	requestID := input.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	exclude := make(map[string]struct{}, len(input.ExcludeHashes))
	for _, hash := range input.ExcludeHashes {
		exclude[hash] = struct{}{}
	}

	kept := make([]models.ScoredJob, 0, len(input.Shortlist))
	seen := make(map[string]struct{}, len(input.Shortlist))
	for _, s := range input.Shortlist {
		if _, skip := exclude[s.Job.JobHash]; skip {
			continue
		}
		if _, dup := seen[s.Job.JobHash]; dup {
			continue
		}
		seen[s.Job.JobHash] = struct{}{}
		kept = append(kept, s)
	}

	// Authoritative ordering: final score, then newest posting, then hash.
	sort.Slice(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if a.FinalScore() != b.FinalScore() {
			return a.FinalScore() > b.FinalScore()
		}
		if !a.Job.PostDate.Equal(b.Job.PostDate) {
			return a.Job.PostDate.After(b.Job.PostDate)
		}
		return a.Job.JobHash < b.Job.JobHash
	})

	limit := input.Limit
	if limit <= 0 {
		limit = h.config.FinalLimit
	}
	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}

	set := models.RecommendationSet{
		RequestID:       requestID,
		UserID:          input.UserID,
		Source:          models.SourceCoarseOnly,
		Recommendations: make([]models.Recommendation, 0, len(kept)),
	}
	if input.Reranked {
		set.Source = models.SourceTwoStage
	}

	for _, s := range kept {
		set.Recommendations = append(set.Recommendations, toRecommendation(s))
	}

	h.logger.Info("recommendations assembled", map[string]interface{}{
		"userId":          input.UserID,
		"requestId":       requestID,
		"source":          set.Source,
		"recommendations": len(set.Recommendations),
	})

	return &Output{Set: set}, nil
}

// toRecommendation projects a scored job into its response shape. Re-ranked
// entries carry the model's reasons; coarse-only entries fall back to the
// scorer's.
func toRecommendation(s models.ScoredJob) models.Recommendation {
	rec := models.Recommendation{
		JobHash:         s.Job.JobHash,
		Company:         s.Job.Company,
		Title:           s.Job.Title,
		Location:        s.Job.Location,
		Score:           s.FinalScore(),
		MatchingReasons: s.MatchingReasons,
		LeadershipMatch: s.LeadershipMatch,
	}
	if s.HasLLM {
		if len(s.LLMReasons) > 0 {
			rec.MatchingReasons = s.LLMReasons
		}
		rec.NonMatching = s.NonMatching
		rec.Assessment = s.Assessment
		rec.CareerImpact = s.CareerImpact
	}
	return rec
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

// Execute runs assembly directly, outside a Zeebe job.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
