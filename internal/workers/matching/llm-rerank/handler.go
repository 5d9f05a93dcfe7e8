// internal/workers/matching/llm-rerank/handler.go
package llmrerank

import (
	"context"
	"encoding/json"
	"fmt"

	"match-workers/internal/common/completion"
	stderrors "match-workers/internal/common/errors"
	"match-workers/internal/common/logger"
	"match-workers/internal/common/metrics"
	"match-workers/internal/common/validation"
	"match-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "llm-rerank"

// responseSchema constrains the model output before it touches scoring state.
// The response is one object mapping job_hash to a ranking entry; score is
// mandatory per entry, everything else is advisory.
var responseSchema = map[string]interface{}{
	"type": "object",
	"additionalProperties": map[string]interface{}{
		"type":     "object",
		"required": []string{"score"},
		"properties": map[string]interface{}{
			"score":                   map[string]interface{}{"type": "number", "minimum": 0, "maximum": 100},
			"matching_reasons":        map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
			"non_matching_points":     map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
			"personalized_assessment": map[string]interface{}{"type": "string"},
			"career_impact":           map[string]interface{}{"type": "string"},
			"leadership_match":        map[string]interface{}{"type": "boolean"},
		},
	},
}

// Handler sends the shortlist to the completion service in a single structured
// request and merges the validated rankings back. Any failure degrades to the
// untouched coarse shortlist; re-ranking problems are never user-visible.
type Handler struct {
	config     *Config
	completion completion.Service
	logger     logger.Logger
	errHandler *stderrors.ErrorHandler
}

func NewHandler(config *Config, svc completion.Service, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		completion: svc,
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
	if len(input.Shortlist) == 0 {
		return &Output{Shortlist: input.Shortlist, Reranked: false}, nil
	}

	rankings, err := h.requestRankings(ctx, &input.Profile, input.Shortlist)
	if err != nil {
		code := stderrors.CodeOf(err)
		metrics.RerankFallbacks.WithLabelValues(string(code)).Inc()
		h.logger.Warn("re-ranking failed, passing shortlist through", map[string]interface{}{
			"userId":    input.Profile.UserID,
			"errorCode": string(code),
			"error":     err.Error(),
		})
		return &Output{
			Shortlist:    input.Shortlist,
			Reranked:     false,
			FallbackCode: string(code),
		}, nil
	}

	merged, covered := mergeRankings(input.Shortlist, rankings)

	// A response that covers none of the shortlist is a coarse-only result,
	// not a two-stage one.
	if covered == 0 {
		metrics.RerankFallbacks.WithLabelValues(string(stderrors.ErrCodeExternalServiceFatal)).Inc()
		h.logger.Warn("completion response covered no shortlisted jobs, keeping coarse order", map[string]interface{}{
			"userId": input.Profile.UserID,
			"jobs":   len(input.Shortlist),
		})
		return &Output{
			Shortlist:    input.Shortlist,
			Reranked:     false,
			FallbackCode: string(stderrors.ErrCodeExternalServiceFatal),
		}, nil
	}

	h.logger.Info("shortlist re-ranked", map[string]interface{}{
		"userId":  input.Profile.UserID,
		"jobs":    len(merged),
		"covered": covered,
	})

	return &Output{Shortlist: merged, Reranked: true}, nil
}

// requestRankings performs the completion round-trip with a single retry on
// transient failures, then validates and decodes the response.
func (h *Handler) requestRankings(ctx context.Context, profile *models.CandidateProfile, shortlist []models.ScoredJob) (map[string]ranking, error) {
	userPrompt := buildUserPrompt(profile, shortlist)

	var raw string
	var err error
	attempts := h.config.MaxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		raw, err = h.completion.Complete(ctx, systemPrompt, userPrompt)
		if err == nil {
			break
		}
		if attempt < attempts && completion.IsTransient(err) {
			h.logger.Warn("completion attempt failed, retrying", map[string]interface{}{
				"attempt": attempt,
				"error":   err.Error(),
			})
			continue
		}
		if completion.IsTransient(err) {
			return nil, stderrors.NewExternalServiceDegradedError(err)
		}
		return nil, stderrors.NewExternalServiceFatalError(err)
	}

	payload := []byte(extractJSON(raw))

	result, err := validation.ValidateJSON(responseSchema, payload)
	if err != nil {
		return nil, stderrors.NewExternalServiceFatalError(err)
	}
	if !result.Valid {
		return nil, stderrors.NewExternalServiceFatalError(
			fmt.Errorf("response failed schema validation: %s", result.ErrorSummary()))
	}

	var rankings map[string]ranking
	if err := json.Unmarshal(payload, &rankings); err != nil {
		return nil, stderrors.NewExternalServiceFatalError(err)
	}
	return rankings, nil
}

// mergeRankings joins rankings back onto the shortlist by job_hash. Entries
// the model skipped keep their coarse score; hashes the model invented are
// dropped.
func mergeRankings(shortlist []models.ScoredJob, rankings map[string]ranking) ([]models.ScoredJob, int) {
	merged := make([]models.ScoredJob, len(shortlist))
	covered := 0
	for i, s := range shortlist {
		r, ok := rankings[s.Job.JobHash]
		if !ok {
			merged[i] = s
			continue
		}
		covered++
		s.HasLLM = true
		s.LLMScore = r.Score
		s.LLMReasons = r.MatchingReasons
		s.NonMatching = r.NonMatching
		s.Assessment = r.Assessment
		s.CareerImpact = r.CareerImpact
		s.LeadershipMatch = r.LeadershipMatch
		merged[i] = s
	}
	return merged, covered
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

// Execute runs the re-ranking directly, outside a Zeebe job.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
