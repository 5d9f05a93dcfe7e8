// Package completion abstracts the external text-completion service used by
// the llm-rerank worker. Two backends exist: the Gemini API and a generic
// JSON-over-HTTP endpoint.
package completion

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"match-workers/internal/common/config"
	"match-workers/internal/common/logger"

	"google.golang.org/genai"
)

// Service is the synchronous request/response completion contract. The
// response is the raw structured text returned by the model.
type Service interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// New builds the configured completion backend.
func New(ctx context.Context, cfg config.CompletionConfig, log logger.Logger) (Service, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGemini(ctx, cfg.APIKey, cfg.Model)
	case "http":
		return NewHTTPService(cfg.BaseURL, config.GetDuration(cfg.Timeout), log), nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.Provider)
	}
}

// statusError marks an HTTP backend failure with its status code.
type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("completion endpoint returned status %d", e.status)
}

// IsTransient reports whether a completion failure is worth the single retry:
// timeouts, connectivity errors and 5xx/429 responses. Auth failures and
// malformed payloads are not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var se *statusError
	if errors.As(err, &se) {
		return se.status >= 500 || se.status == 429
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code >= 500 || apiErr.Code == 429
	}

	// Conservative string match for wrapped transport errors.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "unavailable") ||
		strings.Contains(msg, "connection refused")
}
