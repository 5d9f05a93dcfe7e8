package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"match-workers/internal/common/httpclient"
	"match-workers/internal/common/logger"
)

// HTTPService implements Service against a generic JSON completion endpoint:
// POST {baseURL}/api/ai/complete with {"system": ..., "prompt": ...} and a
// {"text": ...} response.
type HTTPService struct {
	baseURL string
	client  *httpclient.Client
	logger  logger.Logger
}

func NewHTTPService(baseURL string, timeout time.Duration, log logger.Logger) *HTTPService {
	return &HTTPService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpclient.New(timeout),
		logger:  log.WithFields(map[string]interface{}{"component": "completion-http"}),
	}
}

func (s *HTTPService) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	requestBody := map[string]interface{}{
		"system": systemPrompt,
		"prompt": userPrompt,
	}

	body, _ := json.Marshal(requestBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/ai/complete", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &statusError{status: resp.StatusCode}
	}

	var apiResponse struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}

	if strings.TrimSpace(apiResponse.Text) == "" {
		return "", errors.New("completion endpoint returned empty response")
	}

	return apiResponse.Text, nil
}
