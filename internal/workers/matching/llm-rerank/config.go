// internal/workers/matching/llm-rerank/config.go
package llmrerank

import "time"

type Config struct {
	Timeout    time.Duration
	MaxRetries int // transient completion failures only
}
