// internal/workers/matching/coarse-score/config.go
package coarsescore

import (
	"time"

	"match-workers/internal/common/config"
)

type Config struct {
	Timeout  time.Duration
	Matching config.MatchingConfig
}
