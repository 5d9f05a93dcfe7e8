// internal/workers/matching/recommend/config.go
package recommend

import "time"

type Config struct {
	Timeout time.Duration

	// RerankTimeout bounds the completion stage alone so a slow model cannot
	// consume the whole request budget.
	RerankTimeout time.Duration

	SearchEnabled bool
	SearchSize    int
}
