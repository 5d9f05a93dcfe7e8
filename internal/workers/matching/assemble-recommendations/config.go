// internal/workers/matching/assemble-recommendations/config.go
package assemblerecs

import "time"

type Config struct {
	Timeout    time.Duration
	FinalLimit int
}
