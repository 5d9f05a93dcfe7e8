// internal/workers/matching/build-profile/config.go
package buildprofile

import "time"

type Config struct {
	CacheTTL time.Duration
	Timeout  time.Duration
}
