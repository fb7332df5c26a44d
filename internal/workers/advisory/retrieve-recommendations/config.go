// internal/workers/advisory/retrieve-recommendations/config.go
package retrieverecommendations

import "time"

type Config struct {
	// ToolTimeout bounds each individual retrieval round trip, not the
	// whole plan.
	ToolTimeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		ToolTimeout: 10 * time.Second,
	}
}
