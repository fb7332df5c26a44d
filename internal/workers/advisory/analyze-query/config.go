// internal/workers/advisory/analyze-query/config.go
package analyzequery

import "time"

type Config struct {
	GenAIBaseURL string
	GenAIAPIKey  string
	Timeout      time.Duration
	MaxRetries   int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    30 * time.Second,
		MaxRetries: 2,
	}
}
