// internal/workers/advisory/synthesize-answer/config.go
package synthesizeanswer

import "time"

type Config struct {
	GenAIBaseURL string
	GenAIAPIKey  string
	Timeout      time.Duration
	MaxRetries   int
	MaxTokens    int
	Temperature  float64

	// SimilarityThreshold gates reuse of answers for near-duplicate
	// questions. Zero keeps similarity in telemetry-only mode.
	SimilarityThreshold float64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     30 * time.Second,
		MaxRetries:  1,
		MaxTokens:   500,
		Temperature: 0.7,
	}
}
