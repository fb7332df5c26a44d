// internal/workers/advisory/synthesize-answer/models.go
package synthesizeanswer

import "advisor-workers/internal/models"

type Input struct {
	Question  string                  `json:"question"`
	SessionID string                  `json:"sessionId,omitempty"`
	RequestID string                  `json:"requestId,omitempty"`
	Intent    models.Intent           `json:"intent,omitempty"`
	Context   models.ExtractedContext `json:"queryContext,omitempty"`
	Results   *models.UnifiedResponse `json:"results,omitempty"`
}

type Output struct {
	Answer     string   `json:"answer"`
	Confidence float64  `json:"confidence"`
	Sources    []string `json:"sources,omitempty"`
	FromCache  bool     `json:"fromCache,omitempty"`
}
