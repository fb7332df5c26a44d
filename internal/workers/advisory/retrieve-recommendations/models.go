// internal/workers/advisory/retrieve-recommendations/models.go
package retrieverecommendations

import "advisor-workers/internal/models"

// Input carries the user's question plus the upstream analysis. A missing
// or empty queryAnalysis is legal; the degraded default is substituted.
type Input struct {
	Question  string                     `json:"question"`
	SessionID string                     `json:"sessionId,omitempty"`
	RequestID string                     `json:"requestId,omitempty"`
	Analysis  models.AnalyzedQuery       `json:"queryAnalysis"`
	Profile   *models.UserProfileContext `json:"userProfile,omitempty"`
}

type Output struct {
	RequestID string                  `json:"requestId"`
	Intent    models.Intent           `json:"intent"`
	Context   models.ExtractedContext `json:"queryContext"`
	Results   *models.UnifiedResponse `json:"results"`
}
