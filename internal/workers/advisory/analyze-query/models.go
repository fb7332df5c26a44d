// internal/workers/advisory/analyze-query/models.go
package analyzequery

import "advisor-workers/internal/models"

type Input struct {
	Question  string                     `json:"question"`
	SessionID string                     `json:"sessionId,omitempty"`
	Profile   *models.UserProfileContext `json:"userProfile,omitempty"`
}

type Output struct {
	Analysis models.AnalyzedQuery `json:"queryAnalysis"`
}
