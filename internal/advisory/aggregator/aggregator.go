// internal/advisory/aggregator/aggregator.go
package aggregator

import (
	"context"

	"advisor-workers/internal/common/logger"
	"advisor-workers/internal/models"
)

// Executor runs a single tool call. Satisfied by the retrieval gateway.
type Executor interface {
	Execute(ctx context.Context, call models.ToolCall) ([]models.ScoredRecord, error)
}

// Aggregator runs a query plan sequentially and merges the per-call
// results into one response. Individual call failures degrade the
// response instead of aborting it: the worst case is an empty response
// with zero results, never an error.
type Aggregator struct {
	executor Executor
	logger   logger.Logger
}

func New(executor Executor, log logger.Logger) *Aggregator {
	return &Aggregator{
		executor: executor,
		logger:   log.WithFields(map[string]interface{}{"component": "aggregator"}),
	}
}

// Run executes every call in plan order. QueriesExecuted lists only the
// calls that succeeded, in execution order, so the response synthesizer
// can tell partial coverage from full coverage.
func (a *Aggregator) Run(ctx context.Context, plan models.QueryPlan) *models.UnifiedResponse {
	response := &models.UnifiedResponse{
		QueriesExecuted: []string{},
	}

	for _, call := range plan.Calls {
		records, err := a.executor.Execute(ctx, call)
		if err != nil {
			a.logger.Warn("tool call failed, continuing plan", map[string]interface{}{
				"tool":  string(call.Tool),
				"error": err.Error(),
			})
			continue
		}

		a.merge(response, records)
		response.QueriesExecuted = append(response.QueriesExecuted, string(call.Tool))
	}

	response.TotalResults = len(response.Programs) + len(response.Pathways) + len(response.Careers)
	return response
}

// merge routes each record into its typed slot. Records keep the ranked
// order the gateway produced; cross-call ordering is plan order.
func (a *Aggregator) merge(response *models.UnifiedResponse, records []models.ScoredRecord) {
	for _, r := range records {
		switch r.Kind {
		case models.KindProgram:
			response.Programs = append(response.Programs, r)
		case models.KindPathway:
			response.Pathways = append(response.Pathways, r)
		case models.KindCareer:
			response.Careers = append(response.Careers, r)
		case models.KindStats:
			response.Stats = r.Stats
		}
	}
}
