// internal/advisory/aggregator/aggregator_test.go
package aggregator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisor-workers/internal/common/logger"
	"advisor-workers/internal/models"
)

// scriptedExecutor returns a canned result or error per tool name.
type scriptedExecutor struct {
	results map[models.ToolName][]models.ScoredRecord
	errs    map[models.ToolName]error
	order   []models.ToolName
}

func (s *scriptedExecutor) Execute(ctx context.Context, call models.ToolCall) ([]models.ScoredRecord, error) {
	s.order = append(s.order, call.Tool)
	if err := s.errs[call.Tool]; err != nil {
		return nil, err
	}
	return s.results[call.Tool], nil
}

func program(id string, score float64) models.ScoredRecord {
	return models.ScoredRecord{
		Kind:    models.KindProgram,
		Program: &models.EducationProgram{ID: id},
		Score:   score,
	}
}

func pathway(id string, score float64) models.ScoredRecord {
	return models.ScoredRecord{
		Kind:    models.KindPathway,
		Pathway: &models.PathwayCourseSequence{ID: id},
		Score:   score,
	}
}

func career(id string, score float64) models.ScoredRecord {
	return models.ScoredRecord{
		Kind:   models.KindCareer,
		Career: &models.CareerStat{ID: id},
		Score:  score,
	}
}

func planOf(tools ...models.ToolName) models.QueryPlan {
	plan := models.QueryPlan{Intent: models.IntentSearch}
	for _, tool := range tools {
		plan.Calls = append(plan.Calls, models.ToolCall{Tool: tool})
	}
	return plan
}

func TestRun_MergesIntoTypedSlots(t *testing.T) {
	exec := &scriptedExecutor{
		results: map[models.ToolName][]models.ScoredRecord{
			models.ToolSearchPrograms:  {program("p1", 10), program("p2", 3)},
			models.ToolCoursePathways:  {pathway("pw1", 5)},
			models.ToolCareerStats:     {career("c1", 2)},
			models.ToolCollectionStats: {{Kind: models.KindStats, Stats: &models.CollectionStats{ProgramCount: 7}}},
		},
	}
	a := New(exec, logger.NewNoOpLogger())

	resp := a.Run(context.Background(), planOf(
		models.ToolSearchPrograms,
		models.ToolCoursePathways,
		models.ToolCareerStats,
		models.ToolCollectionStats,
	))

	assert.Len(t, resp.Programs, 2)
	assert.Len(t, resp.Pathways, 1)
	assert.Len(t, resp.Careers, 1)
	require.NotNil(t, resp.Stats)
	assert.Equal(t, 7, resp.Stats.ProgramCount)

	// Statistics records do not count as results.
	assert.Equal(t, 4, resp.TotalResults)
	assert.Equal(t, []string{
		"search_programs", "get_course_pathways", "get_career_stats", "get_collection_stats",
	}, resp.QueriesExecuted)
}

func TestRun_ContinuesPastFailedCall(t *testing.T) {
	exec := &scriptedExecutor{
		results: map[models.ToolName][]models.ScoredRecord{
			models.ToolSearchPrograms:  {program("p1", 10)},
			models.ToolCollectionStats: {{Kind: models.KindStats, Stats: &models.CollectionStats{}}},
		},
		errs: map[models.ToolName]error{
			models.ToolCoursePathways: errors.New("timeout"),
		},
	}
	a := New(exec, logger.NewNoOpLogger())

	resp := a.Run(context.Background(), planOf(
		models.ToolSearchPrograms,
		models.ToolCoursePathways,
		models.ToolCollectionStats,
	))

	// Every call still ran; only the successes are reported.
	assert.Equal(t, []models.ToolName{
		models.ToolSearchPrograms, models.ToolCoursePathways, models.ToolCollectionStats,
	}, exec.order)
	assert.Equal(t, []string{"search_programs", "get_collection_stats"}, resp.QueriesExecuted)
	assert.Equal(t, 1, resp.TotalResults)
}

func TestRun_TotalFailureDegradesToEmptyResponse(t *testing.T) {
	exec := &scriptedExecutor{
		errs: map[models.ToolName]error{
			models.ToolSearchPrograms:  errors.New("down"),
			models.ToolCareerStats:     errors.New("down"),
			models.ToolCollectionStats: errors.New("down"),
		},
	}
	a := New(exec, logger.NewNoOpLogger())

	resp := a.Run(context.Background(), planOf(
		models.ToolSearchPrograms,
		models.ToolCareerStats,
		models.ToolCollectionStats,
	))

	require.NotNil(t, resp)
	assert.Equal(t, 0, resp.TotalResults)
	assert.Empty(t, resp.QueriesExecuted)
	assert.NotNil(t, resp.QueriesExecuted, "must serialize as [], not null")
}

func TestRun_SuccessfulEmptyCallIsStillExecuted(t *testing.T) {
	exec := &scriptedExecutor{
		results: map[models.ToolName][]models.ScoredRecord{},
	}
	a := New(exec, logger.NewNoOpLogger())

	resp := a.Run(context.Background(), planOf(models.ToolSearchPrograms))

	assert.Equal(t, []string{"search_programs"}, resp.QueriesExecuted)
	assert.Equal(t, 0, resp.TotalResults)
}
