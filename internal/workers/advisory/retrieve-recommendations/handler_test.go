// internal/workers/advisory/retrieve-recommendations/handler_test.go
package retrieverecommendations

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisor-workers/internal/advisory/cache"
	"advisor-workers/internal/advisory/gateway"
	"advisor-workers/internal/common/logger"
	"advisor-workers/internal/models"
)

type fakeStore struct {
	programs []models.EducationProgram
	pathways []models.PathwayCourseSequence
	careers  []models.CareerStat
}

func (s *fakeStore) SearchPrograms(ctx context.Context, terms []string, category string, limit int) ([]models.EducationProgram, error) {
	return s.programs, nil
}

func (s *fakeStore) SearchAll(ctx context.Context, terms []string, limit int) (*gateway.AllCollections, error) {
	return &gateway.AllCollections{
		Programs: s.programs,
		Pathways: s.pathways,
		Careers:  s.careers,
	}, nil
}

func (s *fakeStore) PathwaysForGrade(ctx context.Context, terms []string, gradeLevel, limit int) ([]models.PathwayCourseSequence, error) {
	return s.pathways, nil
}

func (s *fakeStore) CareerStats(ctx context.Context, terms []string, limit int) ([]models.CareerStat, error) {
	return s.careers, nil
}

func (s *fakeStore) CollectionStats(ctx context.Context) (*models.CollectionStats, error) {
	return &models.CollectionStats{ProgramCount: 12, PathwayCount: 4, CareerCount: 30}, nil
}

func testHandler(t *testing.T, store *fakeStore) *Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	c := cache.New(rdb, logger.NewNoOpLogger())
	return NewHandler(&Config{ToolTimeout: 2 * time.Second}, store, c, logger.NewNoOpLogger())
}

func defaultStore() *fakeStore {
	return &fakeStore{
		programs: []models.EducationProgram{
			{ID: "p1", Name: "Practical Nursing", Category: "healthcare"},
			{ID: "p2", Name: "Welding Technology", Category: "trades"},
		},
		pathways: []models.PathwayCourseSequence{
			{ID: "s1", Name: "Health Sciences Pathway", StartGrade: 9, EndGrade: 12},
		},
		careers: []models.CareerStat{
			{ID: "c1", Title: "Registered Nurse", MedianSalary: 78000},
		},
	}
}

func TestExecute_FullPipeline(t *testing.T) {
	h := testHandler(t, defaultStore())

	output, err := h.Execute(context.Background(), &Input{
		Question: "what nursing programs are out there?",
		Analysis: models.AnalyzedQuery{
			ImprovedQuery: "nursing programs",
			SearchTerms:   []string{"nursing"},
			Intent:        models.IntentSearch,
			IgnoreProfile: true,
		},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, output.RequestID)
	assert.Equal(t, models.IntentSearch, output.Intent)
	require.NotNil(t, output.Results)

	// Every plan ends with the statistics call.
	require.NotEmpty(t, output.Results.QueriesExecuted)
	last := output.Results.QueriesExecuted[len(output.Results.QueriesExecuted)-1]
	assert.Equal(t, string(models.ToolCollectionStats), last)

	require.NotNil(t, output.Results.Stats)
	assert.Equal(t, 12, output.Results.Stats.ProgramCount)
	assert.NotZero(t, output.Results.TotalResults)
}

func TestExecute_ProfileBasedPreTertiary(t *testing.T) {
	h := testHandler(t, defaultStore())

	output, err := h.Execute(context.Background(), &Input{
		Question: "what should I be studying?",
		Analysis: models.AnalyzedQuery{
			Intent: models.IntentProfileBased,
		},
		Profile: &models.UserProfileContext{
			EducationLevel: models.EducationHighSchool,
			GradeLevel:     10,
			Interests:      []string{"health"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, models.IntentProfileBased, output.Intent)
	assert.NotEmpty(t, output.Results.Pathways)
	// Profile fields the plan used are echoed for synthesis.
	assert.Equal(t, []string{"health"}, output.Context.Interests)
	assert.Equal(t, 10, output.Context.GradeLevel)
}

func TestExecute_MissingAnalysisUsesDegradedDefault(t *testing.T) {
	h := testHandler(t, defaultStore())

	output, err := h.Execute(context.Background(), &Input{
		Question: "hello there",
		Profile: &models.UserProfileContext{
			EducationLevel: models.EducationBachelor,
			Interests:      []string{"welding"},
		},
	})
	require.NoError(t, err)

	// Degraded default analysis is profile-based; the plan still runs and
	// still ends with statistics.
	assert.Equal(t, models.IntentProfileBased, output.Intent)
	require.NotNil(t, output.Results)
	assert.NotNil(t, output.Results.Stats)
}

func TestExecute_CourseworkSignalOverridesIntent(t *testing.T) {
	h := testHandler(t, defaultStore())

	output, err := h.Execute(context.Background(), &Input{
		Question: "what classes should I take next semester?",
		Analysis: models.AnalyzedQuery{
			SearchTerms: []string{"engineering"},
			Intent:      models.IntentSearch,
		},
		Profile: &models.UserProfileContext{
			EducationLevel: models.EducationHighSchool,
			GradeLevel:     11,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, models.IntentCourseworkFocused, output.Intent)
	assert.NotEmpty(t, output.Results.Pathways)
}

func TestExecute_RequestIDPreserved(t *testing.T) {
	h := testHandler(t, defaultStore())

	output, err := h.Execute(context.Background(), &Input{
		Question:  "anything",
		RequestID: "req-42",
		Analysis:  models.AnalyzedQuery{Intent: models.IntentDefault},
	})
	require.NoError(t, err)
	assert.Equal(t, "req-42", output.RequestID)
}

func TestExecute_EmptyQuestion(t *testing.T) {
	h := testHandler(t, defaultStore())

	_, err := h.Execute(context.Background(), &Input{Question: "   "})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
