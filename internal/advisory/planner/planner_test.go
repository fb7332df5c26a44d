// internal/advisory/planner/planner_test.go
package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisor-workers/internal/models"
)

func toolNames(plan models.QueryPlan) []models.ToolName {
	out := make([]models.ToolName, len(plan.Calls))
	for i, c := range plan.Calls {
		out[i] = c.Tool
	}
	return out
}

func hasTool(plan models.QueryPlan, tool models.ToolName) bool {
	for _, c := range plan.Calls {
		if c.Tool == tool {
			return true
		}
	}
	return false
}

func TestPlan_SearchIntentIgnoresProfile(t *testing.T) {
	p := New()
	analyzed := models.AnalyzedQuery{
		ImprovedQuery: "computer science programs",
		SearchTerms:   []string{"comp sci"},
		Intent:        models.IntentSearch,
		IgnoreProfile: true,
	}
	profile := &models.UserProfileContext{Interests: []string{"culinary"}}

	plan := p.Plan(analyzed, profile, "any comp sci degrees around?")

	require.Equal(t, models.IntentSearch, plan.Intent)
	assert.Equal(t, models.ToolSearchAll, plan.Calls[0].Tool)
	assert.Equal(t, models.PriorityPrimary, plan.Calls[0].Priority)

	// The broad call plus both supporting calls all ignore the profile
	// and carry expanded terms.
	for _, c := range plan.Calls[:3] {
		assert.True(t, c.Params.IgnoreProfile, "call %s must ignore profile", c.Tool)
		assert.True(t, c.Params.ExpandedTerms)
		assert.Contains(t, c.Params.Terms, "computer science")
	}
	assert.True(t, hasTool(plan, models.ToolCollectionStats))
}

func TestPlan_CourseworkBranch(t *testing.T) {
	// The documented scenario: grade 9 nursing student asking about
	// next year's classes.
	p := New()
	analyzed := models.AnalyzedQuery{
		Intent:      models.IntentProfileBased,
		SearchTerms: []string{},
	}
	profile := &models.UserProfileContext{
		EducationLevel: models.EducationHighSchool,
		GradeLevel:     9,
		Interests:      []string{"nursing"},
	}

	plan := p.Plan(analyzed, profile, "what classes next year")

	require.Equal(t, models.IntentCourseworkFocused, plan.Intent)
	require.Equal(t, models.ToolCoursePathways, plan.Calls[0].Tool)
	assert.Equal(t, models.PriorityPrimary, plan.Calls[0].Priority)
	assert.Equal(t, 9, plan.Calls[0].Params.GradeLevel)

	// Pathway call plus two supporting calls, all honoring the profile.
	assert.Equal(t, models.ToolSearchPrograms, plan.Calls[1].Tool)
	assert.Equal(t, models.ToolRecommendPrograms, plan.Calls[2].Tool)
	for _, c := range plan.Calls[:3] {
		assert.Equal(t, models.PriorityPrimary == c.Priority, c.Tool == models.ToolCoursePathways)
		assert.False(t, c.Params.IgnoreProfile)
	}
}

func TestPlan_ProfileBasedBranchesOnLearnerStage(t *testing.T) {
	p := New()
	analyzed := models.AnalyzedQuery{Intent: models.IntentProfileBased}

	t.Run("pre-tertiary gets three-call pathway-anchored plan", func(t *testing.T) {
		profile := &models.UserProfileContext{
			EducationLevel: models.EducationHighSchool,
			GradeLevel:     11,
			Interests:      []string{"welding"},
		}
		plan := p.Plan(analyzed, profile, "what should I do after graduation")

		assert.Equal(t, []models.ToolName{
			models.ToolCoursePathways,
			models.ToolSearchPrograms,
			models.ToolRecommendPrograms,
			models.ToolCareerStats,
			models.ToolCollectionStats,
		}, toolNames(plan))
	})

	t.Run("post-tertiary gets single profile-weighted call", func(t *testing.T) {
		profile := &models.UserProfileContext{
			EducationLevel: models.EducationBachelor,
			Interests:      []string{"data science"},
		}
		plan := p.Plan(analyzed, profile, "where could I go from here")

		assert.Equal(t, []models.ToolName{
			models.ToolRecommendPrograms,
			models.ToolCareerStats,
			models.ToolCollectionStats,
		}, toolNames(plan))
	})
}

func TestPlan_MixedIntentCombinesSignals(t *testing.T) {
	p := New()
	analyzed := models.AnalyzedQuery{
		Intent:      models.IntentMixed,
		SearchTerms: []string{"robotics"},
	}
	profile := &models.UserProfileContext{Interests: []string{"engineering", "robotics"}}

	plan := p.Plan(analyzed, profile, "do my interests fit robotics?")

	require.Equal(t, models.ToolSearchPrograms, plan.Calls[0].Tool)
	assert.Equal(t, []string{"robotics", "engineering"}, plan.Calls[0].Params.Terms)
}

func TestPlan_FixedAppendage(t *testing.T) {
	p := New()

	tests := []struct {
		name        string
		analyzed    models.AnalyzedQuery
		profile     *models.UserProfileContext
		wantCareers bool
	}{
		{
			name:        "terms present adds career lookup",
			analyzed:    models.AnalyzedQuery{Intent: models.IntentSearch, SearchTerms: []string{"hvac"}},
			wantCareers: true,
		},
		{
			name:        "interests present adds career lookup",
			analyzed:    models.AnalyzedQuery{Intent: models.IntentProfileBased},
			profile:     &models.UserProfileContext{Interests: []string{"nursing"}},
			wantCareers: true,
		},
		{
			name:        "no signals still gets statistics only",
			analyzed:    models.AnalyzedQuery{Intent: models.IntentProfileBased},
			wantCareers: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := p.Plan(tt.analyzed, tt.profile, "")

			require.NotEmpty(t, plan.Calls)
			assert.Equal(t, models.ToolCollectionStats, plan.Calls[len(plan.Calls)-1].Tool)
			assert.Equal(t, tt.wantCareers, hasTool(plan, models.ToolCareerStats))
		})
	}
}

func TestPlan_DegradedAnalysisStillPlans(t *testing.T) {
	p := New()

	// The upstream-failure contract: degraded default analysis with no
	// profile must still yield a valid non-empty plan.
	plan := p.Plan(models.DefaultAnalyzedQuery(), nil, "")

	require.NotEmpty(t, plan.Calls)
	assert.True(t, hasTool(plan, models.ToolCollectionStats))
}

func TestPlan_UnknownIntentFallsBackToDefault(t *testing.T) {
	p := New()
	analyzed := models.AnalyzedQuery{Intent: models.Intent("future_intent"), SearchTerms: []string{"law"}}

	plan := p.Plan(analyzed, nil, "tell me about law")

	assert.Equal(t, models.IntentDefault, plan.Intent)
	assert.Equal(t, models.ToolSearchPrograms, plan.Calls[0].Tool)
	assert.True(t, hasTool(plan, models.ToolCollectionStats))
}

func TestPlan_NeverEmpty(t *testing.T) {
	p := New()
	intents := []models.Intent{
		models.IntentSearch, models.IntentProfileBased, models.IntentMixed,
		models.IntentCourseworkFocused, models.IntentDefault, "",
	}
	profiles := []*models.UserProfileContext{
		nil,
		{},
		{EducationLevel: models.EducationHighSchool, GradeLevel: 10},
		{EducationLevel: models.EducationGraduate, Interests: []string{"ai"}},
	}

	for _, intent := range intents {
		for _, profile := range profiles {
			plan := p.Plan(models.AnalyzedQuery{Intent: intent}, profile, "")
			assert.NotEmpty(t, plan.Calls, "intent=%q", intent)
			assert.Equal(t, models.ToolCollectionStats, plan.Calls[len(plan.Calls)-1].Tool)
		}
	}
}
