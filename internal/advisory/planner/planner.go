// internal/advisory/planner/planner.go
package planner

import (
	"strings"

	"advisor-workers/internal/advisory/terms"
	"advisor-workers/internal/models"
)

// courseworkSignals is the cheap keyword check for "is this about
// near-term scheduling/coursework". Matched against the raw message, not
// the improved query, so rephrasing by the analyzer cannot hide it.
var courseworkSignals = []string{
	"class", "classes", "course", "courses", "schedule",
	"next year", "next semester", "this semester", "junior year",
	"senior year", "freshman", "sophomore", "electives",
}

// Planner turns an analyzed query plus profile into an ordered list of
// tool calls. Pure: no I/O, no state across requests. The cache handle
// and gateway are injected downstream; the planner only decides.
type Planner struct{}

func New() *Planner {
	return &Planner{}
}

// Plan builds the query plan. Every branch appends the low-cost
// collection-statistics call unconditionally, and a labor-market lookup
// whenever search terms or profile interests exist, so every plan
// returns at least overview statistics even on total non-match. A
// degraded AnalyzedQuery still yields a valid plan; that is the fallback
// contract, not a special case.
func (p *Planner) Plan(analyzed models.AnalyzedQuery, profile *models.UserProfileContext, rawMessage string) models.QueryPlan {
	intent := analyzed.Intent
	if p.isCourseworkQuery(rawMessage) {
		intent = models.IntentCourseworkFocused
	}
	if intent == "" {
		intent = models.IntentDefault
	}

	var calls []models.ToolCall
	switch intent {
	case models.IntentCourseworkFocused:
		calls = p.courseworkPlan(analyzed, profile)
	case models.IntentSearch:
		calls = p.searchPlan(analyzed)
	case models.IntentProfileBased:
		calls = p.profilePlan(analyzed, profile)
	case models.IntentMixed:
		calls = p.mixedPlan(analyzed, profile)
	case models.IntentDefault:
		calls = p.defaultPlan(analyzed, profile)
	default:
		// Unknown intent value from a newer analyzer: same as default.
		intent = models.IntentDefault
		calls = p.defaultPlan(analyzed, profile)
	}

	calls = p.appendStandardCalls(calls, analyzed, profile)

	return models.QueryPlan{
		Intent:  intent,
		Calls:   calls,
		Context: extractContext(analyzed, profile),
	}
}

// courseworkPlan anchors on pathway data for the student's grade and
// adds two supporting calls, all honoring the profile.
func (p *Planner) courseworkPlan(analyzed models.AnalyzedQuery, profile *models.UserProfileContext) []models.ToolCall {
	grade := 0
	interests := profileInterests(profile)
	if profile != nil {
		grade = profile.GradeLevel
	}

	return []models.ToolCall{
		{
			Tool:     models.ToolCoursePathways,
			Priority: models.PriorityPrimary,
			Params: models.ToolParams{
				Terms:      combineTerms(analyzed.SearchTerms, interests),
				GradeLevel: grade,
			},
		},
		{
			Tool:     models.ToolSearchPrograms,
			Priority: models.PrioritySupporting,
			Params: models.ToolParams{
				Terms: combineTerms(analyzed.SearchTerms, interests),
			},
		},
		{
			Tool:     models.ToolRecommendPrograms,
			Priority: models.PrioritySupporting,
			Params: models.ToolParams{
				Interests: interests,
			},
		},
	}
}

// searchPlan is a profile-blind keyword search: one broad
// cross-collection call plus two supporting calls, all with
// ignoreProfile set and widened terms.
func (p *Planner) searchPlan(analyzed models.AnalyzedQuery) []models.ToolCall {
	expanded := terms.ExpandAll(analyzed.SearchTerms)

	return []models.ToolCall{
		{
			Tool:     models.ToolSearchAll,
			Priority: models.PriorityPrimary,
			Params: models.ToolParams{
				Terms:         expanded,
				IgnoreProfile: true,
				ExpandedTerms: true,
			},
		},
		{
			Tool:     models.ToolSearchPrograms,
			Priority: models.PrioritySupporting,
			Params: models.ToolParams{
				Terms:         expanded,
				IgnoreProfile: true,
				ExpandedTerms: true,
			},
		},
		{
			Tool:     models.ToolCoursePathways,
			Priority: models.PrioritySupporting,
			Params: models.ToolParams{
				Terms:         expanded,
				IgnoreProfile: true,
				ExpandedTerms: true,
			},
		},
	}
}

// profilePlan branches on learner stage: pre-tertiary plans anchor on
// pathway/coursework data, post-tertiary learners get a single
// profile-weighted recommendation call.
func (p *Planner) profilePlan(analyzed models.AnalyzedQuery, profile *models.UserProfileContext) []models.ToolCall {
	interests := profileInterests(profile)

	if profile.IsPreTertiary() {
		return []models.ToolCall{
			{
				Tool:     models.ToolCoursePathways,
				Priority: models.PriorityPrimary,
				Params: models.ToolParams{
					Terms:      interests,
					GradeLevel: profile.GradeLevel,
				},
			},
			{
				Tool:     models.ToolSearchPrograms,
				Priority: models.PrioritySupporting,
				Params: models.ToolParams{
					Terms: interests,
				},
			},
			{
				Tool:     models.ToolRecommendPrograms,
				Priority: models.PrioritySupporting,
				Params: models.ToolParams{
					Interests: interests,
				},
			},
		}
	}

	return []models.ToolCall{
		{
			Tool:     models.ToolRecommendPrograms,
			Priority: models.PriorityPrimary,
			Params: models.ToolParams{
				Interests: interests,
				Terms:     analyzed.SearchTerms,
			},
		},
	}
}

// mixedPlan merges extracted search terms with profile interests into
// one combined-signal call.
func (p *Planner) mixedPlan(analyzed models.AnalyzedQuery, profile *models.UserProfileContext) []models.ToolCall {
	return []models.ToolCall{
		{
			Tool:     models.ToolSearchPrograms,
			Priority: models.PriorityPrimary,
			Params: models.ToolParams{
				Terms: combineTerms(analyzed.SearchTerms, profileInterests(profile)),
			},
		},
	}
}

// defaultPlan is the single best-effort call using whatever signals
// exist. Guarantees a non-empty plan even for fully degraded input.
func (p *Planner) defaultPlan(analyzed models.AnalyzedQuery, profile *models.UserProfileContext) []models.ToolCall {
	t := analyzed.SearchTerms
	if len(t) == 0 {
		t = profileInterests(profile)
	}
	return []models.ToolCall{
		{
			Tool:     models.ToolSearchPrograms,
			Priority: models.PriorityPrimary,
			Params: models.ToolParams{
				Terms: t,
			},
		},
	}
}

// appendStandardCalls adds the fixed plan appendage: the statistics call
// always, the labor-market lookup when any term or interest signal
// exists. Preserved across every branch by construction.
func (p *Planner) appendStandardCalls(calls []models.ToolCall, analyzed models.AnalyzedQuery, profile *models.UserProfileContext) []models.ToolCall {
	interests := profileInterests(profile)

	if len(analyzed.SearchTerms) > 0 || len(interests) > 0 {
		calls = append(calls, models.ToolCall{
			Tool:     models.ToolCareerStats,
			Priority: models.PrioritySupporting,
			Params: models.ToolParams{
				Terms:         combineTerms(analyzed.SearchTerms, interests),
				IgnoreProfile: analyzed.IgnoreProfile,
			},
		})
	}

	calls = append(calls, models.ToolCall{
		Tool:     models.ToolCollectionStats,
		Priority: models.PrioritySupporting,
	})
	return calls
}

func (p *Planner) isCourseworkQuery(rawMessage string) bool {
	msg := strings.ToLower(rawMessage)
	if msg == "" {
		return false
	}
	for _, signal := range courseworkSignals {
		if strings.Contains(msg, signal) {
			return true
		}
	}
	return false
}

func extractContext(analyzed models.AnalyzedQuery, profile *models.UserProfileContext) models.ExtractedContext {
	ctx := models.ExtractedContext{
		ImprovedQuery: analyzed.ImprovedQuery,
		SearchTerms:   analyzed.SearchTerms,
	}
	if profile != nil && !analyzed.IgnoreProfile {
		ctx.Interests = profile.Interests
		ctx.CareerGoals = profile.CareerGoals
		ctx.EducationLevel = profile.EducationLevel
		ctx.GradeLevel = profile.GradeLevel
	}
	return ctx
}

func profileInterests(profile *models.UserProfileContext) []string {
	if profile == nil {
		return nil
	}
	return profile.Interests
}

// combineTerms merges two term lists preserving order and dropping
// duplicates case-insensitively.
func combineTerms(a, b []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, list := range [][]string{a, b} {
		for _, t := range list {
			norm := strings.ToLower(strings.TrimSpace(t))
			if norm == "" || seen[norm] {
				continue
			}
			seen[norm] = true
			out = append(out, norm)
		}
	}
	return out
}
