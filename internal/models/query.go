// internal/models/query.go
package models

// Intent is the closed set of query intents produced by query analysis.
// The planner switches over this exhaustively; IntentDefault is a real
// intent of its own, not a catch-all.
type Intent string

const (
	IntentSearch            Intent = "search"
	IntentProfileBased      Intent = "profile_based"
	IntentMixed             Intent = "mixed"
	IntentCourseworkFocused Intent = "coursework_focused"
	IntentDefault           Intent = "default"
)

// Valid reports whether the value is a member of the closed intent set.
func (i Intent) Valid() bool {
	switch i {
	case IntentSearch, IntentProfileBased, IntentMixed, IntentCourseworkFocused, IntentDefault:
		return true
	}
	return false
}

// AnalyzedQuery is the output of the external query-analysis collaborator.
// Immutable once created; lives for one request. Degraded is set when
// analysis failed upstream and the defaults below were substituted.
type AnalyzedQuery struct {
	ImprovedQuery string   `json:"improvedQuery"`
	SearchTerms   []string `json:"searchTerms"`
	Intent        Intent   `json:"intent"`
	IgnoreProfile bool     `json:"ignoreProfile"`
	Degraded      bool     `json:"degraded,omitempty"`
}

// DefaultAnalyzedQuery is the documented fallback when query analysis
// fails: empty terms, profile-based intent, degraded flag set. The planner
// must still produce a valid non-empty plan from it.
func DefaultAnalyzedQuery() AnalyzedQuery {
	return AnalyzedQuery{
		SearchTerms:   []string{},
		Intent:        IntentProfileBased,
		IgnoreProfile: false,
		Degraded:      true,
	}
}

// ToolName identifies one retrieval operation against one record collection.
type ToolName string

const (
	ToolSearchPrograms    ToolName = "search_programs"
	ToolSearchAll         ToolName = "search_all_collections"
	ToolCoursePathways    ToolName = "get_course_pathways"
	ToolCareerStats       ToolName = "get_career_stats"
	ToolCollectionStats   ToolName = "get_collection_stats"
	ToolRecommendPrograms ToolName = "recommend_programs"
)

// CallPriority distinguishes the anchor call of a plan from its
// supporting calls. Primary results are cached with a shorter TTL.
type CallPriority string

const (
	PriorityPrimary    CallPriority = "primary"
	PrioritySupporting CallPriority = "supporting"
)

// ToolParams carries the recognized parameters of a tool call. Fields not
// meaningful for a given tool are simply zero. Extra is a structural
// passthrough for keys this version does not recognize; the gateway
// ignores them and never rejects a call over them.
type ToolParams struct {
	Terms         []string               `json:"terms,omitempty"`
	Interests     []string               `json:"interests,omitempty"`
	GradeLevel    int                    `json:"gradeLevel,omitempty"`
	Category      string                 `json:"category,omitempty"`
	IgnoreProfile bool                   `json:"ignoreProfile,omitempty"`
	ExpandedTerms bool                   `json:"expandedTerms,omitempty"`
	GetAllMatches bool                   `json:"getAllMatches,omitempty"`
	Extra         map[string]interface{} `json:"extra,omitempty"`
}

// ToolCall is a single named retrieval operation. Created by the planner,
// consumed exactly once by the aggregator, immutable in between.
type ToolCall struct {
	Tool     ToolName     `json:"tool"`
	Params   ToolParams   `json:"params"`
	Priority CallPriority `json:"priority"`
}

// ExtractedContext snapshots the analysis and profile fields a plan
// actually used, for introspection and answer synthesis.
type ExtractedContext struct {
	ImprovedQuery  string   `json:"improvedQuery,omitempty"`
	SearchTerms    []string `json:"searchTerms,omitempty"`
	Interests      []string `json:"interests,omitempty"`
	CareerGoals    []string `json:"careerGoals,omitempty"`
	EducationLevel string   `json:"educationLevel,omitempty"`
	GradeLevel     int      `json:"gradeLevel,omitempty"`
}

// QueryPlan is the ordered list of tool calls for one request. Never
// empty: every plan carries at least the collection-statistics call.
type QueryPlan struct {
	Intent  Intent           `json:"intent"`
	Calls   []ToolCall       `json:"calls"`
	Context ExtractedContext `json:"context"`
}
