// internal/advisory/gateway/gateway.go
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"advisor-workers/internal/advisory/cache"
	"advisor-workers/internal/advisory/scoring"
	"advisor-workers/internal/advisory/terms"
	"advisor-workers/internal/common/logger"
	"advisor-workers/internal/common/metrics"
	"advisor-workers/internal/models"
)

// Result caps. GetAllMatches raises the per-call limit to the absolute
// maximum; unbounded result sets are never allowed.
const (
	DefaultResultLimit = 10
	AbsoluteMaxResults = 100
)

var (
	ErrUnknownTool = errors.New("unknown tool name")
)

// RecordStore is the retrieval collaborator: one function per tool over
// the record collections. Implementations return raw, unscored
// candidates; the gateway never writes to the store.
type RecordStore interface {
	SearchPrograms(ctx context.Context, terms []string, category string, limit int) ([]models.EducationProgram, error)
	SearchAll(ctx context.Context, terms []string, limit int) (*AllCollections, error)
	PathwaysForGrade(ctx context.Context, terms []string, gradeLevel, limit int) ([]models.PathwayCourseSequence, error)
	CareerStats(ctx context.Context, terms []string, limit int) ([]models.CareerStat, error)
	CollectionStats(ctx context.Context) (*models.CollectionStats, error)
}

// AllCollections is the raw result of the broad cross-collection search.
type AllCollections struct {
	Programs []models.EducationProgram      `json:"programs,omitempty"`
	Pathways []models.PathwayCourseSequence `json:"pathways,omitempty"`
	Careers  []models.CareerStat            `json:"careers,omitempty"`
}

// Config bounds each retrieval round trip.
type Config struct {
	CallTimeout time.Duration
}

// Gateway dispatches tool calls against the record store with a
// cache-then-fetch-then-cache discipline. The cache handle and store are
// injected; the gateway holds no global state.
type Gateway struct {
	config  *Config
	store   RecordStore
	cache   *cache.Cache
	profile *models.UserProfileContext
	logger  logger.Logger
}

// New creates a gateway bound to one request's profile. Profile-mode
// scoring needs the profile at execution time; the per-request binding
// keeps Execute's signature a pure function of the ToolCall.
func New(config *Config, store RecordStore, c *cache.Cache, profile *models.UserProfileContext, log logger.Logger) *Gateway {
	return &Gateway{
		config:  config,
		store:   store,
		cache:   c,
		profile: profile,
		logger:  log.WithFields(map[string]interface{}{"component": "gateway"}),
	}
}

// Execute runs one tool call: cache lookup, then record-store query with
// term-expanded filters, scoring in the mode the call asks for, sorting,
// capping, and an asynchronous write-through. Unrecognized Extra params
// are ignored, never rejected.
func (g *Gateway) Execute(ctx context.Context, call models.ToolCall) ([]models.ScoredRecord, error) {
	start := time.Now()

	if g.config.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.CallTimeout)
		defer cancel()
	}

	key := g.cacheKey(call)
	if raw, ok := g.cache.Get(ctx, key); ok {
		var cached []models.ScoredRecord
		if err := json.Unmarshal(raw, &cached); err == nil {
			metrics.ToolCallsExecuted.WithLabelValues(string(call.Tool), "cache_hit").Inc()
			return cached, nil
		}
	}

	records, err := g.fetch(ctx, call)
	if err != nil {
		metrics.ToolCallsExecuted.WithLabelValues(string(call.Tool), "error").Inc()
		return nil, err
	}

	scoring.Sort(records)
	records = capRecords(records, call.Params.GetAllMatches)

	// Write-through is fire-and-forget off the response path.
	go func(snapshot []models.ScoredRecord) {
		wctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		g.cache.Set(wctx, key, snapshot, cache.Options{
			TTL:  ttlFor(call.Priority),
			Tags: []string{string(call.Tool)},
		}, cache.Metadata{"tool": string(call.Tool)})
	}(records)

	metrics.ToolCallsExecuted.WithLabelValues(string(call.Tool), "ok").Inc()
	metrics.ToolCallDuration.WithLabelValues(string(call.Tool)).Observe(time.Since(start).Seconds())
	return records, nil
}

func (g *Gateway) fetch(ctx context.Context, call models.ToolCall) ([]models.ScoredRecord, error) {
	// Over-fetch to the absolute maximum so capping happens on ranked
	// records, not on whatever order the store returned.
	limit := AbsoluteMaxResults
	filterTerms := call.Params.Terms
	if !call.Params.ExpandedTerms {
		// The planner pre-expands search-intent terms; everything else
		// is widened here so every textual filter term gets expansion.
		filterTerms = terms.ExpandAll(filterTerms)
	}

	switch call.Tool {
	case models.ToolSearchPrograms:
		programs, err := g.store.SearchPrograms(ctx, filterTerms, call.Params.Category, limit)
		if err != nil {
			return nil, err
		}
		return g.scorePrograms(programs, call), nil

	case models.ToolRecommendPrograms:
		recTerms := filterTerms
		if len(call.Params.Interests) > 0 {
			recTerms = terms.ExpandAll(append(append([]string{}, call.Params.Terms...), call.Params.Interests...))
		}
		programs, err := g.store.SearchPrograms(ctx, recTerms, call.Params.Category, limit)
		if err != nil {
			return nil, err
		}
		return g.scorePrograms(programs, call), nil

	case models.ToolSearchAll:
		all, err := g.store.SearchAll(ctx, filterTerms, limit)
		if err != nil {
			return nil, err
		}
		return g.scoreAll(all, call), nil

	case models.ToolCoursePathways:
		pathways, err := g.store.PathwaysForGrade(ctx, filterTerms, call.Params.GradeLevel, limit)
		if err != nil {
			return nil, err
		}
		return g.scorePathways(pathways, call), nil

	case models.ToolCareerStats:
		careers, err := g.store.CareerStats(ctx, filterTerms, limit)
		if err != nil {
			return nil, err
		}
		return g.scoreCareers(careers, call), nil

	case models.ToolCollectionStats:
		stats, err := g.store.CollectionStats(ctx)
		if err != nil {
			return nil, err
		}
		return []models.ScoredRecord{{
			Kind:       models.KindStats,
			Stats:      stats,
			SourceTool: string(call.Tool),
		}}, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, call.Tool)
	}
}

func (g *Gateway) scorePrograms(programs []models.EducationProgram, call models.ToolCall) []models.ScoredRecord {
	out := make([]models.ScoredRecord, 0, len(programs))
	for i := range programs {
		p := programs[i]
		var score float64
		if call.Params.IgnoreProfile || g.profile == nil {
			score = scoring.SearchScoreProgram(&p, call.Params.Terms)
		} else {
			score = scoring.ProfileScoreProgram(&p, g.profile)
			score += scoring.SearchScoreProgram(&p, call.Params.Terms)
		}
		out = append(out, models.ScoredRecord{
			Kind:       models.KindProgram,
			Program:    &p,
			Score:      score,
			SourceTool: string(call.Tool),
		})
	}
	return out
}

func (g *Gateway) scorePathways(pathways []models.PathwayCourseSequence, call models.ToolCall) []models.ScoredRecord {
	out := make([]models.ScoredRecord, 0, len(pathways))
	for i := range pathways {
		p := pathways[i]
		var score float64
		if call.Params.IgnoreProfile || g.profile == nil {
			score = scoring.SearchScorePathway(&p, call.Params.Terms)
		} else {
			score = scoring.ProfileScorePathway(&p, g.profile)
			score += scoring.SearchScorePathway(&p, call.Params.Terms)
		}
		out = append(out, models.ScoredRecord{
			Kind:       models.KindPathway,
			Pathway:    &p,
			Score:      score,
			SourceTool: string(call.Tool),
		})
	}
	return out
}

func (g *Gateway) scoreCareers(careers []models.CareerStat, call models.ToolCall) []models.ScoredRecord {
	out := make([]models.ScoredRecord, 0, len(careers))
	for i := range careers {
		c := careers[i]
		var score float64
		if call.Params.IgnoreProfile || g.profile == nil {
			score = scoring.SearchScoreCareer(&c, call.Params.Terms)
		} else {
			score = scoring.ProfileScoreCareer(&c, g.profile)
			score += scoring.SearchScoreCareer(&c, call.Params.Terms)
		}
		out = append(out, models.ScoredRecord{
			Kind:       models.KindCareer,
			Career:     &c,
			Score:      score,
			SourceTool: string(call.Tool),
		})
	}
	return out
}

func (g *Gateway) scoreAll(all *AllCollections, call models.ToolCall) []models.ScoredRecord {
	out := g.scorePrograms(all.Programs, call)
	out = append(out, g.scorePathways(all.Pathways, call)...)
	out = append(out, g.scoreCareers(all.Careers, call)...)
	return out
}

// cacheKey is a pure function of (tool, recognized params) plus the
// profile fingerprint when the call honors the profile. Profile-blind
// calls share rows across users.
func (g *Gateway) cacheKey(call models.ToolCall) string {
	params := map[string]interface{}{
		"tool":       string(call.Tool),
		"terms":      call.Params.Terms,
		"interests":  call.Params.Interests,
		"grade":      call.Params.GradeLevel,
		"category":   call.Params.Category,
		"allMatches": call.Params.GetAllMatches,
	}
	fingerprint := ""
	if !call.Params.IgnoreProfile {
		fingerprint = g.profile.Fingerprint()
	}
	return cache.GenerateKey(cache.NamespaceToolResults, params, fingerprint)
}

func ttlFor(priority models.CallPriority) time.Duration {
	if priority == models.PriorityPrimary {
		return cache.TTLPrimaryResults
	}
	return cache.TTLSupportingResults
}

func capRecords(records []models.ScoredRecord, getAllMatches bool) []models.ScoredRecord {
	limit := DefaultResultLimit
	if getAllMatches {
		limit = AbsoluteMaxResults
	}
	if len(records) > limit {
		return records[:limit]
	}
	return records
}
