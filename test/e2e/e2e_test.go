// test/e2e/e2e_test.go
//
// End-to-end pipeline test against real PostgreSQL and Redis instances.
// Gated behind RUN_E2E=1; the GenAI collaborator is stubbed with a local
// HTTP server so no external AI service is needed.
package e2e

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisor-workers/internal/advisory/cache"
	"advisor-workers/internal/common/config"
	"advisor-workers/internal/common/database"
	"advisor-workers/internal/common/logger"
	"advisor-workers/internal/store"
	"advisor-workers/internal/store/elastic"

	aq "advisor-workers/internal/workers/advisory/analyze-query"
	rr "advisor-workers/internal/workers/advisory/retrieve-recommendations"
	sa "advisor-workers/internal/workers/advisory/synthesize-answer"
)

// Logger adapters to bridge logger.Logger to worker-specific Logger interfaces
type analyzeQueryLoggerAdapter struct {
	logger.Logger
}

func (a *analyzeQueryLoggerAdapter) With(fields map[string]interface{}) aq.Logger {
	return &analyzeQueryLoggerAdapter{a.Logger.With(fields)}
}

type synthesizeAnswerLoggerAdapter struct {
	logger.Logger
}

func (a *synthesizeAnswerLoggerAdapter) With(fields map[string]interface{}) sa.Logger {
	return &synthesizeAnswerLoggerAdapter{a.Logger.With(fields)}
}

func skipUnlessE2E(t *testing.T) {
	t.Helper()
	if os.Getenv("RUN_E2E") != "1" {
		t.Skip("set RUN_E2E=1 to run against local PostgreSQL and Redis")
	}
}

func seedTables(t *testing.T, pg *database.PostgresClient) {
	t.Helper()
	db := pg.DB

	statements := []string{
		`CREATE TABLE IF NOT EXISTS education_programs (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			category TEXT,
			keywords TEXT[],
			career_outcomes TEXT[],
			credential_tier TEXT,
			location TEXT,
			institution TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS course_pathways (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			category TEXT,
			keywords TEXT[],
			career_outcomes TEXT[],
			start_grade INT,
			end_grade INT,
			linked_program_ids TEXT[]
		)`,
		`CREATE TABLE IF NOT EXISTS career_stats (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			category TEXT,
			keywords TEXT[],
			region TEXT,
			posting_volume INT,
			median_salary INT
		)`,
		`DELETE FROM education_programs WHERE id LIKE 'e2e-%'`,
		`DELETE FROM course_pathways WHERE id LIKE 'e2e-%'`,
		`DELETE FROM career_stats WHERE id LIKE 'e2e-%'`,
		`INSERT INTO education_programs (id, name, description, category, keywords, career_outcomes, credential_tier)
			VALUES ('e2e-p1', 'Practical Nursing', 'Two-year nursing program', 'healthcare',
				ARRAY['nursing', 'health'], ARRAY['registered nurse'], 'associate')`,
		`INSERT INTO education_programs (id, name, description, category, keywords, career_outcomes, credential_tier)
			VALUES ('e2e-p2', 'Welding Technology', 'Hands-on welding certificate', 'trades',
				ARRAY['welding', 'fabrication'], ARRAY['welder'], 'certificate')`,
		`INSERT INTO course_pathways (id, name, description, category, keywords, career_outcomes, start_grade, end_grade)
			VALUES ('e2e-s1', 'Health Sciences Pathway', 'High school health sequence', 'healthcare',
				ARRAY['health', 'biology'], ARRAY['nursing'], 9, 12)`,
		`INSERT INTO career_stats (id, title, description, category, keywords, region, posting_volume, median_salary)
			VALUES ('e2e-c1', 'Registered Nurse', 'Staff nurse roles', 'healthcare',
				ARRAY['nursing'], 'national', 740, 78000)`,
	}
	for _, stmt := range statements {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
}

func TestAdvisoryPipelineE2E(t *testing.T) {
	skipUnlessE2E(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	require.NoError(t, err)

	log := logger.NewNoOpLogger()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer pg.Close()
	require.NoError(t, pg.Ping(ctx))

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err)
	defer rdb.Close()
	require.NoError(t, rdb.Ping(ctx))

	seedTables(t, pg)

	// Elasticsearch is optional; the store falls back to relational
	// fan-out when it is absent.
	var searcher *elastic.Searcher
	if esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch); err == nil && esClient.Ping() == nil {
		searcher = elastic.NewSearcher(esClient.Client)
		t.Log("Elasticsearch available, cross-collection search goes through it")
	} else {
		t.Log("Elasticsearch unavailable, using relational fallback")
	}

	advisoryCache := cache.New(rdb.Client, log)
	recordStore := store.New(pg.DB, searcher, log)

	// Stub GenAI collaborator: analysis plus synthesis.
	genAI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/ai/analyze-query":
			w.Write([]byte(`{"improvedQuery": "nursing programs", "searchTerms": ["nursing"], "intent": "search", "ignoreProfile": true}`))
		case "/api/ai/synthesize-answer":
			w.Write([]byte(`{"answer": "Practical Nursing is a strong match.", "confidence": 0.9, "sources": ["education_programs"]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer genAI.Close()

	// --- Stage 1: query analysis ---
	analyzeHandler := aq.NewHandler(&aq.Config{
		GenAIBaseURL: genAI.URL,
		Timeout:      10 * time.Second,
		MaxRetries:   1,
	}, &analyzeQueryLoggerAdapter{log})

	analysis, err := analyzeHandler.Execute(ctx, &aq.Input{
		Question: "what nursing programs are out there?",
	})
	require.NoError(t, err)
	assert.Equal(t, "nursing programs", analysis.Analysis.ImprovedQuery)

	// --- Stage 2: plan, retrieve, aggregate ---
	retrieveHandler := rr.NewHandler(&rr.Config{
		ToolTimeout: 10 * time.Second,
	}, recordStore, advisoryCache, log)

	retrieved, err := retrieveHandler.Execute(ctx, &rr.Input{
		Question: "what nursing programs are out there?",
		Analysis: analysis.Analysis,
	})
	require.NoError(t, err)
	require.NotNil(t, retrieved.Results)
	assert.NotZero(t, retrieved.Results.TotalResults)
	assert.NotNil(t, retrieved.Results.Stats, "every plan returns collection statistics")

	foundNursing := false
	for _, rec := range retrieved.Results.Programs {
		if rec.Program != nil && rec.Program.ID == "e2e-p1" {
			foundNursing = true
			assert.Greater(t, rec.Score, 0.0)
		}
	}
	assert.True(t, foundNursing, "seeded nursing program should rank in results")

	// --- Stage 3: answer synthesis with caching ---
	synthesizeHandler := sa.NewHandler(&sa.Config{
		GenAIBaseURL:        genAI.URL,
		Timeout:             10 * time.Second,
		MaxRetries:          1,
		MaxTokens:           500,
		Temperature:         0.7,
		SimilarityThreshold: cfg.Advisory.SimilarityThreshold,
	}, advisoryCache, &synthesizeAnswerLoggerAdapter{log})

	answer, err := synthesizeHandler.Execute(ctx, &sa.Input{
		Question: "what nursing programs are out there?",
		Intent:   retrieved.Intent,
		Context:  retrieved.Context,
		Results:  retrieved.Results,
	})
	require.NoError(t, err)
	assert.Equal(t, "Practical Nursing is a strong match.", answer.Answer)
	assert.False(t, answer.FromCache)

	// Same question again comes from the answer cache.
	cached, err := synthesizeHandler.Execute(ctx, &sa.Input{
		Question: "what nursing programs are out there?",
		Intent:   retrieved.Intent,
		Context:  retrieved.Context,
		Results:  retrieved.Results,
	})
	require.NoError(t, err)
	assert.True(t, cached.FromCache)

	// Second retrieval pass is served from cached tool results without
	// breaking the response contract.
	again, err := retrieveHandler.Execute(ctx, &rr.Input{
		Question: "what nursing programs are out there?",
		Analysis: analysis.Analysis,
	})
	require.NoError(t, err)
	assert.Equal(t, retrieved.Results.TotalResults, again.Results.TotalResults)
}
