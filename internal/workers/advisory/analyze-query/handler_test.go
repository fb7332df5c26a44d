// internal/workers/advisory/analyze-query/handler_test.go
package analyzequery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisor-workers/internal/models"
)

// TestLogger implements the Logger interface for tests.
type TestLogger struct{}

func (l *TestLogger) Info(msg string, fields map[string]interface{})  {}
func (l *TestLogger) Warn(msg string, fields map[string]interface{})  {}
func (l *TestLogger) Error(msg string, fields map[string]interface{}) {}
func (l *TestLogger) With(fields map[string]interface{}) Logger       { return l }

func testHandler(t *testing.T, baseURL string) *Handler {
	t.Helper()
	return NewHandler(&Config{
		GenAIBaseURL: baseURL,
		Timeout:      2 * time.Second,
		MaxRetries:   1,
	}, &TestLogger{})
}

func TestExecute_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ai/analyze-query", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"improvedQuery": "computer science degree programs",
			"searchTerms": ["Computer Science", " programming "],
			"intent": "search",
			"ignoreProfile": true
		}`))
	}))
	defer server.Close()

	h := testHandler(t, server.URL)
	output, err := h.Execute(context.Background(), &Input{Question: "any comp sci degrees?"})
	require.NoError(t, err)

	assert.Equal(t, models.IntentSearch, output.Analysis.Intent)
	assert.True(t, output.Analysis.IgnoreProfile)
	assert.False(t, output.Analysis.Degraded)
	// Terms are lowercased and trimmed on the way in.
	assert.Equal(t, []string{"computer science", "programming"}, output.Analysis.SearchTerms)
}

func TestExecute_UnknownIntentBecomesDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"intent": "experimental_v2", "searchTerms": ["law"]}`))
	}))
	defer server.Close()

	h := testHandler(t, server.URL)
	output, err := h.Execute(context.Background(), &Input{Question: "tell me about law school"})
	require.NoError(t, err)

	assert.Equal(t, models.IntentDefault, output.Analysis.Intent)
	// Missing improvedQuery falls back to the raw question.
	assert.Equal(t, "tell me about law school", output.Analysis.ImprovedQuery)
}

func TestExecute_RetriesThenSucceeds(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"intent": "profile_based"}`))
	}))
	defer server.Close()

	h := testHandler(t, server.URL)
	output, err := h.Execute(context.Background(), &Input{Question: "what should I study"})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, models.IntentProfileBased, output.Analysis.Intent)
}

func TestExecute_ServiceDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	h := testHandler(t, server.URL)
	_, err := h.Execute(context.Background(), &Input{Question: "anything"})
	assert.ErrorIs(t, err, ErrAnalysisFailed)
}

func TestExecute_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"intent": "search"}`))
	}))
	defer server.Close()

	h := NewHandler(&Config{
		GenAIBaseURL: server.URL,
		Timeout:      50 * time.Millisecond,
		MaxRetries:   0,
	}, &TestLogger{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := h.Execute(ctx, &Input{Question: "anything"})
	assert.ErrorIs(t, err, ErrAnalysisTimeout)
}

func TestDefaultAnalysisContract(t *testing.T) {
	// The fallback the job completes with when analysis is unavailable.
	analysis := models.DefaultAnalyzedQuery()

	assert.Equal(t, models.IntentProfileBased, analysis.Intent)
	assert.Empty(t, analysis.SearchTerms)
	assert.NotNil(t, analysis.SearchTerms)
	assert.False(t, analysis.IgnoreProfile)
	assert.True(t, analysis.Degraded)
}
