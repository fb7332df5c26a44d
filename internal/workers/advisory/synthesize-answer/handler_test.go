// internal/workers/advisory/synthesize-answer/handler_test.go
package synthesizeanswer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisor-workers/internal/advisory/cache"
	"advisor-workers/internal/common/logger"
	"advisor-workers/internal/models"
)

// TestLogger implements the Logger interface for tests.
type TestLogger struct{}

func (l *TestLogger) Info(msg string, fields map[string]interface{})  {}
func (l *TestLogger) Warn(msg string, fields map[string]interface{})  {}
func (l *TestLogger) Error(msg string, fields map[string]interface{}) {}
func (l *TestLogger) With(fields map[string]interface{}) Logger       { return l }

func testHandler(t *testing.T, baseURL string, threshold float64) (*Handler, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	c := cache.New(rdb, logger.NewNoOpLogger())
	h := NewHandler(&Config{
		GenAIBaseURL:        baseURL,
		Timeout:             2 * time.Second,
		MaxRetries:          1,
		MaxTokens:           500,
		Temperature:         0.7,
		SimilarityThreshold: threshold,
	}, c, &TestLogger{})
	return h, mr
}

func answerServer(t *testing.T, attempts *int, answer string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*attempts++
		assert.Equal(t, "/api/ai/synthesize-answer", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"answer": "` + answer + `", "confidence": 0.9, "sources": ["education_programs"]}`))
	}))
}

func resultsWith(total int) *models.UnifiedResponse {
	return &models.UnifiedResponse{
		QueriesExecuted: []string{"search_programs", "get_collection_stats"},
		TotalResults:    total,
	}
}

func TestExecute_SynthesizesAndCaches(t *testing.T) {
	attempts := 0
	server := answerServer(t, &attempts, "Nursing looks like a strong fit.")
	defer server.Close()

	h, _ := testHandler(t, server.URL, 0)

	input := &Input{
		Question: "what nursing programs are there?",
		Intent:   models.IntentSearch,
		Results:  resultsWith(3),
	}

	output, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "Nursing looks like a strong fit.", output.Answer)
	assert.Equal(t, 0.9, output.Confidence)
	assert.False(t, output.FromCache)
	assert.Equal(t, 1, attempts)

	// Identical question again: served from the answer cache, no second
	// upstream call.
	cached, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, cached.FromCache)
	assert.Equal(t, output.Answer, cached.Answer)
	assert.Equal(t, 1, attempts)
}

func TestExecute_SimilarQuestionReusesAnswer(t *testing.T) {
	attempts := 0
	server := answerServer(t, &attempts, "Here are some program options.")
	defer server.Close()

	h, _ := testHandler(t, server.URL, 0.6)

	_, err := h.Execute(context.Background(), &Input{
		Question: "what nursing programs are there",
		Results:  resultsWith(2),
	})
	require.NoError(t, err)
	require.Equal(t, 1, attempts)

	// Rephrased but token-similar question crosses the 0.6 threshold.
	output, err := h.Execute(context.Background(), &Input{
		Question: "what nursing programs are available",
		Results:  resultsWith(2),
	})
	require.NoError(t, err)
	assert.True(t, output.FromCache)
	assert.Equal(t, "Here are some program options.", output.Answer)
	assert.Equal(t, 1, attempts)
}

func TestExecute_ZeroThresholdIsTelemetryOnly(t *testing.T) {
	attempts := 0
	server := answerServer(t, &attempts, "An answer.")
	defer server.Close()

	h, _ := testHandler(t, server.URL, 0)

	_, err := h.Execute(context.Background(), &Input{
		Question: "what nursing programs are there",
		Results:  resultsWith(2),
	})
	require.NoError(t, err)

	// Similar question must synthesize fresh when the threshold is zero.
	output, err := h.Execute(context.Background(), &Input{
		Question: "what nursing programs are available",
		Results:  resultsWith(2),
	})
	require.NoError(t, err)
	assert.False(t, output.FromCache)
	assert.Equal(t, 2, attempts)
}

func TestExecute_EmptyResultsGetShortTTL(t *testing.T) {
	attempts := 0
	server := answerServer(t, &attempts, "Nothing matched, try broader terms.")
	defer server.Close()

	h, mr := testHandler(t, server.URL, 0)

	_, err := h.Execute(context.Background(), &Input{
		Question: "quantum basket weaving degrees",
		Results:  resultsWith(0),
	})
	require.NoError(t, err)

	var answerKeys []string
	for _, k := range mr.Keys() {
		if strings.HasPrefix(k, "advisor:answer:") {
			answerKeys = append(answerKeys, k)
		}
	}
	require.Len(t, answerKeys, 1)
	assert.Equal(t, cache.TTLEmptyAnswer, mr.TTL(answerKeys[0]))
}

func TestExecute_EmptyAnswerFallbackText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"answer": "   ", "confidence": 0.8}`))
	}))
	defer server.Close()

	h, _ := testHandler(t, server.URL, 0)

	output, err := h.Execute(context.Background(), &Input{
		Question: "anything",
		Results:  resultsWith(1),
	})
	require.NoError(t, err)
	assert.Equal(t, "I don't have enough information to answer that question.", output.Answer)
	assert.Equal(t, 0.1, output.Confidence)
}

func TestExecute_ServiceDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	h, _ := testHandler(t, server.URL, 0)

	_, err := h.Execute(context.Background(), &Input{Question: "anything"})
	assert.ErrorIs(t, err, ErrSynthesisFailed)
}

func TestExecute_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"answer": "late"}`))
	}))
	defer server.Close()

	h, _ := testHandler(t, server.URL, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := h.Execute(ctx, &Input{Question: "anything"})
	assert.ErrorIs(t, err, ErrSynthesisTimeout)
}
