// internal/workers/advisory/analyze-query/handler.go
package analyzequery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"advisor-workers/internal/models"
)

const (
	TaskType = "analyze-query"
)

var (
	ErrInvalidRequest   = errors.New("INVALID_REQUEST")
	ErrAnalysisFailed   = errors.New("ANALYSIS_DEGRADED")
	ErrAnalysisTimeout  = errors.New("ANALYSIS_TIMEOUT")
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config *Config
	client *http.Client
	logger Logger
}

func NewHandler(config *Config, log Logger) *Handler {
	return &Handler{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// Handle runs query analysis. Analysis failures never fail the job: the
// pipeline must proceed, so any upstream error completes the job with the
// degraded default analysis instead.
func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, fmt.Errorf("%w: parse input: %v", ErrInvalidRequest, err))
		return
	}

	if strings.TrimSpace(input.Question) == "" {
		h.failJob(client, job, fmt.Errorf("%w: question is required", ErrInvalidRequest))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.logger.Warn("analysis unavailable, completing with default analysis", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		output = &Output{Analysis: models.DefaultAnalyzedQuery()}
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	requestBody := map[string]interface{}{
		"question": input.Question,
	}
	if input.Profile != nil && !input.Profile.IsEmpty() {
		requestBody["userProfile"] = input.Profile
	}

	body, _ := json.Marshal(requestBody)

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ErrAnalysisTimeout
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", h.config.GenAIBaseURL+"/api/ai/analyze-query", bytes.NewBuffer(body))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
		}
		req.Header.Set("Content-Type", "application/json")
		if h.config.GenAIAPIKey != "" {
			req.Header.Set("Authorization", "Bearer "+h.config.GenAIAPIKey)
		}

		resp, lastErr = h.client.Do(req)

		if ctx.Err() != nil ||
			errors.Is(lastErr, context.DeadlineExceeded) ||
			errors.Is(lastErr, context.Canceled) {
			return nil, ErrAnalysisTimeout
		}

		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, lastErr)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: no successful response after retries", ErrAnalysisFailed)
	}
	defer resp.Body.Close()

	var apiResponse struct {
		ImprovedQuery string   `json:"improvedQuery"`
		SearchTerms   []string `json:"searchTerms"`
		Intent        string   `json:"intent"`
		IgnoreProfile bool     `json:"ignoreProfile"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrAnalysisFailed, err)
	}

	analysis := models.AnalyzedQuery{
		ImprovedQuery: apiResponse.ImprovedQuery,
		SearchTerms:   normalizeTerms(apiResponse.SearchTerms),
		Intent:        models.Intent(apiResponse.Intent),
		IgnoreProfile: apiResponse.IgnoreProfile,
	}
	if !analysis.Intent.Valid() {
		// An unrecognized intent value from a newer analyzer model is
		// recoverable; planning treats it as the default branch.
		analysis.Intent = models.IntentDefault
	}
	if analysis.ImprovedQuery == "" {
		analysis.ImprovedQuery = input.Question
	}

	h.logger.Info("query analyzed", map[string]interface{}{
		"intent":        string(analysis.Intent),
		"termCount":     len(analysis.SearchTerms),
		"ignoreProfile": analysis.IgnoreProfile,
	})

	return &Output{Analysis: analysis}, nil
}

func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)

	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":    job.Key,
		"error":     err.Error(),
		"errorCode": "INVALID_REQUEST",
	})

	_, _ = client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(0).
		ErrorMessage(err.Error()).
		Send(context.Background())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
