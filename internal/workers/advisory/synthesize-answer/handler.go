// internal/workers/advisory/synthesize-answer/handler.go
package synthesizeanswer

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

	"advisor-workers/internal/advisory/cache"
	apperrors "advisor-workers/internal/common/errors"
)

const (
	TaskType = "synthesize-answer"
)

var (
	ErrInvalidRequest   = errors.New("INVALID_REQUEST")
	ErrSynthesisFailed  = errors.New("SYNTHESIS_FAILED")
	ErrSynthesisTimeout = errors.New("SYNTHESIS_TIMEOUT")
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
	cache  *cache.Cache
	errors *apperrors.ErrorHandler
	logger Logger
}

func NewHandler(config *Config, c *cache.Cache, log Logger) *Handler {
	scoped := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config: config,
		client: &http.Client{},
		cache:  c,
		errors: apperrors.NewErrorHandler(scoped),
		logger: scoped,
	}
}

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
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

// execute resolves the answer in reuse order: exact answer cache, then
// similarity reuse, then a fresh synthesis call. Fresh answers are
// written back before returning; empty-result answers expire fast so a
// transient retrieval miss does not pin a useless answer for half an hour.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	key := h.answerKey(input)

	if raw, ok := h.cache.Get(ctx, key); ok {
		var cached Output
		if err := json.Unmarshal(raw, &cached); err == nil {
			cached.FromCache = true
			h.logger.Info("answer served from cache", map[string]interface{}{
				"key": key,
			})
			return &cached, nil
		}
	}

	if raw, ok := h.cache.FindSimilar(ctx, input.Question, h.config.SimilarityThreshold); ok {
		var cached Output
		if err := json.Unmarshal(raw, &cached); err == nil {
			cached.FromCache = true
			h.logger.Info("answer reused from similar query", map[string]interface{}{
				"threshold": h.config.SimilarityThreshold,
			})
			return &cached, nil
		}
	}

	output, err := h.synthesize(ctx, input)
	if err != nil {
		return nil, err
	}

	ttl := cache.TTLAnswer
	if input.Results == nil || input.Results.TotalResults == 0 {
		ttl = cache.TTLEmptyAnswer
	}
	h.cache.Set(ctx, key, output, cache.Options{
		TTL:  ttl,
		Tags: []string{"answer"},
	}, cache.Metadata{
		"question": input.Question,
		"intent":   string(input.Intent),
	})
	h.cache.RememberQuery(input.Question, key)

	return output, nil
}

func (h *Handler) synthesize(ctx context.Context, input *Input) (*Output, error) {
	requestBody := map[string]interface{}{
		"question":    input.Question,
		"intent":      string(input.Intent),
		"context":     input.Context,
		"results":     input.Results,
		"max_tokens":  h.config.MaxTokens,
		"temperature": h.config.Temperature,
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
				return nil, ErrSynthesisTimeout
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", h.config.GenAIBaseURL+"/api/ai/synthesize-answer", bytes.NewBuffer(body))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
		}
		req.Header.Set("Content-Type", "application/json")
		if h.config.GenAIAPIKey != "" {
			req.Header.Set("Authorization", "Bearer "+h.config.GenAIAPIKey)
		}

		resp, lastErr = h.client.Do(req)

		if ctx.Err() != nil ||
			errors.Is(lastErr, context.DeadlineExceeded) ||
			errors.Is(lastErr, context.Canceled) {
			return nil, ErrSynthesisTimeout
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
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, lastErr)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: no successful response after retries", ErrSynthesisFailed)
	}
	defer resp.Body.Close()

	var apiResponse struct {
		Answer     string   `json:"answer"`
		Confidence float64  `json:"confidence"`
		Sources    []string `json:"sources"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrSynthesisFailed, err)
	}

	if strings.TrimSpace(apiResponse.Answer) == "" {
		apiResponse.Answer = "I don't have enough information to answer that question."
		apiResponse.Confidence = 0.1
	}

	h.logger.Info("answer synthesized", map[string]interface{}{
		"confidence": apiResponse.Confidence,
		"sources":    len(apiResponse.Sources),
	})

	return &Output{
		Answer:     apiResponse.Answer,
		Confidence: apiResponse.Confidence,
		Sources:    apiResponse.Sources,
	}, nil
}

// answerKey isolates answers by question, intent and the profile signals
// that shaped the plan, so two users with different interests never share
// a personalized answer row.
func (h *Handler) answerKey(input *Input) string {
	return cache.GenerateKey(cache.NamespaceAnswers, map[string]interface{}{
		"question":   strings.ToLower(strings.TrimSpace(input.Question)),
		"intent":     string(input.Intent),
		"interests":  input.Context.Interests,
		"goals":      input.Context.CareerGoals,
		"gradeLevel": input.Context.GradeLevel,
	}, "")
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

// failJob routes through the shared error handler so retry counts and
// BPMN error codes stay consistent across workers.
func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	var stdErr *apperrors.StandardError
	switch {
	case errors.Is(err, ErrSynthesisTimeout):
		stdErr = apperrors.NewSynthesisTimeoutError()
	case errors.Is(err, ErrSynthesisFailed):
		stdErr = apperrors.NewSynthesisFailedError(err)
	default:
		stdErr = apperrors.NewInvalidRequestError(err.Error())
	}
	h.errors.HandleJobError(context.Background(), client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
