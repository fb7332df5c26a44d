// internal/workers/advisory/retrieve-recommendations/handler.go
package retrieverecommendations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"advisor-workers/internal/advisory/aggregator"
	"advisor-workers/internal/advisory/cache"
	"advisor-workers/internal/advisory/gateway"
	"advisor-workers/internal/advisory/planner"
	apperrors "advisor-workers/internal/common/errors"
	"advisor-workers/internal/common/logger"
	"advisor-workers/internal/common/metrics"
	"advisor-workers/internal/common/validation"
	"advisor-workers/internal/models"
)

const (
	TaskType = "retrieve-recommendations"
)

var (
	ErrInvalidRequest = errors.New("INVALID_REQUEST")
)

var inputSchema = validation.JSONSchema{
	Type: "object",
	Properties: map[string]validation.Property{
		"question":      {Type: "string", MinLength: intPtr(1)},
		"sessionId":     {Type: "string"},
		"requestId":     {Type: "string"},
		"queryAnalysis": {Type: "object"},
		"userProfile":   {Type: "object"},
	},
	Required:             []string{"question"},
	AdditionalProperties: true,
}

func intPtr(v int) *int { return &v }

// Handler plans and executes retrieval for one request. The store and
// cache handles are shared across jobs; the gateway is rebuilt per job
// because profile-mode scoring binds to the requesting user.
type Handler struct {
	config  *Config
	store   gateway.RecordStore
	cache   *cache.Cache
	planner *planner.Planner
	errors  *apperrors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(config *Config, store gateway.RecordStore, c *cache.Cache, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		store:   store,
		cache:   c,
		planner: planner.New(),
		errors:  apperrors.NewErrorHandler(scoped),
		logger:  scoped,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(job.Variables), &raw); err != nil {
		h.failJob(client, job, fmt.Errorf("%w: parse variables: %v", ErrInvalidRequest, err))
		return
	}

	if result := validation.ValidateInput(raw, inputSchema); !result.Valid {
		h.failJob(client, job, fmt.Errorf("%w: %s",
			ErrInvalidRequest, strings.Join(result.GetErrorMessages(), "; ")))
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, fmt.Errorf("%w: parse input: %v", ErrInvalidRequest, err))
		return
	}

	ctx := context.Background()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

// execute runs the full retrieval pipeline: plan, execute calls through
// a request-bound gateway, merge. The aggregator degrades gracefully, so
// the only error path left here is an empty question.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, fmt.Errorf("%w: question is required", ErrInvalidRequest)
	}

	requestID := input.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	log := h.logger.WithFields(map[string]interface{}{"requestId": requestID})

	analysis := input.Analysis
	if analysis.Intent == "" && len(analysis.SearchTerms) == 0 {
		log.Warn("no query analysis on job, using degraded default", nil)
		analysis = models.DefaultAnalyzedQuery()
	}

	plan := h.planner.Plan(analysis, input.Profile, input.Question)

	log.Info("query plan built", map[string]interface{}{
		"intent":    string(plan.Intent),
		"callCount": len(plan.Calls),
	})

	gw := gateway.New(
		&gateway.Config{CallTimeout: h.config.ToolTimeout},
		h.store, h.cache, input.Profile, log,
	)
	results := aggregator.New(gw, log).Run(ctx, plan)

	if plan.Context.ImprovedQuery != "" {
		h.cache.RememberQuery(plan.Context.ImprovedQuery, "")
	}

	return &Output{
		RequestID: requestID,
		Intent:    plan.Intent,
		Context:   plan.Context,
		Results:   results,
	}, nil
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
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, "INVALID_REQUEST").Inc()
	h.errors.HandleJobError(context.Background(), client, job,
		apperrors.NewInvalidRequestError(err.Error()))
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
