// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// JobHandlerFunc is the signature every advisory worker exposes.
type JobHandlerFunc func(client worker.JobClient, job entities.Job)

// WorkerOptions carries the per-task-type polling settings.
type WorkerOptions struct {
	MaxJobsActive int
	Timeout       time.Duration
}

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

func NewWorker(
	client zbc.Client,
	taskType string,
	opts WorkerOptions,
	handler JobHandlerFunc,
	logger *zap.Logger,
) *CamundaWorker {
	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(handler)).
		MaxJobsActive(opts.MaxJobsActive).
		Timeout(opts.Timeout).
		Open()

	logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", opts.MaxJobsActive),
		zap.Duration("timeout", opts.Timeout),
	)

	return &CamundaWorker{
		worker:   jobWorker,
		logger:   logger,
		taskType: taskType,
	}
}

// Close drains in-flight jobs and stops polling.
func (w *CamundaWorker) Close() {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.worker.Close()
}
