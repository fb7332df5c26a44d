// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"advisor-workers/internal/advisory/cache"
	"advisor-workers/internal/common/camunda"
	"advisor-workers/internal/common/config"
	"advisor-workers/internal/common/database"
	"advisor-workers/internal/common/logger"
	"advisor-workers/internal/common/observability"
	"advisor-workers/internal/store"
	"advisor-workers/internal/store/elastic"
	"advisor-workers/pkg/registry"

	aq "advisor-workers/internal/workers/advisory/analyze-query"
	rr "advisor-workers/internal/workers/advisory/retrieve-recommendations"
	sa "advisor-workers/internal/workers/advisory/synthesize-answer"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         time.Duration(cfg.Camunda.RequestTimeout) * time.Millisecond,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch (optional) ---
	// The store falls back to relational fan-out for cross-collection
	// search when Elasticsearch is absent, so a failed connection here
	// degrades instead of aborting startup.
	var searcher *elastic.Searcher
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		// Test the connection
		return esClient.Ping()
	}, 3, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Warn("elasticsearch unavailable, cross-collection search uses the relational fallback", zap.Error(err))
	} else {
		searcher = elastic.NewSearcher(esClient.Client)
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Shared pipeline collaborators ---
	advisoryCache := cache.New(redis.Client, log)
	recordStore := store.New(pg.DB, searcher, log)
	toolCatalog := registry.Builtin()

	genAITimeout := time.Duration(cfg.APIs.GenAI.Timeout) * time.Millisecond
	if genAITimeout == 0 {
		genAITimeout = 30 * time.Second
	}

	// --- Register Workers ---

	// Adapters for workers that declare their own Logger interfaces
	aqLogAdapter := &analyzeQueryLoggerAdapter{log}
	saLogAdapter := &synthesizeAnswerLoggerAdapter{log}

	var activeWorkers []*camunda.CamundaWorker

	if cfg.Workers[aq.TaskType].Enabled {
		handler := aq.NewHandler(
			&aq.Config{
				GenAIBaseURL: cfg.APIs.GenAI.BaseURL,
				GenAIAPIKey:  cfg.APIs.GenAI.APIKey,
				Timeout:      genAITimeout,
				MaxRetries:   cfg.Workers[aq.TaskType].MaxRetries,
			},
			aqLogAdapter,
		)
		activeWorkers = append(activeWorkers,
			startWorker(camundaClient, aq.TaskType, cfg.Workers[aq.TaskType], handler.Handle, zapLog))
	}

	if cfg.Workers[rr.TaskType].Enabled {
		handler := rr.NewHandler(
			&rr.Config{
				ToolTimeout: time.Duration(cfg.Advisory.ToolTimeout) * time.Millisecond,
			},
			recordStore, advisoryCache, log,
		)
		activeWorkers = append(activeWorkers,
			startWorker(camundaClient, rr.TaskType, cfg.Workers[rr.TaskType], handler.Handle, zapLog))
	}

	if cfg.Workers[sa.TaskType].Enabled {
		handler := sa.NewHandler(
			&sa.Config{
				GenAIBaseURL:        cfg.APIs.GenAI.BaseURL,
				GenAIAPIKey:         cfg.APIs.GenAI.APIKey,
				Timeout:             genAITimeout,
				MaxRetries:          cfg.Workers[sa.TaskType].MaxRetries,
				MaxTokens:           500,
				Temperature:         0.7,
				SimilarityThreshold: cfg.Advisory.SimilarityThreshold,
			},
			advisoryCache, saLogAdapter,
		)
		activeWorkers = append(activeWorkers,
			startWorker(camundaClient, sa.TaskType, cfg.Workers[sa.TaskType], handler.Handle, zapLog))
	}

	zapLog.Info("All advisory workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			status := "ready"
			code := http.StatusOK
			if err := camundaClient.HealthCheck(r.Context()); err != nil {
				status = "broker unreachable"
				code = http.StatusServiceUnavailable
			} else if err := pg.Ping(r.Context()); err != nil {
				status = "database unreachable"
				code = http.StatusServiceUnavailable
			}
			w.WriteHeader(code)
			json.NewEncoder(w).Encode(map[string]string{
				"status": status,
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/tools", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(toolCatalog)
		})
		http.HandleFunc("/cache/stats", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(advisoryCache.Stats(r.Context()))
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	for _, w := range activeWorkers {
		w.Close()
	}

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// Logger adapters for workers that have their own Logger interfaces
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

func startWorker(client *camunda.Client, taskType string, wcfg config.WorkerConfig, handlerFunc camunda.JobHandlerFunc, log *zap.Logger) *camunda.CamundaWorker {
	return camunda.NewWorker(client.GetClient(), taskType, camunda.WorkerOptions{
		MaxJobsActive: wcfg.MaxJobsActive,
		Timeout:       time.Duration(wcfg.Timeout) * time.Millisecond,
	}, handlerFunc, log)
}
