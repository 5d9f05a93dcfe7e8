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

	"match-workers/internal/common/camunda"
	"match-workers/internal/common/completion"
	"match-workers/internal/common/config"
	"match-workers/internal/common/database"
	"match-workers/internal/common/logger"
	"match-workers/internal/common/observability"
	"match-workers/internal/store"
	"match-workers/pkg/registry"

	ar "match-workers/internal/workers/matching/assemble-recommendations"
	bp "match-workers/internal/workers/matching/build-profile"
	cs "match-workers/internal/workers/matching/coarse-score"
	lr "match-workers/internal/workers/matching/llm-rerank"
	rj "match-workers/internal/workers/matching/recommend"
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
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebeClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
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
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch with retry (optional) ---
	var jobSearch *store.JobSearch
	if cfg.Database.Elasticsearch.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		jobSearch = store.NewJobSearch(esClient.Client, cfg.Database.Elasticsearch.JobsIndex)
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Init completion service ---
	completionSvc, err := completion.New(ctx, cfg.Completion, log)
	if err != nil {
		zapLog.Fatal("completion service init failed", zap.Error(err))
	}
	zapLog.Info("Completion service initialized", zap.String("provider", cfg.Completion.Provider))

	// --- Load activity registry ---
	if cfg.Registry.Path != "" {
		reg, err := registry.LoadRegistry(cfg.Registry.Path)
		if err != nil {
			zapLog.Fatal("registry load failed", zap.Error(err))
		}
		zapLog.Info("Activity registry loaded",
			zap.String("version", reg.Version),
			zap.Strings("taskTypes", reg.TaskTypes()),
		)
	}

	// --- Stores ---
	candidateStore := store.NewCandidateStore(pg.DB)
	jobStore := store.NewJobStore(pg.DB)
	userStateStore := store.NewUserStateStore(pg.DB)

	// --- Register matching workers ---
	var workers []*camunda.Worker

	profileHandler := bp.NewHandler(
		&bp.Config{
			CacheTTL: time.Duration(cfg.Matching.ProfileCacheTTL) * time.Second,
			Timeout:  config.GetDuration(config.GetWorkerConfig(cfg, bp.TaskType).Timeout),
		},
		candidateStore, redisClient.Client, log,
	)
	if config.IsWorkerEnabled(cfg, bp.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, bp.TaskType)
		workers = append(workers, camunda.StartWorker(zeebeClient, bp.TaskType,
			wcfg.MaxJobsActive, config.GetDuration(wcfg.Timeout), profileHandler.Handle, zapLog))
	}

	scoreHandler := cs.NewHandler(
		&cs.Config{
			Timeout:  config.GetDuration(config.GetWorkerConfig(cfg, cs.TaskType).Timeout),
			Matching: cfg.Matching,
		},
		jobStore, userStateStore, log,
	)
	if config.IsWorkerEnabled(cfg, cs.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, cs.TaskType)
		workers = append(workers, camunda.StartWorker(zeebeClient, cs.TaskType,
			wcfg.MaxJobsActive, config.GetDuration(wcfg.Timeout), scoreHandler.Handle, zapLog))
	}

	rerankHandler := lr.NewHandler(
		&lr.Config{
			Timeout:    config.GetDuration(cfg.Completion.Timeout),
			MaxRetries: cfg.Completion.MaxRetries,
		},
		completionSvc, log,
	)
	if config.IsWorkerEnabled(cfg, lr.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, lr.TaskType)
		workers = append(workers, camunda.StartWorker(zeebeClient, lr.TaskType,
			wcfg.MaxJobsActive, config.GetDuration(wcfg.Timeout), rerankHandler.Handle, zapLog))
	}

	assembleHandler := ar.NewHandler(
		&ar.Config{
			Timeout:    config.GetDuration(config.GetWorkerConfig(cfg, ar.TaskType).Timeout),
			FinalLimit: cfg.Matching.FinalLimit,
		},
		log,
	)
	if config.IsWorkerEnabled(cfg, ar.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, ar.TaskType)
		workers = append(workers, camunda.StartWorker(zeebeClient, ar.TaskType,
			wcfg.MaxJobsActive, config.GetDuration(wcfg.Timeout), assembleHandler.Handle, zapLog))
	}

	if config.IsWorkerEnabled(cfg, rj.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, rj.TaskType)
		var search rj.Searcher
		if jobSearch != nil {
			search = jobSearch
		}
		recommendHandler := rj.NewHandler(
			&rj.Config{
				Timeout:       config.GetDuration(wcfg.Timeout),
				RerankTimeout: config.GetDuration(cfg.Completion.Timeout),
				SearchEnabled: cfg.Database.Elasticsearch.Enabled,
				SearchSize:    cfg.Matching.JobPageSize,
			},
			cfg.Matching.RecencyCutoffDays,
			profileHandler, scoreHandler, rerankHandler, assembleHandler,
			search, obs, log,
		)
		workers = append(workers, camunda.StartWorker(zeebeClient, rj.TaskType,
			wcfg.MaxJobsActive, config.GetDuration(wcfg.Timeout), recommendHandler.Handle, zapLog))
	}

	zapLog.Info("All matching workers registered", zap.Int("count", len(workers)))

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
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.Address))
		if err := http.ListenAndServe(cfg.Metrics.Address, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	for _, w := range workers {
		w.Stop()
	}

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
