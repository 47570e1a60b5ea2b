// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	awsclient "candidate-evaluation-workers/internal/common/aws"
	"candidate-evaluation-workers/internal/common/camunda"
	"candidate-evaluation-workers/internal/common/config"
	"candidate-evaluation-workers/internal/common/database"
	"candidate-evaluation-workers/internal/common/logger"
	"candidate-evaluation-workers/internal/common/observability"
	"candidate-evaluation-workers/internal/common/sheets"
	"candidate-evaluation-workers/internal/dashboard"
	"candidate-evaluation-workers/internal/export"

	// Session workers
	ap "candidate-evaluation-workers/internal/workers/evaluation/apply-prefill"
	ip "candidate-evaluation-workers/internal/workers/evaluation/import-prospects"

	// Scoring workers
	apt "candidate-evaluation-workers/internal/workers/evaluation/assess-portability"
	sbp "candidate-evaluation-workers/internal/workers/evaluation/simulate-business-plan"

	// Persistence & dashboard workers
	ecl "candidate-evaluation-workers/internal/workers/evaluation/export-candidate-ledger"
	nr "candidate-evaluation-workers/internal/workers/evaluation/notify-recruiter"
	se "candidate-evaluation-workers/internal/workers/evaluation/save-evaluation"
	ts "candidate-evaluation-workers/internal/workers/evaluation/toggle-shortlist"
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
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}
	_ = bootLog.Sync()

	zapLog := logger.Build(logger.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Service:     cfg.App.Name,
		Environment: cfg.App.Environment,
	})
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClient(cfg.Camunda)
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

	if err := pg.Migrate(ctx); err != nil {
		zapLog.Fatal("postgres schema migration failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init domain services ---
	sessions := redis.Sessions(cfg.Scoring.SessionTTL())
	evaluations := database.NewEvaluationRepository(pg.DB)
	sheetsClient := sheets.NewClient(cfg.Persistence)
	submitter := export.NewSubmitter(sheetsClient)
	toggler := dashboard.NewToggler(evaluations, sheetsClient)

	var mailer nr.Mailer
	if cfg.Notifications.Enabled {
		ses, err := awsclient.NewSESClient(ctx, cfg.Notifications.Region, cfg.Notifications.FromEmail)
		if err != nil {
			zapLog.Fatal("failed to create SES client", zap.Error(err))
		}
		mailer = ses
	}

	zapLog.Info("All external service clients initialized",
		zap.String("persistence", cfg.Persistence.BaseURL),
		zap.Bool("notifications", cfg.Notifications.Enabled),
	)

	// --- Register workers ---
	client := zeebe.GetClient()
	var workers []worker.JobWorker
	start := func(taskType string, handler worker.JobHandler) {
		if jw := camunda.StartWorker(client, taskType, config.GetWorkerConfig(cfg, taskType), handler, log); jw != nil {
			workers = append(workers, jw)
		}
	}

	// --- 1. Session workers ---
	{
		handler := ap.NewHandler(ap.LoadConfig(config.GetWorkerConfig(cfg, ap.TaskType)), sessions, log)
		start(ap.TaskType, handler.Handle)
	}
	{
		handler := ip.NewHandler(ip.LoadConfig(config.GetWorkerConfig(cfg, ip.TaskType)), sessions, log)
		start(ip.TaskType, handler.Handle)
	}

	// --- 2. Scoring workers ---
	{
		handler := sbp.NewHandler(
			sbp.LoadConfig(config.GetWorkerConfig(cfg, sbp.TaskType), cfg.Scoring),
			sessions, obs, log,
		)
		start(sbp.TaskType, handler.Handle)
	}
	{
		handler := apt.NewHandler(apt.LoadConfig(config.GetWorkerConfig(cfg, apt.TaskType)), sessions, obs, log)
		start(apt.TaskType, handler.Handle)
	}

	// --- 3. Persistence & dashboard workers ---
	{
		handler := se.NewHandler(se.LoadConfig(config.GetWorkerConfig(cfg, se.TaskType)), sessions, submitter, evaluations, log)
		start(se.TaskType, handler.Handle)
	}
	{
		handler := ts.NewHandler(ts.LoadConfig(config.GetWorkerConfig(cfg, ts.TaskType)), toggler, evaluations, log)
		start(ts.TaskType, handler.Handle)
	}
	{
		handler := ecl.NewHandler(ecl.LoadConfig(config.GetWorkerConfig(cfg, ecl.TaskType)), evaluations, log)
		start(ecl.TaskType, handler.Handle)
	}
	{
		handler := nr.NewHandler(
			nr.LoadConfig(config.GetWorkerConfig(cfg, nr.TaskType), cfg.Notifications),
			mailer, log,
		)
		start(nr.TaskType, handler.Handle)
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{}
		status := http.StatusOK
		for name, check := range map[string]func(context.Context) error{
			"zeebe":    zeebe.HealthCheck,
			"postgres": pg.Ping,
			"redis":    redis.Ping,
		} {
			if err := check(checkCtx); err != nil {
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}

		body := map[string]interface{}{"checks": checks, "time": time.Now().Format(time.RFC3339)}
		if status == http.StatusOK {
			body["status"] = "ready"
		} else {
			body["status"] = "not_ready"
		}
		writeJSON(w, status, body)
	})
	http.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.HTTPPort),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	camunda.StopWorkers(workers, log)

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping Health/Metrics server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
