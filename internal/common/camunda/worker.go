// internal/common/camunda/worker.go
package camunda

import (
	"candidate-evaluation-workers/internal/common/config"
	"candidate-evaluation-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// StartWorker opens a job worker for taskType. It returns nil when the worker
// is disabled.
func StartWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler worker.JobHandler, log logger.Logger) worker.JobWorker {
	if !wcfg.Enabled {
		log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return nil
	}

	jw := client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
	return jw
}

// StopWorkers closes every worker and waits for in-flight jobs.
func StopWorkers(workers []worker.JobWorker, log logger.Logger) {
	for _, w := range workers {
		if w == nil {
			continue
		}
		w.Close()
		w.AwaitClose()
	}
	log.Info("workers stopped", map[string]interface{}{"count": len(workers)})
}
