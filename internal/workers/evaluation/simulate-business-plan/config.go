// internal/workers/evaluation/simulate-business-plan/config.go
package simulatebusinessplan

import (
	"time"

	"candidate-evaluation-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// PipelineTolerancePct seeds new sessions when the job does not carry its own.
	PipelineTolerancePct float64
}

func LoadConfig(wcfg config.WorkerConfig, scoring config.ScoringConfig) *Config {
	cfg := &Config{
		Timeout:              10 * time.Second,
		PipelineTolerancePct: scoring.PipelineTolerancePct,
	}
	if wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	return cfg
}
