// internal/workers/evaluation/save-evaluation/config.go
package saveevaluation

import (
	"time"

	"candidate-evaluation-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(wcfg config.WorkerConfig) *Config {
	cfg := &Config{Timeout: 30 * time.Second}
	if wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	return cfg
}
