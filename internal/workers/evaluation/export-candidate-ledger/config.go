// internal/workers/evaluation/export-candidate-ledger/config.go
package exportcandidateledger

import (
	"time"

	"candidate-evaluation-workers/internal/common/config"
)

// DefaultLimit caps an export that does not set its own limit.
const DefaultLimit = 1000

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
