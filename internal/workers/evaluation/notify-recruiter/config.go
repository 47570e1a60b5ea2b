// internal/workers/evaluation/notify-recruiter/config.go
package notifyrecruiter

import (
	"time"

	"candidate-evaluation-workers/internal/common/config"
)

type Config struct {
	Timeout    time.Duration
	Enabled    bool
	Recipients []string
	NotifyOn   []string
}

func LoadConfig(wcfg config.WorkerConfig, ncfg config.NotificationConfig) *Config {
	cfg := &Config{
		Timeout:    15 * time.Second,
		Enabled:    ncfg.Enabled,
		Recipients: ncfg.Recruiters,
		NotifyOn:   ncfg.NotifyOn,
	}
	if wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	return cfg
}

func (c *Config) notifies(verdict string) bool {
	for _, v := range c.NotifyOn {
		if v == verdict {
			return true
		}
	}
	return false
}
