// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Persistence   PersistenceConfig       `mapstructure:"persistence"`
	Scoring       ScoringConfig           `mapstructure:"scoring"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	Logging       LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	HTTPPort    int    `mapstructure:"http_port"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// PersistenceConfig points at the spreadsheet-backed save endpoint.
type PersistenceConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	SavePath      string `mapstructure:"save_path"`
	ShortlistPath string `mapstructure:"shortlist_path"`
	APIKey        string `mapstructure:"api_key"`
	Timeout       int    `mapstructure:"timeout"` // milliseconds
}

type ScoringConfig struct {
	PipelineTolerancePct float64 `mapstructure:"pipeline_tolerance_pct"`
	SessionTTLMinutes    int     `mapstructure:"session_ttl_minutes"`
}

// SessionTTL is how long an idle evaluation session is kept in Redis.
func (s ScoringConfig) SessionTTL() time.Duration {
	return time.Duration(s.SessionTTLMinutes) * time.Minute
}

// NotificationConfig holds settings for the notify-recruiter worker.
type NotificationConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	Region     string   `mapstructure:"region"`
	FromEmail  string   `mapstructure:"from_email"`
	Recruiters []string `mapstructure:"recruiters"`
	// Verdicts that trigger a notification.
	NotifyOn []string `mapstructure:"notify_on"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
