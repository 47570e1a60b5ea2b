// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, overlays config.<APP_ENVIRONMENT>.yaml and
// applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")
	bindEnv(v)

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // overlay is optional

	return build(v)
}

// LoadFromFile reads a single config file.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return build(v)
}

func bindEnv(v *viper.Viper) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

func build(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env", "../../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

func overrideEmptyConfig(cfg *Config) {
	setIfEmpty(&cfg.Database.Postgres.User, "DB_USER")
	setIfEmpty(&cfg.Database.Postgres.Password, "DB_PASSWORD")
	setIfEmpty(&cfg.Persistence.APIKey, "PERSISTENCE_API_KEY")
	setIfEmpty(&cfg.Persistence.BaseURL, "PERSISTENCE_BASE_URL")
	setIfEmpty(&cfg.Notifications.FromEmail, "NOTIFICATIONS_FROM_EMAIL")
}

func setIfEmpty(dst *string, envKey string) {
	if *dst != "" {
		return
	}
	if val := os.Getenv(envKey); val != "" {
		*dst = val
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "candidate-evaluation-workers"
	}
	if cfg.App.HTTPPort == 0 {
		cfg.App.HTTPPort = 8080
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.Persistence.SavePath == "" {
		cfg.Persistence.SavePath = "/save"
	}
	if cfg.Persistence.ShortlistPath == "" {
		cfg.Persistence.ShortlistPath = "/shortlist"
	}
	if cfg.Persistence.Timeout == 0 {
		cfg.Persistence.Timeout = 15000
	}

	if cfg.Scoring.PipelineTolerancePct == 0 {
		cfg.Scoring.PipelineTolerancePct = 10
	}
	if cfg.Scoring.SessionTTLMinutes == 0 {
		cfg.Scoring.SessionTTLMinutes = 120
	}

	if cfg.Notifications.Region == "" {
		cfg.Notifications.Region = "eu-central-1"
	}
	if len(cfg.Notifications.NotifyOn) == 0 {
		cfg.Notifications.NotifyOn = []string{"Strong Candidate", "green"}
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}

	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}

	if cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required")
	}

	if cfg.Persistence.BaseURL == "" {
		return fmt.Errorf("persistence.base_url is required")
	}

	if cfg.Scoring.PipelineTolerancePct < 0 {
		return fmt.Errorf("scoring.pipeline_tolerance_pct must not be negative")
	}

	if cfg.Notifications.Enabled && cfg.Notifications.FromEmail == "" {
		return fmt.Errorf("notifications.from_email is required when notifications are enabled")
	}

	return nil
}

func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
