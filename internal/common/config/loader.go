package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from configs/config.yaml (plus an optional
// per-environment overlay) with environment variable overrides.
func Load() (*Config, error) {
	// Best effort: environment variables win regardless.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName("config." + env)
	_ = v.MergeInConfig() // overlay is optional

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "match-service"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = 10 * time.Second
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}
	if cfg.Auth.Algorithm == "" {
		cfg.Auth.Algorithm = "HS256"
	}
	if cfg.RateLimit.Window <= 0 {
		cfg.RateLimit.Window = time.Hour
	}
	if cfg.RateLimit.LocalLimit <= 0 {
		cfg.RateLimit.LocalLimit = 60
	}
	if cfg.RateLimit.SharedLimit <= 0 {
		cfg.RateLimit.SharedLimit = 100
	}
	if cfg.RateLimit.FallbackPolicy == "" {
		cfg.RateLimit.FallbackPolicy = "fallback_local"
	}
	if cfg.Matching.DefaultLimit <= 0 {
		cfg.Matching.DefaultLimit = 20
	}
	if cfg.Matching.MaxLimit <= 0 {
		cfg.Matching.MaxLimit = 100
	}
	if cfg.Matching.ProfileStore == "" {
		cfg.Matching.ProfileStore = "memory"
	}
	if cfg.Database.Redis.Address == "" {
		cfg.Database.Redis.Address = "localhost:6379"
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Postgres.MaxConnections <= 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle <= 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validate(cfg *Config) error {
	switch cfg.Auth.Algorithm {
	case "HS256", "RS256":
	default:
		return fmt.Errorf("unsupported auth algorithm %q", cfg.Auth.Algorithm)
	}

	switch cfg.RateLimit.FallbackPolicy {
	case "fallback_local", "fail_open", "fail_closed":
	default:
		return fmt.Errorf("unsupported rate limit fallback policy %q", cfg.RateLimit.FallbackPolicy)
	}

	switch cfg.Matching.ProfileStore {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unsupported profile store %q", cfg.Matching.ProfileStore)
	}

	if cfg.Matching.DefaultLimit > cfg.Matching.MaxLimit {
		return fmt.Errorf("matching default_limit %d exceeds max_limit %d",
			cfg.Matching.DefaultLimit, cfg.Matching.MaxLimit)
	}

	return nil
}
