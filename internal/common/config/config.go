// Package config defines the service configuration surface.
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Matching  MatchingConfig  `mapstructure:"matching"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// AuthConfig selects the token verification algorithm and its key material.
// The algorithm is trusted configuration checked against each token, never
// read from the token itself.
type AuthConfig struct {
	Algorithm     string `mapstructure:"algorithm"`       // HS256 or RS256
	HSSecret      string `mapstructure:"hs_secret"`       // shared secret for HS256
	RSAPublicKey  string `mapstructure:"rsa_public_key"`  // inline PEM for RS256
	RSAPublicPath string `mapstructure:"rsa_public_path"` // or a PEM file path
}

// RateLimitConfig drives both admission backends. Limits are per identity
// per window.
type RateLimitConfig struct {
	Window         time.Duration `mapstructure:"window"`
	LocalLimit     int           `mapstructure:"local_limit"`
	SharedLimit    int           `mapstructure:"shared_limit"`
	FallbackPolicy string        `mapstructure:"fallback_policy"` // fallback_local, fail_open, fail_closed
	UseShared      bool          `mapstructure:"use_shared"`
}

type MatchingConfig struct {
	DefaultLimit int    `mapstructure:"default_limit"`
	MaxLimit     int    `mapstructure:"max_limit"`
	ProfileStore string `mapstructure:"profile_store"` // postgres or memory
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

// GetDSN returns the PostgreSQL connection string.
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

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
