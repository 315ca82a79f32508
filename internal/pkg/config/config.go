package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth     AuthConfig
	Database DatabaseConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Activity ActivityConfig

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`
}

type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET, required"`
	// TokenTTL of zero issues tokens without an expiry.
	TokenTTL       time.Duration `env:"TOKEN_TTL,             default=24h"`
	ActivationCode string        `env:"ADMIN_ACTIVATION_CODE, required"`
	// RateLimit is requests per minute per client IP on /auth; zero disables it.
	RateLimit int `env:"AUTH_RATE_LIMIT, default=20"`
}

type DatabaseConfig struct {
	Path string `env:"DATABASE_PATH, default=taskhub.db"`
}

// MongoConfig enables the task activity log when URI is set.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=taskhub"`
}

// RedisConfig enables session revocation when Addr is set.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

type ActivityConfig struct {
	Workers int `env:"ACTIVITY_WORKERS, default=4"`
}

// IsDevelopment reports whether the service runs with developer defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through l, which lets tests supply a map.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if len(c.Auth.JWTSecret) < 16 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 16 characters"))
	}
	if c.Auth.TokenTTL < 0 {
		errs = append(errs, errors.New("TOKEN_TTL must not be negative"))
	}
	if c.Auth.RateLimit < 0 {
		errs = append(errs, errors.New("AUTH_RATE_LIMIT must not be negative"))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("DATABASE_PATH must not be empty"))
	}
	return errors.Join(errs...)
}

// Ops is the part of the configuration the operator commands (migrate, user
// create) need. It has no required secrets.
type Ops struct {
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	Database DatabaseConfig
}

func LoadOps(ctx context.Context) (*Ops, error) {
	return LoadOpsFrom(ctx, envconfig.OsLookuper())
}

func LoadOpsFrom(ctx context.Context, l envconfig.Lookuper) (*Ops, error) {
	var ops Ops
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &ops, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if ops.Database.Path == "" {
		return nil, errors.New("config: DATABASE_PATH must not be empty")
	}
	return &ops, nil
}
