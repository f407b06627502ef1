// Package config handles loading and parsing application configuration.
// It supports two sources (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// Every field can additionally be overridden by the environment variable
// named in its env:"..." tag, which is how containers usually inject
// secrets such as the PostgreSQL DSN or the Redis password.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Supported storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the root configuration structure.
//
// env-required:"true" means the app refuses to start if that value is
// missing.
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-required:"true"`

	Storage    Storage    `yaml:"storage"`
	HTTPServer HTTPServer `yaml:"http_server"`
	RateLimit  RateLimit  `yaml:"rate_limit"`
	Cache      Cache      `yaml:"cache"`
}

// Storage selects and tunes the database backend.
type Storage struct {
	// Driver is "sqlite" (default) or "postgres".
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite"`

	// Path is the SQLite .db file. Only used by the sqlite driver.
	Path string `yaml:"path" env:"STORAGE_PATH"`

	// DSN is the PostgreSQL connection string. Only used by the postgres driver.
	DSN string `yaml:"dsn" env:"STORAGE_DSN"`

	MaxOpenConns int `yaml:"max_open_conns" env:"STORAGE_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns int `yaml:"max_idle_conns" env:"STORAGE_MAX_IDLE_CONNS" env-default:"5"`
}

// HTTPServer holds settings specific to the HTTP server.
// Nested under http_server: in the YAML file.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-required:"true"`

	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"HTTP_SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"HTTP_SERVER_WRITE_TIMEOUT"    env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"HTTP_SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SERVER_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// RateLimit configures the per-client token bucket in front of the API.
type RateLimit struct {
	Enabled bool    `yaml:"enabled" env:"RATE_LIMIT_ENABLED" env-default:"false"`
	RPS     float64 `yaml:"rps"     env:"RATE_LIMIT_RPS"     env-default:"10"`
	Burst   int     `yaml:"burst"   env:"RATE_LIMIT_BURST"   env-default:"20"`

	// KeyHeader, when set, identifies the client by that header before
	// falling back to the remote IP. It must name a header that a trusted
	// proxy or auth layer sets: a client-chosen value gets a fresh bucket
	// per request and is never limited. Empty keys on the remote IP.
	KeyHeader          string        `yaml:"key_header"            env:"RATE_LIMIT_KEY_HEADER"`
	TrustXForwardedFor bool          `yaml:"trust_x_forwarded_for" env:"RATE_LIMIT_TRUST_XFF" env-default:"false"`
	RetryAfter         time.Duration `yaml:"retry_after"           env:"RATE_LIMIT_RETRY_AFTER" env-default:"1s"`
	IdleTTL            time.Duration `yaml:"idle_ttl"              env:"RATE_LIMIT_IDLE_TTL"    env-default:"15m"`
}

// Cache configures the Redis read-through cache for single-record lookups.
type Cache struct {
	Enabled  bool          `yaml:"enabled"  env:"CACHE_ENABLED"  env-default:"false"`
	Addr     string        `yaml:"address"  env:"CACHE_ADDR"     env-default:"localhost:6379"`
	Password string        `yaml:"password" env:"CACHE_PASSWORD"`
	DB       int           `yaml:"db"       env:"CACHE_DB"       env-default:"0"`
	TTL      time.Duration `yaml:"ttl"      env:"CACHE_TTL"      env-default:"5m"`
	Prefix   string        `yaml:"prefix"   env:"CACHE_PREFIX"   env-default:"registration"`
}

// Load reads and validates the config at path.
func Load(path string) (*Config, error) {
	// Verify the file exists before trying to read it, so the message is
	// clear rather than a cryptic "open: no such file" later.
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	// cleanenv.ReadConfig reads the YAML file and populates the struct.
	// It also reads any env:"..." tagged fields from the environment,
	// applies env-default values and enforces env-required:"true".
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate checks the rules cleanenv tags cannot express.
func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.Path == "" {
			return errors.New("config: storage.path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return errors.New("config: storage.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}

	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return errors.New("config: rate_limit.rps and rate_limit.burst must be positive")
	}

	return nil
}

// MustLoad reads, validates, and returns the application config.
//
// Functions prefixed with "Must" are allowed to fatal on failure. Callers
// do not need to check a returned error: if this returns, the config is valid.
func MustLoad() *Config {
	// Source 1: environment variable (Docker / Kubernetes).
	configPath := os.Getenv("CONFIG_PATH")

	// Source 2: command-line flag (local runs).
	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	if configPath == "" {
		log.Fatal("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err.Error())
	}

	return cfg
}
