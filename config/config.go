// Package config reads server settings from the environment, after loading an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"sofia-api/storage"
)

// Auth modes.
const (
	AuthNone  = "none"
	AuthHS256 = "hs256"
	AuthJWKS  = "jwks"
)

type Config struct {
	ListenAddr string

	// Logging
	Debug     bool
	LogLevel  string
	LogFormat string

	// Persistence
	Storage  storage.Options
	RedisURL string
	CacheTTL time.Duration

	// Auth
	AuthMode  string
	JWTSecret string
	JWKSURL   string
	Audience  string
	Issuer    string

	RateLimitRPS float64
	CORSOrigins  []string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr: listenAddr(),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFormat:  getEnv("LOG_FORMAT", "text"),
		Storage: storage.Options{
			Backend:          os.Getenv("STORAGE_BACKEND"),
			DatabaseURL:      os.Getenv("DATABASE_URL"),
			ConnectionString: os.Getenv("STORAGE_CONNECTION_STRING"),
			Table:            getEnv("DAYS_TABLE", storage.DefaultTable),
			SQLitePath:       os.Getenv("SQLITE_PATH"),
		},
		RedisURL:    os.Getenv("REDIS_CONNECTION_STRING"),
		AuthMode:    strings.ToLower(getEnv("AUTH_MODE", AuthNone)),
		JWTSecret:   os.Getenv("AUTH_JWT_SECRET"),
		JWKSURL:     os.Getenv("AUTH_JWKS_URL"),
		Audience:    os.Getenv("AUTH_AUDIENCE"),
		Issuer:      os.Getenv("AUTH_ISSUER"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
	}

	var err error
	if cfg.Debug, err = getEnvAsBool("DEBUG", false); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getEnvAsDuration("CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = getEnvAsFloat("RATE_LIMIT_RPS", 20); err != nil {
		return nil, err
	}
	cfg.Storage.Backend = defaultBackend(cfg.Storage)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures the selected backend and auth mode have what they need.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case storage.BackendNone, storage.BackendMemory:
	case storage.BackendPostgres:
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	case storage.BackendTables:
		if c.Storage.ConnectionString == "" {
			return fmt.Errorf("STORAGE_CONNECTION_STRING is required for the tables backend")
		}
	case storage.BackendSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND %q", c.Storage.Backend)
	}

	switch c.AuthMode {
	case AuthNone:
	case AuthHS256:
		if c.JWTSecret == "" {
			return fmt.Errorf("AUTH_JWT_SECRET is required for hs256 auth")
		}
	case AuthJWKS:
		if c.JWKSURL == "" {
			return fmt.Errorf("AUTH_JWKS_URL is required for jwks auth")
		}
	default:
		return fmt.Errorf("invalid AUTH_MODE %q", c.AuthMode)
	}

	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL must not be negative")
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative")
	}
	return nil
}

// ConfigureLogger applies the level and format settings to l.
func (c *Config) ConfigureLogger(l *log.Logger) error {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	if c.Debug {
		level = log.DebugLevel
	}
	l.SetLevel(level)
	switch strings.ToLower(c.LogFormat) {
	case "json":
		l.SetFormatter(&log.JSONFormatter{})
	case "", "text":
		l.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q", c.LogFormat)
	}
	return nil
}

// defaultBackend picks a backend from whichever connection setting is present
// when STORAGE_BACKEND is unset.
func defaultBackend(opts storage.Options) string {
	if opts.Backend != "" {
		return strings.ToLower(opts.Backend)
	}
	switch {
	case opts.DatabaseURL != "":
		return storage.BackendPostgres
	case opts.ConnectionString != "":
		return storage.BackendTables
	case opts.SQLitePath != "":
		return storage.BackendSQLite
	}
	return storage.BackendNone
}

func listenAddr() string {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		return v
	}
	if v, ok := os.LookupEnv("FUNCTIONS_CUSTOMHANDLER_PORT"); ok {
		return ":" + v
	}
	return ":8080"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
