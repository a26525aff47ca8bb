package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Server captures process level configuration.
type Server struct {
	Addr            string
	LogFormat       string
	LogLevel        string
	Storage         string
	Database        DatabaseConfig
	Redis           RedisConfig
	Location        *time.Location
	WinnerPolicy    string
	AdminToken      string
	RateLimit       RateLimitConfig
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig configures the Postgres connection pool.
type DatabaseConfig struct {
	URL          string
	Driver       string
	MaxOpenConns int
	MaxIdleConns int
	TxTimeout    time.Duration
}

// RedisConfig configures the results cache. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	ResultsTTL   time.Duration
}

// RateLimitConfig bounds mutation requests per client IP.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// LoadDotEnv loads a .env file from the working directory when one exists.
// Variables already present in the environment win.
func LoadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	return godotenv.Load()
}

// FromEnv builds a Server config from environment variables so main stays lean.
// Every malformed variable is reported in a single error.
func FromEnv() (Server, error) {
	p := &parser{}

	cfg := Server{
		Addr:      p.str("NHC_ADDR", ":8080"),
		LogFormat: p.oneOf("NHC_LOG_FORMAT", "json", "json", "text"),
		LogLevel:  p.oneOf("NHC_LOG_LEVEL", "info", "debug", "info", "warn", "error"),
		Storage:   p.oneOf("NHC_STORAGE", StorageMemory, StorageMemory, StoragePostgres),
		Database: DatabaseConfig{
			URL:          p.str("DATABASE_URL", ""),
			Driver:       p.oneOf("NHC_DB_DRIVER", "postgres", "postgres", "pgx"),
			MaxOpenConns: p.integer("NHC_DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: p.integer("NHC_DB_MAX_IDLE_CONNS", 5),
			TxTimeout:    p.duration("NHC_TX_TIMEOUT", 5*time.Second),
		},
		Redis: RedisConfig{
			URL:          p.str("REDIS_URL", ""),
			PoolSize:     p.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: p.integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  p.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  p.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: p.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			ResultsTTL:   p.duration("NHC_RESULTS_CACHE_TTL", 10*time.Minute),
		},
		Location:     p.location("NHC_TIMEZONE", "UTC"),
		WinnerPolicy: p.oneOf("NHC_WINNER_POLICY", "all-eligible", "all-eligible", "top-vote"),
		AdminToken:   p.str("NHC_ADMIN_TOKEN", ""),
		RateLimit: RateLimitConfig{
			RPS:   p.float("NHC_RATE_LIMIT_RPS", 5),
			Burst: p.integer("NHC_RATE_LIMIT_BURST", 10),
		},
		RequestTimeout:  p.duration("NHC_REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: p.duration("NHC_SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if cfg.Storage == StoragePostgres && cfg.Database.URL == "" {
		p.fail("DATABASE_URL", "required when NHC_STORAGE=postgres")
	}

	if len(p.problems) > 0 {
		return Server{}, errors.New("invalid configuration: " + strings.Join(p.problems, "; "))
	}
	return cfg, nil
}

type parser struct {
	problems []string
}

func (p *parser) fail(key, msg string) {
	p.problems = append(p.problems, fmt.Sprintf("%s %s", key, msg))
}

func (p *parser) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *parser) oneOf(key, def string, allowed ...string) string {
	v := strings.ToLower(p.str(key, def))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	p.fail(key, fmt.Sprintf("must be one of %s", strings.Join(allowed, ", ")))
	return def
}

func (p *parser) integer(key string, def int) int {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		p.fail(key, "must be a non-negative integer")
		return def
	}
	return v
}

func (p *parser) float(key string, def float64) float64 {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		p.fail(key, "must be a non-negative number")
		return def
	}
	return v
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		p.fail(key, "must be a positive duration")
		return def
	}
	return v
}

func (p *parser) location(key, def string) *time.Location {
	loc, err := time.LoadLocation(p.str(key, def))
	if err != nil {
		p.fail(key, "must be an IANA time zone")
		return time.UTC
	}
	return loc
}
