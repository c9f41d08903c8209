// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

const (
	DefaultPort       = 3318
	DefaultPageSize   = 10
	DefaultSessionTTL = 14 * 24 * time.Hour
)

// MaxPageSize caps the page_size query parameter on the review listing
const MaxPageSize = 100

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	SecretKey    string
	PageSize     int
	SessionTTL   time.Duration
	CookieSecure bool
	LogLevel     string
}

// LoadEnvFile loads KEY=value pairs from the given files into the process
// environment. Missing files are skipped, variables already set win.
func LoadEnvFile(paths ...string) error {
	for _, p := range paths {
		err := godotenv.Load(p)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return fmt.Errorf("failed to load %s: %w", p, err)
	}
	return nil
}

// ParseFlags reads flags, falling back to environment variables and defaults
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var sessionTTL string
	var cookieSecure string

	fs := flag.NewFlagSet("goodreads", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SecretKey, "secret", "", "Session signing key (prefer env)")

	fs.IntVar(&cfg.PageSize, "page-size", 0, "Default number of reviews per page")
	fs.StringVar(&sessionTTL, "session-ttl", "", "Session lifetime, e.g. 336h")
	fs.StringVar(&cookieSecure, "cookie-secure", "", "Mark the session cookie Secure (true/false)")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = DatabaseSQLite
		}
	}
	if cfg.DatabaseType != DatabaseSQLite && cfg.DatabaseType != DatabasePostgres {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.SecretKey == "" {
		cfg.SecretKey = os.Getenv("SECRET_KEY")
	}
	if cfg.SecretKey == "" {
		return Config{}, errors.New("SECRET_KEY required")
	}

	if cfg.PageSize == 0 {
		if s := os.Getenv("PAGE_SIZE"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return Config{}, errors.New("invalid PAGE_SIZE env variable")
			}
			cfg.PageSize = n
		} else {
			cfg.PageSize = DefaultPageSize
		}
	}
	if cfg.PageSize < 1 || cfg.PageSize > MaxPageSize {
		return Config{}, fmt.Errorf("page size must be between 1 and %d", MaxPageSize)
	}

	if sessionTTL == "" {
		sessionTTL = os.Getenv("SESSION_TTL")
	}
	cfg.SessionTTL = DefaultSessionTTL
	if sessionTTL != "" {
		d, err := time.ParseDuration(sessionTTL)
		if err != nil || d <= 0 {
			return Config{}, errors.New("invalid session TTL")
		}
		cfg.SessionTTL = d
	}

	if cookieSecure == "" {
		cookieSecure = os.Getenv("COOKIE_SECURE")
	}
	if cookieSecure != "" {
		b, err := strconv.ParseBool(cookieSecure)
		if err != nil {
			return Config{}, errors.New("invalid cookie secure flag")
		}
		cfg.CookieSecure = b
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = os.Getenv("LOG_LEVEL")
		if cfg.LogLevel == "" {
			cfg.LogLevel = "info"
		}
	}

	return cfg, nil
}
