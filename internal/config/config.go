package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var (
	once    sync.Once
	loadErr error
)

// Load reads the .env file in the working directory once and exports its
// variables. Variables already set in the environment win. A missing file
// is not an error.
func Load() error {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			loadErr = fmt.Errorf(".env file failed to load: %w", err)
		}
	})
	return loadErr
}

// GetConfigWithDefault retrieves a config value or returns a default.
func GetConfigWithDefault(key, defaultValue string) string {
	Load()
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	return val
}

type Config struct {
	Env      string
	Port     string
	LogLevel string

	// OTelExporter selects where spans and metrics go: "none" or "stdout".
	OTelExporter string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
	DBPath     string

	ShutdownTimeout time.Duration
}

// FromEnv builds the configuration from the environment, loading .env
// first.
func FromEnv() (Config, error) {
	if err := Load(); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Env:          GetConfigWithDefault("APP_ENV", "production"),
		Port:         GetConfigWithDefault("PORT", "3000"),
		LogLevel:     GetConfigWithDefault("LOG_LEVEL", "info"),
		OTelExporter: GetConfigWithDefault("OTEL_EXPORTER", "none"),
		DBDriver:     GetConfigWithDefault("DB_DRIVER", "pgx"),
		DBHost:       GetConfigWithDefault("DB_HOST", "localhost"),
		DBPort:       GetConfigWithDefault("DB_PORT", "5432"),
		DBName:       GetConfigWithDefault("DB_NAME", "user-data"),
		DBUser:       GetConfigWithDefault("DB_USER", "postgres"),
		DBPassword:   GetConfigWithDefault("DB_PASSWORD", "123456"),
		DBSSLMode:    GetConfigWithDefault("DB_SSLMODE", "disable"),
		DBPath:       GetConfigWithDefault("DB_PATH", "users.db"),
	}

	if _, err := strconv.ParseUint(cfg.Port, 10, 16); err != nil {
		return Config{}, fmt.Errorf("invalid PORT %q", cfg.Port)
	}

	timeout, err := time.ParseDuration(GetConfigWithDefault("SHUTDOWN_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}
	cfg.ShutdownTimeout = timeout

	return cfg, nil
}

func (c Config) Development() bool {
	return c.Env == "development"
}

func (c Config) Addr() string {
	return ":" + c.Port
}

// DSN is the PostgreSQL connection URL for the pgx driver.
func (c Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.DBSSLMode}}.Encode(),
	}
	return u.String()
}

// DataSource is what the configured driver connects to: the SQLite file
// path or the PostgreSQL URL.
func (c Config) DataSource() string {
	switch c.DBDriver {
	case "sqlite", "sqlite3":
		return c.DBPath
	default:
		return c.DSN()
	}
}
