package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/felixgeelhaar/traa/pkg/traa"
	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string

	// Native library
	LibraryName     string
	LibraryPaths    []string
	LibraryChecksum string

	// Native logging
	NativeLog traa.LogConfig

	// Isolation
	Isolated     bool
	HostBinary   string
	StartTimeout time.Duration

	// Execution
	CallTimeout      time.Duration
	BreakerFailures  int
	BreakerOpenDelay time.Duration

	// MCP
	MCPAddr      string
	MCPAuthToken string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	nativeLevel, err := traa.ParseLogLevel(getEnv("TRAA_NATIVE_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("TRAA_NATIVE_LOG_LEVEL: %w", err)
	}

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", ""),

		LibraryName:     getEnv("TRAA_LIBRARY_NAME", traa.LibraryName),
		LibraryPaths:    getPathListEnv("TRAA_LIBRARY_PATH"),
		LibraryChecksum: getEnv("TRAA_LIBRARY_CHECKSUM", ""),

		NativeLog: traa.LogConfig{
			File:     getEnv("TRAA_NATIVE_LOG_FILE", ""),
			MaxSize:  getIntEnv("TRAA_NATIVE_LOG_MAX_SIZE", traa.DefaultLogMaxSize),
			MaxFiles: getIntEnv("TRAA_NATIVE_LOG_MAX_FILES", traa.DefaultLogMaxFiles),
			Level:    nativeLevel,
		},

		Isolated:     getBoolEnv("TRAA_ISOLATED", false),
		HostBinary:   getEnv("TRAA_HOST_BINARY", "traa-host"),
		StartTimeout: getDurationEnv("TRAA_HOST_START_TIMEOUT", time.Minute),

		CallTimeout:      getDurationEnv("TRAA_CALL_TIMEOUT", 10*time.Second),
		BreakerFailures:  getIntEnv("TRAA_BREAKER_FAILURES", 5),
		BreakerOpenDelay: getDurationEnv("TRAA_BREAKER_OPEN_DELAY", 30*time.Second),

		MCPAddr:      getEnv("MCP_ADDR", "127.0.0.1:8082"),
		MCPAuthToken: getEnv("MCP_AUTH_TOKEN", ""),
	}

	if err := cfg.NativeLog.Validate(); err != nil {
		return nil, fmt.Errorf("native log config: %w", err)
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// LoaderOptions returns the native loader options for this configuration.
// Without configured library paths the loader keeps its default search paths.
func (c *Config) LoaderOptions(logger *slog.Logger) []traa.Option {
	opts := []traa.Option{traa.WithLibraryName(c.LibraryName)}
	if len(c.LibraryPaths) > 0 {
		opts = append(opts, traa.WithSearchPaths(c.LibraryPaths...))
	}
	if c.LibraryChecksum != "" {
		opts = append(opts, traa.WithChecksum(c.LibraryChecksum))
	}
	if logger != nil {
		opts = append(opts, traa.WithLogger(logger))
	}
	return opts
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getPathListEnv splits a list on the OS path list separator, dropping empty entries.
func getPathListEnv(key string) []string {
	var paths []string
	for _, p := range filepath.SplitList(os.Getenv(key)) {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}
