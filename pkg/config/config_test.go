package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/traa/pkg/traa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnvVars clears all traa-related environment variables.
func clearEnvVars(t *testing.T) {
	t.Helper()
	envVars := []string{
		"APP_ENV", "LOG_LEVEL", "LOG_FORMAT",
		"TRAA_LIBRARY_NAME", "TRAA_LIBRARY_PATH", "TRAA_LIBRARY_CHECKSUM",
		"TRAA_NATIVE_LOG_FILE", "TRAA_NATIVE_LOG_LEVEL",
		"TRAA_NATIVE_LOG_MAX_SIZE", "TRAA_NATIVE_LOG_MAX_FILES",
		"TRAA_ISOLATED", "TRAA_HOST_BINARY", "TRAA_HOST_START_TIMEOUT",
		"TRAA_CALL_TIMEOUT", "TRAA_BREAKER_FAILURES", "TRAA_BREAKER_OPEN_DELAY",
		"MCP_ADDR", "MCP_AUTH_TOKEN",
	}
	for _, v := range envVars {
		t.Setenv(v, "")
		os.Unsetenv(v)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnvVars(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "", cfg.LogFormat)

	assert.Equal(t, "traa", cfg.LibraryName)
	assert.Empty(t, cfg.LibraryPaths)
	assert.Equal(t, "", cfg.LibraryChecksum)

	assert.Equal(t, traa.DefaultLogConfig(), cfg.NativeLog)

	assert.False(t, cfg.Isolated)
	assert.Equal(t, "traa-host", cfg.HostBinary)
	assert.Equal(t, time.Minute, cfg.StartTimeout)

	assert.Equal(t, 10*time.Second, cfg.CallTimeout)
	assert.Equal(t, 5, cfg.BreakerFailures)
	assert.Equal(t, 30*time.Second, cfg.BreakerOpenDelay)

	assert.Equal(t, "127.0.0.1:8082", cfg.MCPAddr)
	assert.Equal(t, "", cfg.MCPAuthToken)

	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnvVars(t)

	libDirs := strings.Join([]string{"/opt/traa/lib", "", "/usr/local/lib"}, string(filepath.ListSeparator))
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("TRAA_LIBRARY_NAME", "traa_debug")
	t.Setenv("TRAA_LIBRARY_PATH", libDirs)
	t.Setenv("TRAA_LIBRARY_CHECKSUM", "sha256:abc")
	t.Setenv("TRAA_NATIVE_LOG_FILE", "/var/log/traa.log")
	t.Setenv("TRAA_NATIVE_LOG_LEVEL", "warning")
	t.Setenv("TRAA_NATIVE_LOG_MAX_SIZE", "4096")
	t.Setenv("TRAA_NATIVE_LOG_MAX_FILES", "7")
	t.Setenv("TRAA_ISOLATED", "true")
	t.Setenv("TRAA_HOST_BINARY", "/opt/traa/bin/traa-host")
	t.Setenv("TRAA_CALL_TIMEOUT", "250ms")
	t.Setenv("TRAA_BREAKER_FAILURES", "2")
	t.Setenv("MCP_ADDR", "127.0.0.1:9000")
	t.Setenv("MCP_AUTH_TOKEN", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "traa_debug", cfg.LibraryName)
	assert.Equal(t, []string{"/opt/traa/lib", "/usr/local/lib"}, cfg.LibraryPaths)
	assert.Equal(t, "sha256:abc", cfg.LibraryChecksum)
	assert.Equal(t, traa.LogConfig{
		File:     "/var/log/traa.log",
		MaxSize:  4096,
		MaxFiles: 7,
		Level:    traa.LogLevelWarn,
	}, cfg.NativeLog)
	assert.True(t, cfg.Isolated)
	assert.Equal(t, "/opt/traa/bin/traa-host", cfg.HostBinary)
	assert.Equal(t, 250*time.Millisecond, cfg.CallTimeout)
	assert.Equal(t, 2, cfg.BreakerFailures)
	assert.Equal(t, "127.0.0.1:9000", cfg.MCPAddr)
	assert.Equal(t, "secret", cfg.MCPAuthToken)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Run("unparsable values fall back to defaults", func(t *testing.T) {
		clearEnvVars(t)
		t.Setenv("TRAA_CALL_TIMEOUT", "soon")
		t.Setenv("TRAA_BREAKER_FAILURES", "many")
		t.Setenv("TRAA_ISOLATED", "maybe")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 10*time.Second, cfg.CallTimeout)
		assert.Equal(t, 5, cfg.BreakerFailures)
		assert.False(t, cfg.Isolated)
	})

	t.Run("unknown native log level", func(t *testing.T) {
		clearEnvVars(t)
		t.Setenv("TRAA_NATIVE_LOG_LEVEL", "chatty")

		_, err := Load()
		assert.ErrorIs(t, err, traa.ErrInvalidArgument)
		assert.ErrorContains(t, err, "TRAA_NATIVE_LOG_LEVEL")
	})

	t.Run("log file with non-positive rotation", func(t *testing.T) {
		clearEnvVars(t)
		t.Setenv("TRAA_NATIVE_LOG_FILE", "traa.log")
		t.Setenv("TRAA_NATIVE_LOG_MAX_FILES", "0")

		_, err := Load()
		assert.ErrorIs(t, err, traa.ErrInvalidArgument)
	})

	t.Run("log size beyond 32 bits", func(t *testing.T) {
		if strconv.IntSize == 32 {
			t.Skip("value does not parse on this platform")
		}
		clearEnvVars(t)
		t.Setenv("TRAA_NATIVE_LOG_FILE", "traa.log")
		t.Setenv("TRAA_NATIVE_LOG_MAX_SIZE", "4294967296")

		_, err := Load()
		assert.ErrorIs(t, err, traa.ErrInvalidArgument)
	})
}

func TestConfig_LoaderOptions(t *testing.T) {
	t.Run("configured library paths replace the defaults", func(t *testing.T) {
		cfg := &Config{LibraryName: "traa", LibraryPaths: []string{"/opt/traa/lib", "/usr/local/lib"}}

		loader := traa.NewLoader(cfg.LoaderOptions(nil)...)

		assert.Equal(t, []string{"/opt/traa/lib", "/usr/local/lib"}, loader.SearchPaths())
	})

	t.Run("without library paths the defaults stay", func(t *testing.T) {
		clearEnvVars(t)
		cfg := &Config{LibraryName: "traa"}

		loader := traa.NewLoader(cfg.LoaderOptions(nil)...)

		assert.Equal(t, traa.NewLoader().SearchPaths(), loader.SearchPaths())
	})
}
