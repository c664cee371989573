package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/testutil"
	"github.com/felixgeelhaar/traa/adapter/cli"
	"github.com/felixgeelhaar/traa/internal/runtime/runtimetest"
	"github.com/felixgeelhaar/traa/pkg/config"
	"github.com/felixgeelhaar/traa/pkg/traa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDeps(t *testing.T) (ToolDependencies, *runtimetest.Backend) {
	t.Helper()
	backend := runtimetest.NewBackend("Hello from C++")
	cfg := &config.Config{LibraryName: "traa", CallTimeout: time.Second, BreakerFailures: 5}
	return ToolDependencies{App: cli.NewAppWithBackend(cfg, backend, nil)}, backend
}

func TestRegisterTools_ListTools(t *testing.T) {
	srv := mcp.NewServer(mcp.ServerInfo{
		Name:    "test",
		Version: "1.0.0",
		Capabilities: mcp.Capabilities{
			Tools: true,
		},
	})

	deps, _ := newDeps(t)
	require.NoError(t, RegisterTools(srv, deps))

	tc := testutil.NewTestClient(t, srv)
	defer tc.Close()

	tools, err := tc.ListTools()
	require.NoError(t, err)

	names := map[any]bool{}
	for _, tool := range tools {
		names[tool["name"]] = true
	}
	for _, name := range []string{
		"traa.version", "traa.probe", "traa.string_from_jni",
		"traa.set_log_level", "traa.set_log", "traa.metrics",
	} {
		assert.True(t, names[name], "%s should be registered", name)
	}
}

func TestRegisterTools_RequiresDependencies(t *testing.T) {
	srv := mcp.NewServer(mcp.ServerInfo{Name: "test", Version: "1.0.0"})

	assert.EqualError(t, RegisterTools(nil, ToolDependencies{}), "server is required")
	assert.EqualError(t, RegisterTools(srv, ToolDependencies{}), "app is required")
}

func TestTools(t *testing.T) {
	ctx := context.Background()

	t.Run("probe", func(t *testing.T) {
		deps, _ := newDeps(t)

		result := deps.probe(ctx)
		assert.True(t, result.Loaded)
		assert.Equal(t, "Hello from C++", result.Message)
		assert.Equal(t, cli.ModeInProcess, result.Mode)
	})

	t.Run("string from jni", func(t *testing.T) {
		deps, backend := newDeps(t)

		out, err := deps.stringFromJNI(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Hello from C++", out["message"])
		assert.Equal(t, 1, backend.CallCount())
	})

	t.Run("set log level", func(t *testing.T) {
		deps, backend := newDeps(t)

		out, err := deps.setLogLevel(ctx, setLogLevelInput{Level: "warning"})
		require.NoError(t, err)
		assert.Equal(t, "warn", out["level"])
		assert.Equal(t, traa.LogLevelWarn, backend.Level)
	})

	t.Run("set log level requires a level", func(t *testing.T) {
		deps, _ := newDeps(t)

		_, err := deps.setLogLevel(ctx, setLogLevelInput{Level: " "})
		assert.EqualError(t, err, "level is required")

		_, err = deps.setLogLevel(ctx, setLogLevelInput{Level: "loud"})
		assert.ErrorIs(t, err, traa.ErrInvalidArgument)
	})

	t.Run("set log applies defaults", func(t *testing.T) {
		deps, backend := newDeps(t)

		out, err := deps.setLog(ctx, setLogInput{File: "/tmp/traa.log", Level: "debug"})
		require.NoError(t, err)
		assert.Equal(t, "/tmp/traa.log", out["file"])
		assert.Equal(t, traa.LogConfig{
			File:     "/tmp/traa.log",
			MaxSize:  traa.DefaultLogMaxSize,
			MaxFiles: traa.DefaultLogMaxFiles,
			Level:    traa.LogLevelDebug,
		}, backend.LogConfig)
	})

	t.Run("set log rejects negative rotation", func(t *testing.T) {
		deps, _ := newDeps(t)

		_, err := deps.setLog(ctx, setLogInput{File: "/tmp/traa.log", MaxFiles: -1})
		assert.ErrorIs(t, err, traa.ErrInvalidArgument)
	})

	t.Run("metrics follow calls", func(t *testing.T) {
		deps, _ := newDeps(t)

		_, err := deps.stringFromJNI(ctx)
		require.NoError(t, err)

		all := deps.App.Metrics.GetAll()
		require.Contains(t, all, "test")
		assert.Equal(t, int64(1), all["test"].TotalCalls)
	})
}
