package host

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/traa/pkg/traa"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

type fakeBackend struct {
	mu       sync.Mutex
	err      error
	initCfg  traa.Config
	logCfg   traa.LogConfig
	level    traa.LogLevel
	released bool
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) StringFromJNI(ctx context.Context) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	return "Hello from C++", nil
}

func (b *fakeBackend) Init(ctx context.Context, cfg traa.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.initCfg = cfg
	return b.err
}

func (b *fakeBackend) Release(ctx context.Context) error {
	b.released = true
	return b.err
}

func (b *fakeBackend) SetLogLevel(ctx context.Context, level traa.LogLevel) error {
	if !level.IsValid() {
		return &traa.Error{Op: "set_log_level", Code: traa.CodeInvalidArgument}
	}
	b.level = level
	return b.err
}

func (b *fakeBackend) SetLog(ctx context.Context, cfg traa.LogConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	b.logCfg = cfg
	return b.err
}

// dial serves backend over an in-memory listener and returns the client side.
func dial(t *testing.T, backend *fakeBackend) *grpcClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	p := &NativeHostPlugin{Impl: backend, Logger: hclog.NewNullLogger()}
	require.NoError(t, p.GRPCServer(nil, srv))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	raw, err := p.GRPCClient(context.Background(), nil, conn)
	require.NoError(t, err)
	client, ok := raw.(*grpcClient)
	require.True(t, ok)
	return client
}

func TestNativeHost_RoundTrip(t *testing.T) {
	backend := &fakeBackend{}
	client := dial(t, backend)
	ctx := context.Background()

	t.Run("string from jni", func(t *testing.T) {
		text, err := client.StringFromJNI(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Hello from C++", text)
	})

	t.Run("init carries log config and event request", func(t *testing.T) {
		cfg := traa.Config{
			Log:     traa.LogConfig{File: "/tmp/traa.log", MaxSize: 1024, MaxFiles: 2, Level: traa.LogLevelWarn},
			Handler: traa.EventHandlerFuncs{},
		}
		require.NoError(t, client.Init(ctx, cfg))

		backend.mu.Lock()
		defer backend.mu.Unlock()
		assert.Equal(t, cfg.Log, backend.initCfg.Log)
		assert.NotNil(t, backend.initCfg.Handler)
	})

	t.Run("init without handler", func(t *testing.T) {
		require.NoError(t, client.Init(ctx, traa.Config{Log: traa.DefaultLogConfig()}))

		backend.mu.Lock()
		defer backend.mu.Unlock()
		assert.Nil(t, backend.initCfg.Handler)
	})

	t.Run("set log level", func(t *testing.T) {
		require.NoError(t, client.SetLogLevel(ctx, traa.LogLevelDebug))
		assert.Equal(t, traa.LogLevelDebug, backend.level)
	})

	t.Run("invalid log level keeps its native code", func(t *testing.T) {
		err := client.SetLogLevel(ctx, traa.LogLevel(42))
		assert.ErrorIs(t, err, traa.ErrInvalidArgument)
		assert.Equal(t, traa.CodeInvalidArgument, traa.CodeOf(err))
	})

	t.Run("set log", func(t *testing.T) {
		cfg := traa.LogConfig{File: "/tmp/traa.log", MaxSize: 10, MaxFiles: 1, Level: traa.LogLevelError}
		require.NoError(t, client.SetLog(ctx, cfg))
		assert.Equal(t, cfg, backend.logCfg)
	})

	t.Run("validation errors stay invalid arguments", func(t *testing.T) {
		err := client.SetLog(ctx, traa.LogConfig{File: "/tmp/traa.log"})
		assert.ErrorIs(t, err, traa.ErrInvalidArgument)
	})

	t.Run("release", func(t *testing.T) {
		require.NoError(t, client.Release(ctx))
		assert.True(t, backend.released)
	})
}

func TestNativeHost_Errors(t *testing.T) {
	t.Run("native result codes come back from code returning calls", func(t *testing.T) {
		client := dial(t, &fakeBackend{err: &traa.Error{Op: "init", Code: traa.CodeResourceBusy}})

		err := client.Init(context.Background(), traa.Config{Log: traa.DefaultLogConfig()})

		var native *traa.Error
		require.ErrorAs(t, err, &native)
		assert.Equal(t, "init", native.Op)
		assert.Equal(t, traa.CodeResourceBusy, native.Code)
	})

	t.Run("native result codes come back as status details", func(t *testing.T) {
		client := dial(t, &fakeBackend{err: &traa.Error{Op: "release", Code: traa.CodeInvalidState}})

		err := client.Release(context.Background())
		assert.ErrorIs(t, err, traa.ErrInvalidState)
	})

	t.Run("other failures", func(t *testing.T) {
		client := dial(t, &fakeBackend{err: errors.New("boom")})

		_, err := client.StringFromJNI(context.Background())
		assert.EqualError(t, err, "native host string_from_jni: boom")
	})

	t.Run("cancelled context", func(t *testing.T) {
		client := dial(t, &fakeBackend{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.StringFromJNI(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestConfigEncoding(t *testing.T) {
	cfg := traa.Config{Log: traa.LogConfig{File: "a.log", MaxSize: 2097152, MaxFiles: 3, Level: traa.LogLevelTrace}}

	s := encodeConfig(cfg)

	assert.Equal(t, cfg, decodeConfig(s))
	assert.False(t, eventsRequested(s))
	assert.Equal(t, traa.LogConfig{}, decodeLogConfig(nil))
}

func TestValidateBinaryPath(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "traa-host")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755))

	t.Run("absolute path", func(t *testing.T) {
		path, err := validateBinaryPath(bin)
		require.NoError(t, err)
		resolved, _ := filepath.EvalSymlinks(bin)
		assert.Equal(t, resolved, path)
	})

	t.Run("relative path rejected", func(t *testing.T) {
		_, err := validateBinaryPath("traa-host")
		assert.ErrorContains(t, err, "must be absolute")
	})

	t.Run("shell metacharacters rejected", func(t *testing.T) {
		_, err := validateBinaryPath(filepath.Join(dir, "traa-host;rm"))
		assert.ErrorContains(t, err, "forbidden character")
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := validateBinaryPath("")
		assert.Error(t, err)
	})
}

func TestClient_StartFailures(t *testing.T) {
	t.Run("missing binary", func(t *testing.T) {
		c := NewClient(filepath.Join(t.TempDir(), "missing-host"), time.Second, nil)

		err := c.Start(context.Background())

		assert.ErrorIs(t, err, ErrHostStart)
		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, "binary not found", loadErr.Reason)
	})

	t.Run("directory instead of binary", func(t *testing.T) {
		c := NewClient(t.TempDir(), time.Second, nil)

		_, err := c.StringFromJNI(context.Background())
		assert.ErrorIs(t, err, ErrHostStart)
	})

	t.Run("cancelled context", func(t *testing.T) {
		c := NewClient("", time.Second, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.ErrorIs(t, c.Start(ctx), context.Canceled)
		assert.Equal(t, "isolated", c.Name())
	})

	t.Run("stop without start", func(t *testing.T) {
		c := NewClient("traa-host", time.Second, nil)
		assert.NotPanics(t, c.Stop)
	})
}
