package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/traa/internal/runtime"
	"github.com/felixgeelhaar/traa/pkg/traa"
	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// DefaultBinary is the host binary name looked up when none is configured.
const DefaultBinary = "traa-host"

// grpcClient is the host-side gRPC client. It translates between Go types
// and protobuf messages.
type grpcClient struct {
	conn grpc.ClientConnInterface
}

var _ runtime.Backend = (*grpcClient)(nil)

func (c *grpcClient) Name() string { return "isolated" }

func (c *grpcClient) StringFromJNI(ctx context.Context) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.conn.Invoke(ctx, methodStringFromJNI, &emptypb.Empty{}, out); err != nil {
		return "", fromStatus("string_from_jni", err)
	}
	return out.GetValue(), nil
}

func (c *grpcClient) Init(ctx context.Context, cfg traa.Config) error {
	out := new(wrapperspb.Int32Value)
	if err := c.conn.Invoke(ctx, methodInit, encodeConfig(cfg), out); err != nil {
		return fromStatus("init", err)
	}
	return codeError("init", out)
}

func (c *grpcClient) Release(ctx context.Context) error {
	if err := c.conn.Invoke(ctx, methodRelease, &emptypb.Empty{}, new(emptypb.Empty)); err != nil {
		return fromStatus("release", err)
	}
	return nil
}

func (c *grpcClient) SetLogLevel(ctx context.Context, level traa.LogLevel) error {
	if err := c.conn.Invoke(ctx, methodSetLogLevel, wrapperspb.Int32(int32(level)), new(emptypb.Empty)); err != nil {
		return fromStatus("set_log_level", err)
	}
	return nil
}

func (c *grpcClient) SetLog(ctx context.Context, cfg traa.LogConfig) error {
	out := new(wrapperspb.Int32Value)
	if err := c.conn.Invoke(ctx, methodSetLog, encodeLogConfig(cfg), out); err != nil {
		return fromStatus("set_log", err)
	}
	return codeError("set_log", out)
}

func codeError(op string, rc *wrapperspb.Int32Value) error {
	if code := traa.Code(rc.GetValue()); code != traa.CodeNone {
		return &traa.Error{Op: op, Code: code}
	}
	return nil
}

// Client starts the host process on first use and forwards calls to it.
// A host that has exited is restarted on the next call.
type Client struct {
	binary       string
	startTimeout time.Duration
	logger       *slog.Logger

	mu      sync.Mutex
	process *plugin.Client
	backend runtime.Backend
}

var _ runtime.Backend = (*Client)(nil)

// NewClient creates a client for the host binary. An empty binary means DefaultBinary.
func NewClient(binary string, startTimeout time.Duration, logger *slog.Logger) *Client {
	if binary == "" {
		binary = DefaultBinary
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		binary:       binary,
		startTimeout: startTimeout,
		logger:       logger,
	}
}

// Name implements runtime.Backend.
func (c *Client) Name() string { return "isolated" }

// Start launches the host process if it is not running.
func (c *Client) Start(ctx context.Context) error {
	_, err := c.connect(ctx)
	return err
}

// Stop kills the host process.
func (c *Client) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.process == nil {
		return
	}
	c.process.Kill()
	c.process = nil
	c.backend = nil
	c.logger.Info("native host stopped", "binary", c.binary)
}

func (c *Client) connect(ctx context.Context) (runtime.Backend, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.process != nil {
		if !c.process.Exited() {
			return c.backend, nil
		}
		c.logger.Warn("native host exited, restarting", "binary", c.binary)
		c.process.Kill()
		c.process, c.backend = nil, nil
	}

	path, err := ResolveBinary(c.binary)
	if err != nil {
		return nil, newLoadError(c.binary, "binary not found", err)
	}

	// Security: Validate and sanitize the binary path before execution
	sanitizedPath, err := validateBinaryPath(path)
	if err != nil {
		return nil, newLoadError(path, "binary path validation failed", err)
	}

	info, err := os.Stat(sanitizedPath)
	if err != nil {
		return nil, newLoadError(sanitizedPath, "binary not found", err)
	}
	if !info.Mode().IsRegular() {
		return nil, newLoadError(sanitizedPath, "binary path is not a regular file", nil)
	}

	c.logger.Info("starting native host", "binary", sanitizedPath)

	// #nosec G204 -- binary path is validated by validateBinaryPath
	process := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig: HandshakeConfig,
		Plugins:         PluginMap(nil, nil),
		Cmd:             exec.Command(sanitizedPath),
		Logger:          newHclogAdapter(c.logger),
		StartTimeout:    c.startTimeout,
		AllowedProtocols: []plugin.Protocol{
			plugin.ProtocolGRPC,
		},
	})

	rpcClient, err := process.Client()
	if err != nil {
		process.Kill()
		return nil, newLoadError(sanitizedPath, "failed to connect", err)
	}

	raw, err := rpcClient.Dispense(PluginName)
	if err != nil {
		process.Kill()
		return nil, newLoadError(sanitizedPath, "failed to dispense", err)
	}

	backend, ok := raw.(runtime.Backend)
	if !ok {
		process.Kill()
		return nil, newLoadError(sanitizedPath, "host does not implement Backend", nil)
	}

	c.process = process
	c.backend = backend
	c.logger.Info("native host started", "binary", sanitizedPath)
	return backend, nil
}

// StringFromJNI implements runtime.Backend.
func (c *Client) StringFromJNI(ctx context.Context) (string, error) {
	b, err := c.connect(ctx)
	if err != nil {
		return "", err
	}
	return b.StringFromJNI(ctx)
}

// Init implements runtime.Backend.
func (c *Client) Init(ctx context.Context, cfg traa.Config) error {
	b, err := c.connect(ctx)
	if err != nil {
		return err
	}
	return b.Init(ctx, cfg)
}

// Release implements runtime.Backend.
func (c *Client) Release(ctx context.Context) error {
	b, err := c.connect(ctx)
	if err != nil {
		return err
	}
	return b.Release(ctx)
}

// SetLogLevel implements runtime.Backend.
func (c *Client) SetLogLevel(ctx context.Context, level traa.LogLevel) error {
	b, err := c.connect(ctx)
	if err != nil {
		return err
	}
	return b.SetLogLevel(ctx, level)
}

// SetLog implements runtime.Backend.
func (c *Client) SetLog(ctx context.Context, cfg traa.LogConfig) error {
	b, err := c.connect(ctx)
	if err != nil {
		return err
	}
	return b.SetLog(ctx, cfg)
}

// ResolveBinary finds the host binary. Bare names are looked up next to the
// running executable first, then on PATH.
func ResolveBinary(name string) (string, error) {
	if name == "" {
		return "", errors.New("binary name cannot be empty")
	}
	if strings.ContainsRune(name, filepath.Separator) || strings.ContainsRune(name, '/') {
		return filepath.Abs(name)
	}

	if exe, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(exe), name)
		if info, err := os.Stat(sibling); err == nil && info.Mode().IsRegular() {
			return sibling, nil
		}
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", err
	}
	return filepath.Abs(path)
}

// validateBinaryPath validates and sanitizes a binary path to prevent command injection.
// It ensures the path is absolute, contains no shell metacharacters, and resolves
// symlinks to their targets.
func validateBinaryPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("binary path cannot be empty")
	}

	cleanPath := filepath.Clean(path)
	if !filepath.IsAbs(cleanPath) {
		return "", fmt.Errorf("binary path must be absolute: %s", path)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "{", "}", "<", ">", "!", "\n", "\r", "'", "\""}
	if filepath.Separator != '\\' {
		dangerousChars = append(dangerousChars, "\\")
	}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return "", fmt.Errorf("binary path contains forbidden character %q: %s", char, path)
		}
	}

	resolvedPath, err := filepath.EvalSymlinks(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cleanPath, nil
		}
		return "", fmt.Errorf("failed to resolve binary path: %w", err)
	}
	return resolvedPath, nil
}
