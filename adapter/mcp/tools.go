package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/traa/adapter/cli"
	"github.com/felixgeelhaar/traa/internal/runtime"
	"github.com/felixgeelhaar/traa/pkg/observability"
	"github.com/felixgeelhaar/traa/pkg/traa"
)

// ToolDependencies provides the application behind MCP tools.
type ToolDependencies struct {
	App *cli.App
}

type setLogLevelInput struct {
	Level string `json:"level" jsonschema:"required"`
}

type setLogInput struct {
	File     string `json:"file,omitempty"`
	MaxSize  int    `json:"max_size,omitempty"`
	MaxFiles int    `json:"max_files,omitempty"`
	Level    string `json:"level,omitempty"`
}

// RegisterTools registers MCP tools that mirror CLI functionality.
func RegisterTools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}

	srv.Tool("traa.version").
		Description("Get traa version information").
		Handler(func(ctx context.Context, input struct{}) (map[string]string, error) {
			return map[string]string{
				"version":   cli.Version,
				"commit":    cli.Commit,
				"buildDate": cli.BuildDate,
			}, nil
		})

	srv.Tool("traa.probe").
		Description("Check that the native library loads and answers").
		Handler(func(ctx context.Context, input struct{}) (cli.ProbeResult, error) {
			return deps.probe(observability.NewRequestContext(ctx)), nil
		})

	srv.Tool("traa.string_from_jni").
		Description("Call the native string function").
		Handler(func(ctx context.Context, input struct{}) (map[string]string, error) {
			return deps.stringFromJNI(observability.NewRequestContext(ctx))
		})

	srv.Tool("traa.set_log_level").
		Description("Set native log verbosity (trace, debug, info, warn, error, fatal, off)").
		Handler(func(ctx context.Context, input setLogLevelInput) (map[string]string, error) {
			return deps.setLogLevel(observability.NewRequestContext(ctx), input)
		})

	srv.Tool("traa.set_log").
		Description("Configure native log output; an empty file logs to the console").
		Handler(func(ctx context.Context, input setLogInput) (map[string]any, error) {
			return deps.setLog(observability.NewRequestContext(ctx), input)
		})

	srv.Tool("traa.metrics").
		Description("Show native call metrics per backend").
		Handler(func(ctx context.Context, input struct{}) (map[string]runtime.BackendMetrics, error) {
			return deps.App.Metrics.GetAll(), nil
		})

	return nil
}

func (d ToolDependencies) probe(ctx context.Context) cli.ProbeResult {
	return d.App.Probe(ctx)
}

func (d ToolDependencies) stringFromJNI(ctx context.Context) (map[string]string, error) {
	exec, err := d.App.Executor()
	if err != nil {
		return nil, err
	}
	text, err := exec.StringFromJNI(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]string{"message": text}, nil
}

func (d ToolDependencies) setLogLevel(ctx context.Context, input setLogLevelInput) (map[string]string, error) {
	if strings.TrimSpace(input.Level) == "" {
		return nil, errors.New("level is required")
	}
	level, err := traa.ParseLogLevel(input.Level)
	if err != nil {
		return nil, err
	}
	exec, err := d.App.Executor()
	if err != nil {
		return nil, err
	}
	if err := exec.SetLogLevel(ctx, level); err != nil {
		return nil, err
	}
	return map[string]string{"level": level.String()}, nil
}

func (d ToolDependencies) setLog(ctx context.Context, input setLogInput) (map[string]any, error) {
	level, err := traa.ParseLogLevel(input.Level)
	if err != nil {
		return nil, err
	}

	cfg := traa.DefaultLogConfig()
	cfg.File = strings.TrimSpace(input.File)
	cfg.Level = level
	if input.MaxSize != 0 {
		cfg.MaxSize = input.MaxSize
	}
	if input.MaxFiles != 0 {
		cfg.MaxFiles = input.MaxFiles
	}

	exec, err := d.App.Executor()
	if err != nil {
		return nil, err
	}
	if err := exec.SetLog(ctx, cfg); err != nil {
		return nil, err
	}
	return map[string]any{
		"file":      cfg.File,
		"max_size":  cfg.MaxSize,
		"max_files": cfg.MaxFiles,
		"level":     cfg.Level.String(),
	}, nil
}
