package host

import (
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/hashicorp/go-hclog"
)

// hclogAdapter adapts slog to the hclog interface go-plugin logs through.
// Host stderr output arrives here as well.
type hclogAdapter struct {
	logger *slog.Logger
	name   string
	args   []interface{}
}

func newHclogAdapter(logger *slog.Logger) *hclogAdapter {
	return &hclogAdapter{logger: logger.With("component", "native-host"), name: "traa"}
}

func (h *hclogAdapter) Log(level hclog.Level, msg string, args ...interface{}) {
	switch level {
	case hclog.Trace, hclog.Debug:
		h.Debug(msg, args...)
	case hclog.Info:
		h.Info(msg, args...)
	case hclog.Warn:
		h.Warn(msg, args...)
	case hclog.Error:
		h.Error(msg, args...)
	default:
		h.Debug(msg, args...)
	}
}

func (h *hclogAdapter) attrs(args []interface{}) []interface{} {
	out := make([]interface{}, 0, len(h.args)+len(args)+2)
	out = append(out, "logger", h.name)
	out = append(out, h.args...)
	return append(out, args...)
}

func (h *hclogAdapter) Trace(msg string, args ...interface{}) {
	h.logger.Debug(msg, h.attrs(args)...)
}

func (h *hclogAdapter) Debug(msg string, args ...interface{}) {
	h.logger.Debug(msg, h.attrs(args)...)
}

func (h *hclogAdapter) Info(msg string, args ...interface{}) {
	h.logger.Info(msg, h.attrs(args)...)
}

func (h *hclogAdapter) Warn(msg string, args ...interface{}) {
	h.logger.Warn(msg, h.attrs(args)...)
}

func (h *hclogAdapter) Error(msg string, args ...interface{}) {
	h.logger.Error(msg, h.attrs(args)...)
}

func (h *hclogAdapter) IsTrace() bool { return false }
func (h *hclogAdapter) IsDebug() bool { return true }
func (h *hclogAdapter) IsInfo() bool  { return true }
func (h *hclogAdapter) IsWarn() bool  { return true }
func (h *hclogAdapter) IsError() bool { return true }

func (h *hclogAdapter) ImpliedArgs() []interface{} { return h.args }

func (h *hclogAdapter) With(args ...interface{}) hclog.Logger {
	return &hclogAdapter{
		logger: h.logger,
		name:   h.name,
		args:   append(append([]interface{}{}, h.args...), args...),
	}
}

func (h *hclogAdapter) Name() string { return h.name }

func (h *hclogAdapter) Named(name string) hclog.Logger {
	return &hclogAdapter{
		logger: h.logger,
		name:   h.name + "." + name,
		args:   h.args,
	}
}

func (h *hclogAdapter) ResetNamed(name string) hclog.Logger {
	return &hclogAdapter{
		logger: h.logger,
		name:   name,
		args:   h.args,
	}
}

func (h *hclogAdapter) SetLevel(level hclog.Level) {}

func (h *hclogAdapter) GetLevel() hclog.Level { return hclog.Debug }

func (h *hclogAdapter) StandardLogger(opts *hclog.StandardLoggerOptions) *log.Logger {
	return slog.NewLogLogger(h.logger.Handler(), slog.LevelInfo)
}

func (h *hclogAdapter) StandardWriter(opts *hclog.StandardLoggerOptions) io.Writer {
	return os.Stderr
}
