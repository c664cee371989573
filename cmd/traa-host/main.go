// Command traa-host owns the native library on behalf of a traa process
// running with TRAA_ISOLATED set. It is started by go-plugin and is not
// meant to be run by hand.
package main

import (
	"os"

	"github.com/felixgeelhaar/traa/internal/host"
	"github.com/felixgeelhaar/traa/internal/runtime"
	"github.com/felixgeelhaar/traa/pkg/config"
	"github.com/felixgeelhaar/traa/pkg/traa"
	"github.com/hashicorp/go-hclog"
)

func main() {
	// go-plugin parses JSON lines on stderr and relays them to the client log
	logger := hclog.New(&hclog.LoggerOptions{
		Name:       "traa-host",
		Level:      hclog.LevelFromString(os.Getenv("LOG_LEVEL")),
		Output:     os.Stderr,
		JSONFormat: true,
	})

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	lib, err := traa.NewLoader(cfg.LoaderOptions(nil)...).Load()
	if err != nil {
		logger.Error("failed to load native library", "error", err)
		os.Exit(1)
	}
	logger.Debug("native library loaded", "path", lib.Path())

	host.Serve(runtime.NewInProcess(lib), logger)
}
