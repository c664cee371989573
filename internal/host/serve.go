package host

import (
	"github.com/felixgeelhaar/traa/internal/runtime"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

// Serve serves backend to the parent process. It blocks until the parent
// disconnects. Started outside go-plugin, it prints a notice and exits.
func Serve(backend runtime.Backend, logger hclog.Logger) {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: HandshakeConfig,
		Plugins:         PluginMap(backend, logger),
		GRPCServer:      plugin.DefaultGRPCServer,
		Logger:          logger,
	})
}
