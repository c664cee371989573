// Package host runs native library calls in a separate process.
// It uses HashiCorp's go-plugin library for process isolation so a crash
// inside the native library cannot take down the caller.
package host

import (
	"context"

	"github.com/felixgeelhaar/traa/internal/runtime"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
)

// PluginName is the name the host dispenses its backend under.
const PluginName = "native"

// HandshakeConfig is used to verify that the host binary is compatible.
// Both the client and the host must use the same handshake configuration.
var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "TRAA_NATIVE_HOST",
	MagicCookieValue: "traa-native-host-v1",
}

// PluginMap returns the plugin map served by the host. impl is nil on the client side.
func PluginMap(impl runtime.Backend, logger hclog.Logger) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginName: &NativeHostPlugin{Impl: impl, Logger: logger},
	}
}

// NativeHostPlugin is the plugin.Plugin implementation for the native host.
type NativeHostPlugin struct {
	plugin.Plugin
	// Impl is the concrete implementation (host-side).
	Impl runtime.Backend

	// Logger receives native events on the host side. Defaults to hclog.Default().
	Logger hclog.Logger
}

var _ plugin.GRPCPlugin = (*NativeHostPlugin)(nil)

// GRPCServer registers the native host service.
func (p *NativeHostPlugin) GRPCServer(broker *plugin.GRPCBroker, s *grpc.Server) error {
	logger := p.Logger
	if logger == nil {
		logger = hclog.Default()
	}
	s.RegisterService(&serviceDesc, &grpcServer{impl: p.Impl, logger: logger})
	return nil
}

// GRPCClient returns the client side of the native host service.
func (p *NativeHostPlugin) GRPCClient(ctx context.Context, broker *plugin.GRPCBroker, c *grpc.ClientConn) (interface{}, error) {
	return &grpcClient{conn: c}, nil
}
