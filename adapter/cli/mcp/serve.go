package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/traa/adapter/cli"
	mcpinternal "github.com/felixgeelhaar/traa/internal/mcp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		app := cli.GetApp()
		if app == nil {
			return errors.New("app not initialized")
		}

		// The server still starts when the library is missing so traa.probe can report why.
		if err := app.InitNative(ctx); err != nil {
			app.Logger.Warn("native library not initialised", "error", err)
		}
		defer func() {
			if err := app.Close(context.WithoutCancel(ctx)); err != nil {
				app.Logger.Warn("native release failed", "error", err)
			}
		}()

		err := mcpinternal.Serve(ctx, app.Config, app, app.Logger)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}
