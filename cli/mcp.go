// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server on stdio for assistant integrations
package cli

import (
	"context"

	"github.com/harperreed/pcrm/handlers"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MCPCommand starts the MCP server on stdio and blocks until the client
// disconnects or ctx is cancelled.
func MCPCommand(ctx context.Context, app *App, version string) error {
	app.Logger.Info("starting MCP server", "version", version, "user", app.UserID)

	server := handlers.NewServer(app.Store, app.UserID, app.Logger, version)
	return server.Run(ctx, &mcp.StdioTransport{})
}
