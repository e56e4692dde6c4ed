// ABOUTME: Web server subcommand
// ABOUTME: Serves the browser UI for the configured user until interrupted
package cli

import (
	"context"
	"fmt"

	"github.com/harperreed/pcrm/web"
)

// ServeCommand runs the web UI until ctx is cancelled.
func ServeCommand(ctx context.Context, app *App, args []string) error {
	fs := app.flagSet("serve")
	addr := fs.String("addr", app.Config.Addr, "Listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	server, err := web.NewServer(app.Store, web.StaticIdentity(app.Config.Identity()), app.Logger)
	if err != nil {
		return fmt.Errorf("failed to create web server: %w", err)
	}

	app.printf("pcrm running at http://%s\n", *addr)
	return server.Start(ctx, *addr)
}
