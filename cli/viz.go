// ABOUTME: Visualization CLI commands
// ABOUTME: Handles viz dashboard and graph generation commands
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/harperreed/pcrm/viz"
)

// writeGraph prints dot, or writes it to path when one is given.
func (a *App) writeGraph(dot, path string) error {
	if path != "" {
		if err := os.WriteFile(path, []byte(dot), 0644); err != nil {
			return fmt.Errorf("failed to write graph: %w", err)
		}
		a.printf("✓ Graph written to %s\n", path)
		return nil
	}
	a.printf("%s\n", dot)
	return nil
}

// VizGraphPipelineCommand generates the opportunity pipeline graph.
func VizGraphPipelineCommand(app *App, args []string) error {
	fs := app.flagSet("viz graph pipeline")
	output := fs.String("output", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	profile, err := app.Store.GetProfile(ctx, app.UserID)
	if err != nil {
		return err
	}

	dot, err := viz.NewGraphGenerator(app.Store, app.UserID).GeneratePipelineGraph(ctx, profile.CurrencyCode())
	if err != nil {
		return err
	}
	return app.writeGraph(dot, *output)
}

// VizGraphContactCommand generates the graph around one contact.
func VizGraphContactCommand(app *App, args []string) error {
	fs := app.flagSet("viz graph contact")
	output := fs.String("output", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	contactID, err := positionalID(fs, "contact")
	if err != nil {
		return err
	}

	dot, err := viz.NewGraphGenerator(app.Store, app.UserID).GenerateContactGraph(context.Background(), contactID)
	if err != nil {
		return err
	}
	return app.writeGraph(dot, *output)
}

// VizGraphAllCommand generates a complete graph with all entities.
func VizGraphAllCommand(app *App, args []string) error {
	fs := app.flagSet("viz graph all")
	output := fs.String("output", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	dot, err := viz.NewGraphGenerator(app.Store, app.UserID).GenerateCompleteGraph(context.Background())
	if err != nil {
		return err
	}
	return app.writeGraph(dot, *output)
}

// VizDashboardCommand prints the terminal dashboard.
func VizDashboardCommand(app *App, args []string) error {
	fs := app.flagSet("viz dashboard")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	stats, err := viz.NewGraphGenerator(app.Store, app.UserID).GenerateDashboardStats(ctx, app.Now())
	if err != nil {
		return fmt.Errorf("failed to generate dashboard stats: %w", err)
	}
	profile, err := app.Store.GetProfile(ctx, app.UserID)
	if err != nil {
		return err
	}

	app.printf("%s", viz.RenderDashboard(stats, profile.CurrencyCode()))
	return nil
}
