// ABOUTME: Entry point for the pcrm web server, MCP server, TUI and CLI
// ABOUTME: Routes to the requested command after loading config and opening the database
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/pcrm/cli"
	"github.com/harperreed/pcrm/config"
	"github.com/harperreed/pcrm/db"
	"github.com/harperreed/pcrm/tui"
)

const version = "0.2.0"

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Database path (default: ~/.local/share/pcrm/pcrm.db)")
	initOnly := flag.Bool("init", false, "Initialize database and exit")

	flag.Usage = printUsage
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("pcrm version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 && !*initOnly {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if err := cfg.EnsureUserID(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := cfg.NewLogger(os.Stderr)

	database, err := db.OpenDatabase(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open database", "path", cfg.DBPath, "err", err)
	}
	defer func() { _ = database.Close() }()

	if *initOnly {
		logger.Info("database initialized", "path", cfg.DBPath)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(db.NewStore(database), cfg, logger)

	if err := run(ctx, app, args); err != nil {
		var usage usageError
		if errors.As(err, &usage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
			printUsage()
		} else if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		_ = database.Close()
		os.Exit(1)
	}
}

// usageError is an unknown or missing command.
type usageError string

func (e usageError) Error() string { return string(e) }

type command func(app *cli.App, args []string) error

var crmCommands = map[string]command{
	"add-contact":        cli.AddContactCommand,
	"list-contacts":      cli.ListContactsCommand,
	"update-contact":     cli.UpdateContactCommand,
	"delete-contact":     cli.DeleteContactCommand,
	"add-opportunity":    cli.AddOpportunityCommand,
	"list-opportunities": cli.ListOpportunitiesCommand,
	"log-interaction":    cli.LogInteractionCommand,
	"list-interactions":  cli.ListInteractionsCommand,
}

var vizGraphCommands = map[string]command{
	"pipeline": cli.VizGraphPipelineCommand,
	"contact":  cli.VizGraphContactCommand,
	"all":      cli.VizGraphAllCommand,
}

func run(ctx context.Context, app *cli.App, args []string) error {
	command, rest := args[0], args[1:]

	switch command {
	case "serve":
		return cli.ServeCommand(ctx, app, rest)

	case "mcp":
		return cli.MCPCommand(ctx, app, version)

	case "tui":
		return tui.Run(ctx, app.Store, app.UserID)

	case "crm":
		if len(rest) == 0 {
			return usageError("crm requires a subcommand")
		}
		cmd, ok := crmCommands[rest[0]]
		if !ok {
			return usageError("unknown crm command: " + rest[0])
		}
		return cmd(app, rest[1:])

	case "viz":
		if len(rest) == 0 {
			return usageError("viz requires a subcommand")
		}
		switch rest[0] {
		case "dashboard":
			return cli.VizDashboardCommand(app, rest[1:])
		case "pipeline":
			// shorthand for viz graph pipeline
			return cli.VizGraphPipelineCommand(app, rest[1:])
		case "graph":
			if len(rest) < 2 {
				return usageError("viz graph requires a type (pipeline, contact, or all)")
			}
			cmd, ok := vizGraphCommands[rest[1]]
			if !ok {
				return usageError("unknown graph type: " + rest[1])
			}
			return cmd(app, rest[2:])
		default:
			return usageError("unknown viz command: " + rest[0])
		}

	case "sync":
		if len(rest) == 0 {
			return usageError("sync requires a subcommand (init or contacts)")
		}
		switch rest[0] {
		case "init":
			return cli.SyncInitCommand(ctx, app, rest[1:])
		case "contacts":
			return cli.SyncContactsCommand(ctx, app, rest[1:])
		default:
			return usageError("unknown sync command: " + rest[0])
		}

	default:
		return usageError("unknown command: " + command)
	}
}

func printUsage() {
	fmt.Printf(`pcrm v%s - Personal CRM

USAGE:
  pcrm [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       Database path (default: ~/.local/share/pcrm/pcrm.db)
  --init                 Initialize database and exit

COMMANDS:
  serve                  Start the web UI
    --addr <host:port>       Listen address (default: 127.0.0.1:8080)
  mcp                    Start MCP server on stdio
  tui                    Browse contacts, opportunities and interactions
  crm                    Record management commands
  viz                    Dashboard and graph commands
  sync                   Google Contacts import

CRM COMMANDS:
  pcrm crm add-contact      Add a new contact
    --first-name, --last-name, --email, --phone, --company, --title,
    --notes, --linkedin, --website, --birthday <YYYY-MM-DD>

  pcrm crm list-contacts    List contacts
    --query <text>            Search by name, email or company
    --limit <n>               Max results (default: 50)

  pcrm crm update-contact [flags] <id>  Update an existing contact
    Same flags as add-contact; only the flags given change.
    Note: flags must come before the contact ID

  pcrm crm delete-contact [--yes] <id>  Delete a contact and its records

  pcrm crm add-opportunity  Add an opportunity
    --contact <id>            Contact ID (required)
    --name <name>             Opportunity name (required)
    --value <amount>          Value in whole units
    --currency <code>         ISO 4217 code (default: profile currency)
    --stage <stage>           Lead, Contacted, Proposal, Negotiation, Won, Lost
    --priority <1-5>          Priority
    --close-date <date>       Expected close date (YYYY-MM-DD)

  pcrm crm list-opportunities  List opportunities with totals
    --query <text>            Search by name or contact
    --stage <stage>           Filter by stage (default: all)

  pcrm crm log-interaction  Log an interaction
    --contact <id>            Contact ID (required)
    --type <type>             Email, Call, Meeting, Note, LinkedIn, Other
    --summary <text>          Summary (required)
    --when <RFC3339>          When it happened (default: now)
    --follow-up <date>        Follow-up date (YYYY-MM-DD)

  pcrm crm list-interactions  List interactions
    --query <text>            Search by summary or contact
    --type <type>             Filter by type (default: all)
    --overdue-only            Only overdue follow-ups

VIZ COMMANDS:
  pcrm viz dashboard              Terminal dashboard
  pcrm viz graph pipeline         Opportunity pipeline graph
  pcrm viz graph contact <id>     Graph around one contact
  pcrm viz graph all              Every contact and opportunity
    --output <file>               Output file (default: stdout)

SYNC COMMANDS:
  pcrm sync init                  Authorize Google Contacts access
  pcrm sync contacts              Import Google Contacts

EXAMPLES:
  # Start the web UI
  pcrm serve

  # Add a contact
  pcrm crm add-contact --first-name John --last-name Smith --email john@acme.com --company "Acme Corp"

  # Track an opportunity
  pcrm crm add-opportunity --contact <id> --name "Enterprise License" --value 50000 --stage Proposal

  # Render the pipeline
  pcrm viz graph pipeline | dot -Tpng > pipeline.png

`, version)
}
