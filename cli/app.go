// ABOUTME: Shared state and helpers for CLI commands
// ABOUTME: Bundles the store, identity, and output streams every subcommand uses
package cli

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/harperreed/pcrm/config"
	"github.com/harperreed/pcrm/db"
	"golang.org/x/term"
)

// App is what every command runs against.
type App struct {
	Store  *db.Store
	Config *config.Config
	Logger *log.Logger
	UserID uuid.UUID

	Out io.Writer
	In  io.Reader
	Now func() time.Time

	// Interactive reports whether In is a terminal that can answer prompts.
	Interactive func() bool
}

// NewApp wires an App to the process's standard streams.
func NewApp(store *db.Store, cfg *config.Config, logger *log.Logger) *App {
	return &App{
		Store:  store,
		Config: cfg,
		Logger: logger,
		UserID: cfg.Identity().UserID,
		Out:    os.Stdout,
		In:     os.Stdin,
		Now:    time.Now,
		Interactive: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

func (a *App) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(a.Out, format, args...)
}

func (a *App) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.Out)
	return fs
}

// confirm asks a yes/no question on the terminal. Without a terminal it
// refuses, so scripts must pass --yes.
func (a *App) confirm(question string) (bool, error) {
	if a.Interactive == nil || !a.Interactive() {
		return false, fmt.Errorf("refusing to prompt without a terminal; pass --yes to confirm")
	}

	a.printf("%s [y/N]: ", question)
	answer, err := bufio.NewReader(a.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

// positionalID reads the first positional argument as a record id.
func positionalID(fs *flag.FlagSet, kind string) (uuid.UUID, error) {
	if fs.NArg() < 1 {
		return uuid.Nil, fmt.Errorf("%s ID is required", kind)
	}
	id, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s ID: %w", kind, err)
	}
	return id, nil
}
