// ABOUTME: Google sync CLI commands
// ABOUTME: Handles OAuth setup and importing Google Contacts
package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/pcrm/sync"
	"golang.org/x/oauth2"
)

func (a *App) oauthConfig(redirectBase string) (*oauth2.Config, error) {
	config := sync.NewOAuthConfig(a.Config.GoogleClientID, a.Config.GoogleClientSecret, redirectBase)
	if err := sync.CheckCredentials(config); err != nil {
		return nil, err
	}
	return config, nil
}

// SyncInitCommand runs the OAuth consent flow through a local callback server
// and stores the resulting token.
func SyncInitCommand(ctx context.Context, app *App, args []string) error {
	fs := app.flagSet("sync init")
	noBrowser := fs.Bool("no-browser", false, "Print the consent URL without opening a browser")
	timeout := fs.Duration("timeout", 5*time.Minute, "How long to wait for consent")
	if err := fs.Parse(args); err != nil {
		return err
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to start callback listener: %w", err)
	}

	config, err := app.oauthConfig("http://" + listener.Addr().String())
	if err != nil {
		_ = listener.Close()
		return err
	}

	state := uuid.NewString()
	tokenCh := make(chan *oauth2.Token, 1)
	errCh := make(chan error, 1)
	fail := func(err error) {
		select {
		case errCh <- err:
		default:
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc(sync.CallbackPath, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			fail(errors.New("OAuth state mismatch"))
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			fail(fmt.Errorf("no authorization code received"))
			return
		}

		token, err := config.Exchange(r.Context(), code)
		if err != nil {
			http.Error(w, "exchange failed", http.StatusBadGateway)
			fail(fmt.Errorf("failed to exchange code: %w", err))
			return
		}

		_, _ = fmt.Fprintf(w, "Authorization successful! You can close this window.")
		select {
		case tokenCh <- token:
		default:
		}
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fail(err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOffline)
	app.printf("Opening browser for Google OAuth...\n")
	app.printf("\nIf browser doesn't open, visit this URL:\n%s\n\n", authURL)
	if !*noBrowser {
		if err := openBrowser(authURL); err != nil {
			app.Logger.Debug("could not open browser", "err", err)
		}
	}

	waitCtx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	select {
	case token := <-tokenCh:
		if err := sync.SaveToken(app.Config.TokenPath(), token); err != nil {
			return fmt.Errorf("failed to save token: %w", err)
		}
		app.printf("✓ Authenticated successfully\n")
		app.printf("✓ Tokens saved to %s\n\n", app.Config.TokenPath())
		app.printf("Ready to sync! Run 'pcrm sync contacts' to import contacts.\n")
		return nil
	case err := <-errCh:
		return fmt.Errorf("OAuth flow failed: %w", err)
	case <-waitCtx.Done():
		return fmt.Errorf("OAuth flow failed: %w", waitCtx.Err())
	}
}

// SyncContactsCommand imports Google Contacts, merging into existing
// contacts that share an email address.
func SyncContactsCommand(ctx context.Context, app *App, args []string) error {
	fs := app.flagSet("sync contacts")
	if err := fs.Parse(args); err != nil {
		return err
	}

	token, err := sync.LoadToken(app.Config.TokenPath())
	if err != nil {
		return fmt.Errorf("no authentication token found. Run 'pcrm sync init' first: %w", err)
	}

	config, err := app.oauthConfig("http://127.0.0.1")
	if err != nil {
		return err
	}

	source, err := sync.NewPeopleClient(ctx, config, token)
	if err != nil {
		return err
	}

	app.printf("Syncing Google Contacts...\n")
	importer := sync.NewContactsImporter(app.Store, app.UserID, app.Logger)
	result, err := importer.Import(ctx, source)
	if err != nil {
		return fmt.Errorf("contacts sync failed: %w", err)
	}

	app.printf("  → Fetched %d contacts\n", result.Fetched)
	app.printf("✓ Imported %d new, updated %d, skipped %d", result.Created, result.Updated, result.Skipped)
	if result.Failed > 0 {
		app.printf(", %d failed (see log)", result.Failed)
	}
	app.printf("\n")
	return nil
}

// openBrowser attempts to open url in the default browser.
func openBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}

	return exec.Command(cmd, args...).Start()
}
