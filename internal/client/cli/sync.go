package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/teamdb/internal/client/client"
	"github.com/dmitrijs2005/teamdb/internal/client/services"
	"github.com/dmitrijs2005/teamdb/internal/common"
)

// Pending prints the unsaved changes per kind.
func (a *App) Pending(ctx context.Context) error {
	set, err := a.session.PendingChanges(ctx)
	if err != nil {
		return err
	}
	if set.Empty() {
		a.println("No pending changes")
		return nil
	}
	for _, g := range []struct {
		label string
		names []string
	}{
		{"People", set.People},
		{"Teams", set.Teams},
		{"Projects", set.Projects},
	} {
		if len(g.names) > 0 {
			a.printf("%s: %s\n", g.label, strings.Join(g.names, ", "))
		}
	}
	return nil
}

// Save pushes the pending changes. "save force" skips the conflict check.
func (a *App) Save(ctx context.Context, args []string) error {
	force := len(args) == 1 && args[0] == "force"
	if len(args) > 0 && !force {
		return usage("save [force]")
	}

	out := a.session.SavePending(ctx, force)
	switch {
	case out.OK:
		a.println(out.Result.Message)
		return nil
	case out.Reason == services.ReasonNoPending:
		a.println("No pending changes")
		return nil
	case out.Reason == services.ReasonNoServer:
		return errors.New("no server configured, use 'server' to set one")
	case out.Reason == services.ReasonConflict:
		a.println("The server copy changed since your last sync.")
		a.println("Use 'reload' to take the server copy or 'save force' to overwrite it.")
		return out.Err
	}
	return out.Err
}

func (a *App) Discard(ctx context.Context) error {
	if err := a.session.DiscardPending(ctx); err != nil {
		return err
	}
	a.println("Pending changes discarded")
	return a.Reload(ctx)
}

func (a *App) Reload(ctx context.Context) error {
	if _, err := a.session.Reload(ctx); err != nil {
		return err
	}
	a.printf("Directory loaded from %s\n", a.session.Source())
	return nil
}

func (a *App) ClearCache(ctx context.Context) error {
	if err := a.session.ClearCache(ctx); err != nil {
		return err
	}
	a.println("Cache cleared")
	return a.Reload(ctx)
}

// Server asks for the server URL. An empty answer keeps the current one.
func (a *App) Server(ctx context.Context) error {
	cur, err := a.session.Settings(ctx)
	if err != nil {
		return err
	}
	url, err := a.ask(fmt.Sprintf("Server URL (current: %s)", valueOr(cur.URL, "none")))
	if err != nil {
		return err
	}
	if url == "" {
		return nil
	}
	if err := a.session.SaveSettings(ctx, services.ServerSettings{URL: url}); err != nil {
		return err
	}
	a.session.CheckStatus(ctx)
	a.printf("Server set to %s (%s)\n", url, a.mode())
	return nil
}

// Login stores the email and token sent with every save.
func (a *App) Login(ctx context.Context) error {
	email, err := a.ask("Email")
	if err != nil {
		return err
	}
	token, err := GetSecret("Token", a.out)
	if err != nil {
		return err
	}
	if email == "" || token == "" {
		return fmt.Errorf("%w: email and token are required", common.ErrMalformedInput)
	}
	if err := a.session.SaveSettings(ctx, services.ServerSettings{Email: email, Token: token}); err != nil {
		return err
	}
	a.println("Credentials saved")
	return nil
}

// RequestToken asks the server for a new token and stores it with the email.
// The server only answers requests from its own host.
func (a *App) RequestToken(ctx context.Context) error {
	set, err := a.session.Settings(ctx)
	if err != nil {
		return err
	}
	if set.URL == "" {
		return client.ErrNoServer
	}
	email, err := a.ask(fmt.Sprintf("Email (empty for %s)", valueOr(set.Email, "none")))
	if err != nil {
		return err
	}
	if email == "" {
		email = set.Email
	}
	if email == "" {
		return fmt.Errorf("%w: email is required", common.ErrMalformedInput)
	}

	token, err := a.newTokenClient(set.URL).RequestToken(ctx, email)
	if err != nil {
		return err
	}
	if err := a.session.SaveSettings(ctx, services.ServerSettings{Email: email, Token: token}); err != nil {
		return err
	}
	a.printf("Token issued for %s and saved\n", email)
	return nil
}

// Status checks the server right away and prints the state.
func (a *App) Status(ctx context.Context) error {
	set, err := a.session.Settings(ctx)
	if err != nil {
		return err
	}
	a.session.CheckStatus(ctx)
	a.printf("Server: %s (%s)\n", valueOr(set.URL, "none"), a.mode())
	a.printf("Email: %s\n", valueOr(set.Email, "none"))
	a.printf("Source: %s\n", valueOr(string(a.session.Source()), "not loaded"))
	return nil
}

func valueOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
