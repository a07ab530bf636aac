package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/teamdb/internal/client/client"
	"github.com/dmitrijs2005/teamdb/internal/client/config"
	"github.com/dmitrijs2005/teamdb/internal/client/services"
	"github.com/dmitrijs2005/teamdb/internal/filex"
	"github.com/dmitrijs2005/teamdb/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// tokenRequester asks a server to issue an access token.
type tokenRequester interface {
	RequestToken(ctx context.Context, email string) (string, error)
}

type App struct {
	config  *config.Config
	session *services.Session
	logger  logging.Logger
	db      *sql.DB
	reader  *bufio.Reader
	out     io.Writer
	now     func() time.Time

	newTokenClient func(baseURL string) tokenRequester
}

// NewApp opens the local cache, seeds the server settings from c and
// builds the session.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewTextLogger(os.Stderr, c.LogLevel)

	if err := filex.EnsureParentDir(c.DBFile); err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.DBFile)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	s := services.NewSession(c, db, logger)
	if err := s.SeedSettings(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to store server settings: %w", err)
	}

	a := newApp(c, s, logger, bufio.NewReader(os.Stdin), os.Stdout)
	a.db = db
	return a, nil
}

func newApp(c *config.Config, s *services.Session, logger logging.Logger, r *bufio.Reader, w io.Writer) *App {
	return &App{
		config:  c,
		session: s,
		logger:  logger,
		reader:  r,
		out:     w,
		now:     time.Now,
		newTokenClient: func(baseURL string) tokenRequester {
			return client.NewHTTPClient(baseURL, client.Credentials{}, c.RequestTimeout)
		},
	}
}

// Run starts the status watcher and the REPL and blocks until the user
// exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	if a.db != nil {
		defer a.db.Close()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(a.out, "Welcome to teamdb (type 'help' for commands)")

	a.session.CheckStatus(ctx)
	if a.config.StatusCheckInterval > 0 {
		go a.session.StartStatusWatcher(ctx, a.config.StatusCheckInterval)
	}

	if _, err := a.session.Directory(ctx); err != nil {
		fmt.Fprintf(a.out, "Directory unavailable: %v\n", err)
	} else {
		fmt.Fprintf(a.out, "Directory loaded from %s\n", a.session.Source())
	}

	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) mode() Mode {
	if a.session.Online() {
		return ModeOnline
	}
	return ModeOffline
}

// status renders the prompt prefix: mode, source and a star when there are
// unsaved changes.
func (a *App) status() string {
	s := string(a.mode())
	if src := a.session.Source(); src != "" {
		s += " " + string(src)
	}
	if pending, err := a.session.HasPending(context.Background()); err == nil && pending {
		s += " *"
	}
	return fmt.Sprintf("(%s)", s)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) ask(prompt string) (string, error) {
	return GetSimpleText(a.reader, prompt, a.out)
}
