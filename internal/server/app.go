// Package server initializes and runs the directory server. It opens the
// database, applies migrations, wires the services into the HTTP API and
// handles graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/dmitrijs2005/teamdb/internal/filex"
	"github.com/dmitrijs2005/teamdb/internal/logging"
	"github.com/dmitrijs2005/teamdb/internal/server/backups"
	"github.com/dmitrijs2005/teamdb/internal/server/config"
	"github.com/dmitrijs2005/teamdb/internal/server/httpapi"
	"github.com/dmitrijs2005/teamdb/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/teamdb/internal/server/services"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	handler http.Handler
	closers []io.Closer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := filex.EnsureParentDir(c.LogFile); err != nil {
		return nil, fmt.Errorf("log dir init error: %w", err)
	}
	logger, logCloser := logging.NewServerLogger(c.LogLevel, logging.FileOptions{
		Path:       c.LogFile,
		MaxSizeMB:  100,
		MaxBackups: 5,
		MaxAgeDays: 30,
	})

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	var mirror services.Mirror
	if c.BackupsEnabled() {
		m, err := backups.NewS3Mirror(ctx, c)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("backup mirror init error: %w", err)
		}
		mirror = m
		logger.Info(ctx, "backup mirror enabled", "bucket", c.S3Bucket)
	}

	docs := services.NewDocumentService(db, rm, c.MaxBackups, mirror, logger)
	tokens := services.NewTokenService(db, rm, c.TokenIterations)
	router := httpapi.NewRouter(httpapi.NewHandler(docs, tokens, logger), c.AllowOrigins)

	return &App{
		config:  c,
		logger:  logger,
		handler: router,
		closers: []io.Closer{db, syncCloser{logger}, logCloser},
	}, nil
}

// syncCloser flushes buffered zap output on shutdown.
type syncCloser struct {
	z *logging.ZapLogger
}

func (s syncCloser) Close() error {
	err := s.z.Sync()
	// stderr cannot be synced on most platforms
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return err
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// drains in-flight requests for up to ShutdownTimeout.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	app.initSignalHandler(cancelFunc)

	ln, err := net.Listen("tcp", app.config.EndpointAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", app.config.EndpointAddr, err)
	}

	srv := &http.Server{
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	app.logger.Info(ctx, "server started", "addr", ln.Addr().String())

	var result *multierror.Error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			result = multierror.Append(result, err)
		}
	case <-ctx.Done():
		app.logger.Info(context.Background(), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to shut down: %w", err))
		}
	}

	for _, c := range app.closers {
		if err := c.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
