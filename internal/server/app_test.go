package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/teamdb/internal/logging"
	"github.com/dmitrijs2005/teamdb/internal/server/config"
)

type closeRecorder struct {
	closed bool
	err    error
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return c.err
}

func newTestApp(addr string, closers ...io.Closer) *App {
	return &App{
		config:  &config.Config{EndpointAddr: addr, ShutdownTimeout: time.Second},
		logger:  logging.NewTextLogger(io.Discard, "error"),
		handler: http.NotFoundHandler(),
		closers: closers,
	}
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	c := &closeRecorder{}
	app := newTestApp("127.0.0.1:0", c)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.True(t, c.closed)
}

func TestRun_CloserErrorsAreReported(t *testing.T) {
	app := newTestApp("127.0.0.1:0", &closeRecorder{err: errors.New("close failed")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := app.Run(ctx)
	require.ErrorContains(t, err, "close failed")
}

func TestRun_ListenError(t *testing.T) {
	app := newTestApp("not-an-address")

	err := app.Run(context.Background())
	require.ErrorContains(t, err, "failed to listen")
}
