package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/teamdb/internal/common"
	"github.com/dmitrijs2005/teamdb/internal/logging"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	emailKey
)

// requestID reuses a sane incoming X-Request-ID or mints a new one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// RequestID returns the id assigned to the request carrying ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Email returns the authenticated caller set by requireToken.
func Email(ctx context.Context) string {
	e, _ := ctx.Value(emailKey).(string)
	return e
}

func (h *Handler) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, token := r.Header.Get(HeaderEmail), r.Header.Get(HeaderToken)
		if email == "" || token == "" {
			writeError(w, http.StatusUnauthorized, "missing "+HeaderEmail+" or "+HeaderToken+" header")
			return
		}
		if err := h.tokens.Verify(r.Context(), email, token); err != nil {
			if errors.Is(err, common.ErrInvalidToken) {
				writeError(w, http.StatusForbidden, "invalid token")
				return
			}
			h.logger.Error(r.Context(), "token check failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), emailKey, email)))
	})
}

// requestLogger plugs logging.Logger into chi's RequestLogger.
type requestLogger struct {
	logger logging.Logger
}

func (l *requestLogger) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &requestLogEntry{
		ctx: r.Context(),
		logger: l.logger.With(
			"request_id", RequestID(r.Context()),
			"method", r.Method,
			"uri", r.RequestURI,
			"remote", r.RemoteAddr,
		),
	}
}

type requestLogEntry struct {
	ctx    context.Context
	logger logging.Logger
}

func (e *requestLogEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ any) {
	e.logger.Info(e.ctx, "request", "status", status, "bytes", bytes, "elapsed", elapsed)
}

func (e *requestLogEntry) Panic(v any, stack []byte) {
	e.logger.Error(e.ctx, "panic", "value", v, "stack", string(stack))
}
