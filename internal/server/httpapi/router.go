// Package httpapi exposes the directory over HTTP/JSON:
//
//	GET  /api/teamdb   current snapshot
//	PUT  /api/teamdb   replace the snapshot (auth, precondition)
//	GET  /api/backups  retained backups (auth)
//	POST /api/token    issue a token, loopback callers only
//	GET  /api/health   liveness probe
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dmitrijs2005/teamdb/internal/logging"
	"github.com/dmitrijs2005/teamdb/internal/server/models"
	"github.com/dmitrijs2005/teamdb/internal/server/services"
)

const (
	HeaderEmail             = "X-TeamDB-Email"
	HeaderToken             = "X-TeamDB-Token"
	HeaderClientModifiedAt  = "X-Client-Modified-At"
	HeaderIfUnmodifiedSince = "If-Unmodified-Since"
	HeaderRequestID         = "X-Request-ID"

	// TimeLayout is the wire format of modification times.
	TimeLayout = "2006-01-02T15:04:05Z"

	maxRequestBody = 16 << 20
)

type DocumentService interface {
	Get(ctx context.Context) (*services.Current, error)
	Put(ctx context.Context, raw []byte, since *time.Time, email string) (*services.PutResult, error)
	ListBackups(ctx context.Context) ([]models.Backup, error)
}

type TokenService interface {
	Issue(ctx context.Context, email string) (string, error)
	Verify(ctx context.Context, email, token string) error
}

type Handler struct {
	docs   DocumentService
	tokens TokenService
	logger logging.Logger
	now    func() time.Time
}

func NewHandler(docs DocumentService, tokens TokenService, logger logging.Logger) *Handler {
	return &Handler{docs: docs, tokens: tokens, logger: logger, now: time.Now}
}

// NewRouter mounts the API. allowOrigins feeds the CORS policy;
// credentials are never allowed cross-origin.
func NewRouter(h *Handler, allowOrigins []string) chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RequestLogger(&requestLogger{logger: h.logger}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", HeaderEmail, HeaderToken, HeaderClientModifiedAt, HeaderIfUnmodifiedSince},
		ExposedHeaders:   []string{HeaderRequestID, "Last-Modified"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/teamdb", h.GetDocument)
		r.Post("/token", h.IssueToken)

		r.Group(func(r chi.Router) {
			r.Use(h.requireToken)
			r.Put("/teamdb", h.PutDocument)
			r.Get("/backups", h.ListBackups)
		})
	})
	return r
}
