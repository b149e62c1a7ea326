// Package httpapi is the REST host for sessions.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"geopits.dev/internal/persistence/indexdb"
	"geopits.dev/internal/session"
)

type Config struct {
	Sessions *session.Manager
	// Optional: mounted at /v1/ws.
	WS http.Handler
	// Optional: exported on /metrics.
	Index  *indexdb.SQLiteIndex
	Logger logrus.FieldLogger
}

type Handler struct {
	sessions *session.Manager
	index    *indexdb.SQLiteIndex
	log      logrus.FieldLogger
}

func NewRouter(cfg Config) chi.Router {
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	h := &Handler{sessions: cfg.Sessions, index: cfg.Index, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)
	r.Get("/metrics", h.Metrics)
	if cfg.WS != nil {
		r.Handle("/v1/ws", cfg.WS)
	}

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Get("/", h.ListSessions)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)
			r.Get("/caches", h.GetCaches)
			r.Get("/survey", h.Survey)
			r.Get("/history", h.History)
			r.Post("/move", h.Move)
			r.Post("/collect", h.Collect)
			r.Post("/deposit", h.Deposit)
			r.Post("/reset", h.Reset)
		})
	})
	return r
}
