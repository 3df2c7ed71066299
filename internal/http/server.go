package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"revgrid/internal/backend"
	rlog "revgrid/internal/log"
)

// Server serves the record API under a configurable prefix.
type Server struct {
	http.Server
	backend backend.Backend
	logger  *rlog.Logger
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. prefix is mounted as-is, e.g. "/api".
func NewServer(addr, prefix string, b backend.Backend, logger *rlog.Logger) *Server {
	if logger == nil {
		logger = rlog.New(rlog.DefaultConfig())
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
		},
		backend: b,
		logger:  logger.WithComponent(rlog.ComponentHTTP),
	}
	s.Handler = s.routes(prefix)
	return s
}

func (s *Server) routes(prefix string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(rlog.RequestLogger(s.logger))
	r.Use(chimw.Recoverer)
	// Any origin may call the API; the grid client is served elsewhere.
	r.Use(cors.New(cors.Options{
		AllowOriginFunc: func(string) bool { return true },
		AllowedMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:  []string{"*"},
	}).Handler)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	api := func(r chi.Router) {
		r.Get("/data", s.handleListData)
		r.Delete("/data/{id}", s.handleDeleteData)
		r.Post("/seed", s.handleSeed)
	}

	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		api(r)
	} else {
		r.Route(prefix, api)
	}
	return r
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.Server.Shutdown(ctx)
}
