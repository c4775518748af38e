package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/baxromumarov/job-tracker/internal/observability"
	"github.com/baxromumarov/job-tracker/internal/scraper"
	"github.com/baxromumarov/job-tracker/internal/store"
)

type PostingParser interface {
	Parse(ctx context.Context, rawURL string) (scraper.Posting, error)
}

type FeedSource interface {
	FetchFeed(ctx context.Context) ([]scraper.FeedJob, error)
}

type ApplicationStore interface {
	ListApplications(ctx context.Context, userID string, f store.ListFilter) ([]store.Application, int, error)
	GetApplication(ctx context.Context, userID string, id int64) (store.Application, error)
	CreateApplication(ctx context.Context, a store.Application) (store.Application, error)
	ImportApplication(ctx context.Context, a store.Application) (store.Application, bool, error)
	UpdateApplication(ctx context.Context, a store.Application) (store.Application, error)
	UpdateStatus(ctx context.Context, userID string, id int64, status store.Status) error
	DeleteApplication(ctx context.Context, userID string, id int64) error
	Ping(ctx context.Context) error
}

type Server struct {
	router      *chi.Mux
	store       ApplicationStore
	parser      PostingParser
	feed        FeedSource
	corsOrigins []string
}

func NewServer(store ApplicationStore, parser PostingParser, feed FeedSource, corsOrigins []string) *Server {
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}
	s := &Server{
		router:      chi.NewRouter(),
		store:       store,
		parser:      parser,
		feed:        feed,
		corsOrigins: corsOrigins,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", userHeader},
	}))

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/stats", s.handleStats)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/parse-job", s.handleParseJob)
		r.Get("/import/remoteok", s.handleRemoteOKFeed)

		r.Group(func(r chi.Router) {
			r.Use(requireUser)
			r.Get("/jobs", s.handleListJobs)
			r.Post("/jobs", s.handleCreateJob)
			r.Post("/jobs/import", s.handleImportJob)
			r.Get("/jobs/{id}", s.handleGetJob)
			r.Put("/jobs/{id}", s.handleUpdateJob)
			r.Patch("/jobs/{id}/status", s.handleUpdateStatus)
			r.Delete("/jobs/{id}", s.handleDeleteJob)
		})
	})
}

func (s *Server) Router() http.Handler {
	return s.router
}

const healthTimeout = 2 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		slog.Warn("health check failed", "error", err)
		respondError(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, observability.Snapshot())
}

// userHeader carries the authenticated user id, set by the auth proxy in
// front of this service.
const userHeader = "X-User-ID"

type ctxKey struct{}

func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(userHeader))
		if userID == "" {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, userID)))
	})
}

func userFrom(ctx context.Context) string {
	userID, _ := ctx.Value(ctxKey{}).(string)
	return userID
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
