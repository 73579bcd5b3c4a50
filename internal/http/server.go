// Package http exposes the expense tracker over a JSON REST API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"kharcha/internal/cache"
	"kharcha/internal/middleware/ratelimit"
	"kharcha/internal/middleware/security"
	"kharcha/internal/middleware/trace"
	"kharcha/internal/services"
	"kharcha/internal/stats"
	"kharcha/internal/storage"
)

type Server struct {
	http.Server

	store     storage.Store
	txService *services.TransactionService
	importer  *services.Importer

	limiter *ratelimit.Limiter

	// Derived stats are cached briefly and purged on every write, so the
	// endpoints stay cheap without ever serving stale aggregates.
	summaryCache    *cache.Cache[stats.Summary]
	sharesCache     *cache.Cache[[]stats.CategoryShare]
	comparisonCache *cache.Cache[[]stats.MonthTotal]

	// now anchors calendar-month aggregation; overridden in tests.
	now func() time.Time

	shutdownOnce sync.Once
}

// Options tunes the server; zero values pick defaults.
type Options struct {
	StatsCacheTTL time.Duration
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, store storage.Store, txService *services.TransactionService, importer *services.Importer, opts Options) *Server {
	ttl := opts.StatsCacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	s := &Server{
		store:           store,
		txService:       txService,
		importer:        importer,
		limiter:         ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		summaryCache:    cache.New[stats.Summary](8, ttl),
		sharesCache:     cache.New[[]stats.CategoryShare](8, ttl),
		comparisonCache: cache.New[[]stats.MonthTotal](8, ttl),
		now:             time.Now,
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/categories", s.handleListCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories", s.handleCreateCategory).Methods(http.MethodPost)
	api.HandleFunc("/categories/{id}", s.handleGetCategory).Methods(http.MethodGet)
	api.HandleFunc("/categories/{id}", s.handleUpdateCategory).Methods(http.MethodPatch, http.MethodPut)
	api.HandleFunc("/categories/{id}", s.handleDeleteCategory).Methods(http.MethodDelete)

	api.HandleFunc("/transactions", s.handleListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.handleCreateTransaction).Methods(http.MethodPost)
	api.HandleFunc("/transactions/{id}", s.handleGetTransaction).Methods(http.MethodGet)
	api.HandleFunc("/transactions/{id}", s.handleUpdateTransaction).Methods(http.MethodPatch, http.MethodPut)
	api.HandleFunc("/transactions/{id}", s.handleDeleteTransaction).Methods(http.MethodDelete)

	api.HandleFunc("/settings", s.handleGetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", s.handleUpdateSettings).Methods(http.MethodPost, http.MethodPatch)

	api.HandleFunc("/reminders", s.handleListReminders).Methods(http.MethodGet)
	api.HandleFunc("/reminders", s.handleCreateReminder).Methods(http.MethodPost)
	api.HandleFunc("/reminders/{id}", s.handleGetReminder).Methods(http.MethodGet)
	api.HandleFunc("/reminders/{id}", s.handleUpdateReminder).Methods(http.MethodPatch, http.MethodPut)
	api.HandleFunc("/reminders/{id}", s.handleDeleteReminder).Methods(http.MethodDelete)

	api.HandleFunc("/stats/summary", s.handleStatsSummary).Methods(http.MethodGet)
	api.HandleFunc("/stats/top-categories", s.handleStatsTopCategories).Methods(http.MethodGet)
	api.HandleFunc("/stats/breakdown", s.handleStatsBreakdown).Methods(http.MethodGet)
	api.HandleFunc("/stats/comparison", s.handleStatsComparison).Methods(http.MethodGet)

	api.HandleFunc("/voice/parse", s.handleVoiceParse).Methods(http.MethodPost)
	api.HandleFunc("/import/transactions", s.handleImportTransactions).Methods(http.MethodPost)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(clientIP)

	r.Use(tracer.Middleware)
	r.Use(headers.Middleware)
	r.Use(s.writeRateLimit)

	s.Server = http.Server{
		Addr:    addr,
		Handler: r,
	}
	return s
}

// writeRateLimit throttles mutating methods only; reads stay unmetered.
func (s *Server) writeRateLimit(next http.Handler) http.Handler {
	limited := s.limiter.Middleware(clientIP)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			limited.ServeHTTP(w, r)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// invalidateStats drops every cached aggregate. Called after any write that
// can change a derived figure.
func (s *Server) invalidateStats() {
	s.summaryCache.Purge()
	s.sharesCache.Purge()
	s.comparisonCache.Purge()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// Ready when storage answers.
	if _, err := s.store.GetSettings(r.Context()); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Shutdown stops background routines and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
