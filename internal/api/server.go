package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"vantry/internal/config"
	"vantry/internal/database"
	"vantry/internal/metrics"
	"vantry/internal/models"
	"vantry/internal/service"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Server exposes the read-only inventory API plus the bulk update
// endpoint, on its own port so the UI and integrations never share a
// listener.
type Server struct {
	cfg    config.APIConfig
	stock  *service.StockService
	db     *database.DB
	logger *zerolog.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter

	httpServer *http.Server
}

func NewServer(cfg config.APIConfig, stock *service.StockService, db *database.DB, logger *zerolog.Logger) *Server {
	return &Server{
		cfg:      cfg,
		stock:    stock,
		db:       db,
		logger:   logger,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Handler builds the API mux with logging, CORS and auth applied to the
// /api/v1 routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/api/v1/items", s.protect("read", http.HandlerFunc(s.handleItems)))
	mux.Handle("/api/v1/dashboard", s.protect("read", http.HandlerFunc(s.handleDashboard)))
	mux.Handle("/api/v1/items/bulk", s.protect("write", http.HandlerFunc(s.handleBulkUpdate)))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := s.db.Ping(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ready")
	})
	mux.Handle("/metrics", metrics.Handler())

	return s.loggingMiddleware(s.corsMiddleware(mux))
}

// Start runs the API listener until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Int("port", s.cfg.Port).Msg("api server started")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("api server failed: %w", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("api request")
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+s.cfg.Auth.HeaderAPIKey)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// protect enforces the API key, its permission set and the per-key
// request budget.
func (s *Server) protect(permission string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.cfg.Auth.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(s.cfg.Auth.HeaderAPIKey)
		client, ok := s.findClient(key)
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid api key")
			return
		}
		if !hasPermission(client, permission) {
			writeError(w, http.StatusForbidden, fmt.Sprintf("missing %q permission", permission))
			return
		}
		if !s.limiter(client.Name).Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) findClient(key string) (config.APIClientKey, bool) {
	if key == "" {
		return config.APIClientKey{}, false
	}
	for _, client := range s.cfg.Auth.APIKeys {
		if client.Key == key {
			return client, true
		}
	}
	return config.APIClientKey{}, false
}

func hasPermission(client config.APIClientKey, permission string) bool {
	for _, p := range client.Permissions {
		if p == permission || p == "*" {
			return true
		}
	}
	return false
}

func (s *Server) limiter(name string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.limiters[name]
	if !ok {
		l = rate.NewLimiter(rate.Limit(s.cfg.RateLimit.RPS), s.cfg.RateLimit.Burst)
		s.limiters[name] = l
	}
	return l
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	items, err := s.stock.ListItems(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list items")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	stocked := make([]models.StockedItem, 0, len(items))
	for _, item := range items {
		stocked = append(stocked, models.StockedItem{Item: item, StockStatus: item.Status()})
	}
	writeJSON(w, http.StatusOK, stocked)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	dash, err := s.stock.GetDashboard(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to build dashboard")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (s *Server) handleBulkUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var rows []service.StockUpdateRow
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	result, err := s.stock.BulkUpdate(r.Context(), rows)
	if err != nil {
		s.logger.Error().Err(err).Msg("bulk update failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
