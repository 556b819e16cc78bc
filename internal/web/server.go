package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"vantry/internal/metrics"
	"vantry/internal/models"
	"vantry/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

//go:embed templates/*
var templateFS embed.FS

const sessionCookie = "vantry_session"

// Server wires the web UI to the services. Templates are parsed once at
// startup.
type Server struct {
	stock     *service.StockService
	orders    *service.OrderService
	drafts    *service.DraftService
	catalog   models.Catalog
	templates *template.Template
	logger    *zerolog.Logger
}

func New(stock *service.StockService, orders *service.OrderService, drafts *service.DraftService, catalog models.Catalog, logger *zerolog.Logger) (*Server, error) {
	funcs := template.FuncMap{
		"statusClass": statusClass,
		"statusLabel": func(s models.Status) string { return s.Label() },
	}
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Server{
		stock:     stock,
		orders:    orders,
		drafts:    drafts,
		catalog:   catalog,
		templates: tmpl,
		logger:    logger,
	}, nil
}

// Handler returns the mux with every UI route.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", s.instrument("dashboard", s.dashboardHandler()))
	mux.Handle("/update", s.instrument("update", s.updateHandler()))
	mux.Handle("/add", s.instrument("add", s.addHandler()))
	mux.Handle("/order", s.instrument("order", s.orderHandler()))
	mux.Handle("/order/compose", s.instrument("order_compose", s.composeHandler()))
	mux.Handle("/order/view", s.instrument("order_view", s.orderViewHandler()))
	mux.Handle("/export", s.instrument("export", s.exportHandler()))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})
	return mux
}

// instrument counts requests and logs them per endpoint.
func (s *Server) instrument(endpoint string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.IncHTTP(endpoint)
		s.logger.Debug().Str("endpoint", endpoint).Str("method", r.Method).Str("path", r.URL.Path).Msg("http request")
		next.ServeHTTP(w, r)
	})
}

// sessionID returns the session cookie value, minting one if absent.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   models.DefaultDraftTTL,
	})
	return id
}

func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error().Err(err).Str("template", name).Msg("failed to render template")
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func statusClass(s models.Status) string {
	switch s {
	case models.StatusOutOfStock:
		return "status-out"
	case models.StatusLow:
		return "status-low"
	default:
		return "status-good"
	}
}
