// Package server wires the HTTP surface: the Lark mail webhook, health
// and test endpoints, and the archive export.
package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/m-yokoyama/reservemail/internal/common"
	"github.com/m-yokoyama/reservemail/internal/export"
	"github.com/m-yokoyama/reservemail/internal/metrics"
	"github.com/m-yokoyama/reservemail/internal/parser"
	"github.com/m-yokoyama/reservemail/internal/record"
	"github.com/m-yokoyama/reservemail/internal/repository"
)

const serviceVersion = "1.0.0"

// LarkGateway is the slice of the bitable client the handlers need.
type LarkGateway interface {
	CreateRecord(ctx context.Context, rec *record.ParsedRecord) (string, error)
	HasDuplicate(ctx context.Context, email, desiredDate string) (bool, error)
	TestConnection(ctx context.Context) error
}

type Server struct {
	cfg     *common.Config
	parser  *parser.Parser
	lark    LarkGateway
	repo    repository.RecordRepository
	export  *export.Service
	metrics *metrics.Metrics
	db      *sql.DB
	logger  *slog.Logger
}

func NewServer(cfg *common.Config, p *parser.Parser, lark LarkGateway, repo repository.RecordRepository, exp *export.Service, m *metrics.Metrics, db *sql.DB, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:     cfg,
		parser:  p,
		lark:    lark,
		repo:    repo,
		export:  exp,
		metrics: m,
		db:      db,
		logger:  logger,
	}
}

// Router builds the chi router. metricsHandler, when non-nil, is
// mounted at /metrics.
func (s *Server) Router(metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(propagateRequestID)

	r.Get("/", s.handleInfo)
	r.Get("/health", s.handleHealth)
	r.Post(s.cfg.Server.WebhookPath, s.handleWebhook)
	r.Post("/test/parse-email", s.handleTestParse)
	r.Get("/export.xlsx", s.handleExport)
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}
	return r
}

// propagateRequestID copies chi's request ID into the context key the
// rest of the codebase reads it from.
func propagateRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			r = r.WithContext(common.WithRequestID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("server.write_json.failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"status": "error", "message": msg})
}
