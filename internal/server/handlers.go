package server

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m-yokoyama/reservemail/internal/parser"
)

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"service":      "reservemail",
		"status":       "running",
		"version":      serviceVersion,
		"environment":  s.cfg.Server.Environment,
		"webhook_path": s.cfg.Server.WebhookPath,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	larkOK := true
	larkErr := ""
	if err := s.lark.TestConnection(ctx); err != nil {
		larkOK = false
		larkErr = err.Error()
	}

	dbOK := true
	dbErr := ""
	if err := s.db.PingContext(ctx); err != nil {
		dbOK = false
		dbErr = err.Error()
	}

	status := "healthy"
	code := http.StatusOK
	switch {
	case !dbOK:
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	case !larkOK:
		// The webhook can still accept and archive mail.
		status = "degraded"
	}

	s.writeJSON(w, code, map[string]any{
		"status":          status,
		"lark_connection": larkOK,
		"lark_error":      larkErr,
		"archive_ok":      dbOK,
		"archive_error":   dbErr,
		"environment":     s.cfg.Server.Environment,
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}

// handleTestParse parses a raw mail body without touching the base or
// the archive.
func (s *Server) handleTestParse(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil || strings.TrimSpace(string(body)) == "" {
		s.writeError(w, http.StatusBadRequest, "no email content provided")
		return
	}

	rec, vr := s.parser.Parse(parser.RawDocument{
		Body:       string(body),
		ReceivedAt: time.Now().UTC(),
	})
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"record":     rec,
		"validation": vr,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var fromPtr, toPtr *time.Time
	if fd := strings.TrimSpace(r.URL.Query().Get("from")); fd != "" {
		t, err := time.Parse("2006-01-02", fd)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
			return
		}
		fromPtr = &t
	}
	if td := strings.TrimSpace(r.URL.Query().Get("to")); td != "" {
		t, err := time.Parse("2006-01-02", td)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
			return
		}
		toPtr = &t
	}

	xlsx, err := s.export.ExportRecordsXLSX(r.Context(), fromPtr, toPtr)
	if err != nil {
		s.logger.Error("export.xlsx.failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="reservations.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(xlsx)
}
