package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/m-yokoyama/reservemail/constants"
	"github.com/m-yokoyama/reservemail/internal/common"
	"github.com/m-yokoyama/reservemail/internal/metrics"
	"github.com/m-yokoyama/reservemail/internal/parser"
	"github.com/m-yokoyama/reservemail/internal/repository"
)

type webhookPayload struct {
	Type      string        `json:"type"`
	Token     string        `json:"token"`
	Challenge string        `json:"challenge"`
	Event     *webhookEvent `json:"event"`
}

type webhookEvent struct {
	Content     string `json:"content"`
	MailContent string `json:"mail_content"`
	SenderEmail string `json:"sender_email"`
	From        string `json:"from"`
}

func (e *webhookEvent) body() string {
	if e == nil {
		return ""
	}
	if e.Content != "" {
		return e.Content
	}
	return e.MailContent
}

func (e *webhookEvent) sender() string {
	if e == nil {
		return ""
	}
	if e.SenderEmail != "" {
		return e.SenderEmail
	}
	return e.From
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil || len(body) == 0 {
		s.metrics.WebhookRejects.WithLabelValues("empty_body").Inc()
		s.writeError(w, http.StatusBadRequest, "empty request body")
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		s.metrics.WebhookRejects.WithLabelValues("bad_json").Inc()
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if tok := s.cfg.Server.VerificationToken; tok != "" && payload.Token != tok {
		s.metrics.WebhookRejects.WithLabelValues("bad_token").Inc()
		s.writeError(w, http.StatusUnauthorized, "verification token mismatch")
		return
	}

	switch payload.Type {
	case "url_verification":
		s.logger.Info("webhook.url_verification")
		s.writeJSON(w, http.StatusOK, map[string]string{"challenge": payload.Challenge})
		return
	case "event_callback":
	default:
		s.logger.Info("webhook.ignored", "type", payload.Type)
		s.writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ignored",
			"message": "webhook type " + payload.Type + " not handled",
		})
		return
	}

	content := payload.Event.body()
	if content == "" {
		s.metrics.WebhookRejects.WithLabelValues("no_content").Inc()
		s.writeError(w, http.StatusBadRequest, "no email content found")
		return
	}
	ctx := r.Context()
	s.logger.Info("webhook.mail_received",
		"request_id", common.RequestIDFromContext(ctx),
		"sender", payload.Event.sender(),
		"content_len", len(content),
	)
	fp := repository.Fingerprint(content)
	seen, err := s.repo.SeenFingerprint(ctx, fp)
	if err != nil {
		s.logger.Error("webhook.dedup_check.failed", "err", err)
		s.metrics.DocumentsTotal.WithLabelValues(metrics.ResultError).Inc()
		s.writeError(w, http.StatusInternalServerError, "archive lookup failed")
		return
	}
	if seen {
		s.logger.Info("webhook.redelivery", "fingerprint", fp[:12])
		s.metrics.DocumentsTotal.WithLabelValues(metrics.ResultDuplicate).Inc()
		s.writeJSON(w, http.StatusOK, map[string]string{
			"status":  "duplicate",
			"message": "document already processed",
		})
		return
	}

	parseStart := time.Now()
	rec, vr := s.parser.Parse(parser.RawDocument{Body: content, ReceivedAt: time.Now().UTC()})
	s.metrics.ParseDuration.Observe(time.Since(parseStart).Seconds())

	if !vr.Passes {
		s.logger.Warn("webhook.rejected", "errors", vr.Errors)
		s.metrics.DocumentsTotal.WithLabelValues(metrics.ResultRejected).Inc()
		s.writeJSON(w, http.StatusOK, map[string]any{
			"status":  "rejected",
			"message": "record failed validation",
			"errors":  vr.Errors,
		})
		return
	}

	dup, err := s.lark.HasDuplicate(ctx, rec.CustomerEmail, rec.DesiredDate)
	if err != nil {
		s.logger.Warn("webhook.duplicate_search.failed", "err", err)
		s.metrics.LarkRequests.WithLabelValues("search", "error").Inc()
		// Fall through: a failed search must not drop the mail.
	} else {
		s.metrics.LarkRequests.WithLabelValues("search", "ok").Inc()
		if dup {
			s.logger.Info("webhook.remote_duplicate",
				"customer_email", rec.CustomerEmail,
				"desired_date", rec.DesiredDate,
			)
			s.metrics.DocumentsTotal.WithLabelValues(metrics.ResultDuplicate).Inc()
			s.writeJSON(w, http.StatusOK, map[string]string{
				"status":  "duplicate",
				"message": "matching record already in base",
			})
			return
		}
	}

	recordID, err := s.lark.CreateRecord(ctx, &rec)
	if err != nil {
		s.logger.Error("webhook.create_record.failed", "err", err)
		s.metrics.LarkRequests.WithLabelValues("create", "error").Inc()
		s.metrics.DocumentsTotal.WithLabelValues(metrics.ResultError).Inc()
		s.writeError(w, http.StatusBadGateway, "failed to store record")
		return
	}
	s.metrics.LarkRequests.WithLabelValues("create", "ok").Inc()

	rec.Status = constants.StatusStored
	if _, err := s.repo.Insert(ctx, fp, &rec, recordID); err != nil {
		// The record is already in the base; archiving is best effort.
		s.logger.Error("webhook.archive.failed", "err", err, "record_id", recordID)
	} else {
		s.metrics.ArchivedRecords.Inc()
	}

	s.metrics.DocumentsTotal.WithLabelValues(metrics.ResultStored).Inc()
	s.logger.Info("webhook.stored",
		"customer_name", rec.CustomerName,
		"record_id", recordID,
	)
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":        "success",
		"message":       "email processed and record stored",
		"customer_name": rec.CustomerName,
		"record_id":     recordID,
	})
}
