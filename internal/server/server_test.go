package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m-yokoyama/reservemail/constants"
	"github.com/m-yokoyama/reservemail/internal/common"
	"github.com/m-yokoyama/reservemail/internal/export"
	"github.com/m-yokoyama/reservemail/internal/metrics"
	"github.com/m-yokoyama/reservemail/internal/parser"
	"github.com/m-yokoyama/reservemail/internal/record"
	"github.com/m-yokoyama/reservemail/internal/repository"
)

const sampleMail = `========================================
イベント情報
========================================
イベント名 : 秋の住まいづくり相談会
開催日     : 2025年9月1日(月) - 9月15日(月)
========================================
ご予約情報
========================================
ご希望日   ： 2025年9月8日
ご希望時間 ： 9:30～11:00
========================================
お客様情報
========================================
お名前         : 向山　隆志
メールアドレス : k884maria@example.com
電話番号       : 09092734235
年齢           : 23歳
`

type fakeLark struct {
	createdWith *record.ParsedRecord
	createErr   error
	duplicate   bool
	connErr     error
}

func (f *fakeLark) CreateRecord(_ context.Context, rec *record.ParsedRecord) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.createdWith = rec
	return "rec99", nil
}

func (f *fakeLark) HasDuplicate(context.Context, string, string) (bool, error) {
	return f.duplicate, nil
}

func (f *fakeLark) TestConnection(context.Context) error { return f.connErr }

type testEnv struct {
	lark *fakeLark
	repo repository.RecordRepository
	mux  http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := repository.Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &common.Config{}
	cfg.Server.WebhookPath = "/webhook/lark-mail"
	cfg.Server.VerificationToken = "tok-1"
	cfg.Server.Environment = "test"

	lk := &fakeLark{}
	repo := repository.NewRecordRepository(db, nil)
	p := parser.New(nil, func() time.Time {
		return time.Date(2025, 9, 3, 6, 40, 0, 0, time.UTC)
	}, constants.StatusNew)
	m := metrics.New(prometheus.NewRegistry())
	exp := export.NewService(repo, nil, nil)

	srv := NewServer(cfg, p, lk, repo, exp, m, db, nil)
	return &testEnv{lark: lk, repo: repo, mux: srv.Router(nil)}
}

func postWebhook(t *testing.T, env *testEnv, payload map[string]any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/webhook/lark-mail", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	env.mux.ServeHTTP(rr, req)

	var out map[string]any
	if rr.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	}
	return rr, out
}

func TestWebhook_URLVerification(t *testing.T) {
	env := newTestEnv(t)
	rr, out := postWebhook(t, env, map[string]any{
		"type":      "url_verification",
		"token":     "tok-1",
		"challenge": "abc123",
	})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "abc123", out["challenge"])
}

func TestWebhook_TokenMismatch(t *testing.T) {
	env := newTestEnv(t)
	rr, _ := postWebhook(t, env, map[string]any{
		"type":      "url_verification",
		"token":     "wrong",
		"challenge": "abc123",
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestWebhook_IgnoredType(t *testing.T) {
	env := newTestEnv(t)
	rr, out := postWebhook(t, env, map[string]any{
		"type":  "mail_read",
		"token": "tok-1",
	})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ignored", out["status"])
}

func TestWebhook_StoresValidMail(t *testing.T) {
	env := newTestEnv(t)
	rr, out := postWebhook(t, env, map[string]any{
		"type":  "event_callback",
		"token": "tok-1",
		"event": map[string]any{"content": sampleMail, "sender_email": "mail@example.com"},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "success", out["status"])
	assert.Equal(t, "向山　隆志", out["customer_name"])
	assert.Equal(t, "rec99", out["record_id"])

	require.NotNil(t, env.lark.createdWith)
	assert.Equal(t, "k884maria@example.com", env.lark.createdWith.CustomerEmail)

	seen, err := env.repo.SeenFingerprint(context.Background(), repository.Fingerprint(sampleMail))
	require.NoError(t, err)
	assert.True(t, seen)

	rows, err := env.repo.ListBetween(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, constants.StatusStored, rows[0].Status)
	assert.Equal(t, "rec99", rows[0].LarkRecordID)
}

func TestWebhook_RedeliveryIsDuplicate(t *testing.T) {
	env := newTestEnv(t)
	payload := map[string]any{
		"type":  "event_callback",
		"token": "tok-1",
		"event": map[string]any{"content": sampleMail},
	}
	rr, _ := postWebhook(t, env, payload)
	require.Equal(t, http.StatusOK, rr.Code)

	rr, out := postWebhook(t, env, payload)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "duplicate", out["status"])

	rows, err := env.repo.ListBetween(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestWebhook_RemoteDuplicateSkipsCreate(t *testing.T) {
	env := newTestEnv(t)
	env.lark.duplicate = true

	rr, out := postWebhook(t, env, map[string]any{
		"type":  "event_callback",
		"token": "tok-1",
		"event": map[string]any{"content": sampleMail},
	})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "duplicate", out["status"])
	assert.Nil(t, env.lark.createdWith)
}

func TestWebhook_InvalidMailRejectedAndNotPersisted(t *testing.T) {
	env := newTestEnv(t)
	rr, out := postWebhook(t, env, map[string]any{
		"type":  "event_callback",
		"token": "tok-1",
		"event": map[string]any{"content": "件名だけで本文なし"},
	})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "rejected", out["status"])
	assert.NotEmpty(t, out["errors"])
	assert.Nil(t, env.lark.createdWith)

	rows, err := env.repo.ListBetween(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestWebhook_CreateFailure(t *testing.T) {
	env := newTestEnv(t)
	env.lark.createErr = errors.New("bitable down")

	rr, out := postWebhook(t, env, map[string]any{
		"type":  "event_callback",
		"token": "tok-1",
		"event": map[string]any{"content": sampleMail},
	})
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, "error", out["status"])

	seen, err := env.repo.SeenFingerprint(context.Background(), repository.Fingerprint(sampleMail))
	require.NoError(t, err)
	assert.False(t, seen, "failed deliveries stay eligible for retry")
}

func TestTestParseEndpoint(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/test/parse-email", bytes.NewReader([]byte(sampleMail)))
	rr := httptest.NewRecorder()
	env.mux.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var out struct {
		Status     string                  `json:"status"`
		Record     record.ParsedRecord     `json:"record"`
		Validation record.ValidationResult `json:"validation"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "success", out.Status)
	assert.True(t, out.Validation.Passes)
	assert.Equal(t, "向山　隆志", out.Record.CustomerName)
	assert.Equal(t, "2025-09-08", out.Record.DesiredDate)

	rows, err := env.repo.ListBetween(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, rows, "test endpoint never archives")
}

func TestHealth_DegradedWhenLarkDown(t *testing.T) {
	env := newTestEnv(t)
	env.lark.connErr = errors.New("token refused")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	env.mux.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "degraded", out["status"])
	assert.Equal(t, false, out["lark_connection"])
	assert.Equal(t, true, out["archive_ok"])
}

func TestHealth_Healthy(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	env.mux.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "healthy", out["status"])
}

func TestExportEndpoint(t *testing.T) {
	env := newTestEnv(t)
	rr, _ := postWebhook(t, env, map[string]any{
		"type":  "event_callback",
		"token": "tok-1",
		"event": map[string]any{"content": sampleMail},
	})
	require.Equal(t, http.StatusOK, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/export.xlsx", nil)
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.NotZero(t, rec.Body.Len())
}

func TestExportEndpoint_BadDate(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/export.xlsx?from=09-01-2025", nil)
	rr := httptest.NewRecorder()
	env.mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
