// Package lark is the persistence collaborator: a client for the Lark
// open platform that writes parsed reservation records into a Base
// (bitable) table.
package lark

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/m-yokoyama/reservemail/internal/common"
	"github.com/m-yokoyama/reservemail/internal/record"
)

// tokenRefreshBuffer refreshes the tenant token this long before its
// reported expiry.
const tokenRefreshBuffer = 5 * time.Minute

// Client talks to the Lark open APIs. The tenant access token cache is
// an explicit field with an explicit expiry check, guarded by a mutex;
// the client is safe for concurrent use.
type Client struct {
	cfg    common.LarkConfig
	hc     *http.Client
	logger *slog.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewClient(cfg common.LarkConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:    cfg,
		hc:     &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type apiResponse struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// tenantAccessToken returns a cached token, refreshing it when it is
// within tokenRefreshBuffer of expiry.
func (c *Client) tenantAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-tokenRefreshBuffer)) {
		return c.accessToken, nil
	}

	body := map[string]string{
		"app_id":     c.cfg.AppID,
		"app_secret": c.cfg.AppSecret,
	}
	raw, err := c.post(ctx, c.endpoint("/auth/v3/tenant_access_token/internal"), "", body)
	if err != nil {
		return "", common.WrapError(err, "tenant access token")
	}

	var tok struct {
		Code              int    `json:"code"`
		Msg               string `json:"msg"`
		TenantAccessToken string `json:"tenant_access_token"`
		Expire            int    `json:"expire"`
	}
	if err := json.Unmarshal(raw, &tok); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tok.Code != 0 {
		return "", common.NewAppError("LARK_AUTH", tok.Msg, common.ErrUpstream)
	}

	c.accessToken = tok.TenantAccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.Expire) * time.Second)
	c.logger.Info("lark.token.refreshed", "expire_s", tok.Expire)
	return c.accessToken, nil
}

// CreateRecord writes one parsed reservation into the bitable table and
// returns the new record ID. The serialized record is validated against
// the record schema first: the column mapping downstream depends on the
// stable key set, and a drifting payload should fail here, not there.
func (c *Client) CreateRecord(ctx context.Context, rec *record.ParsedRecord) (string, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	if err := record.ValidateJSONAgainstSchema(record.BuildRecordJSONSchema(), b); err != nil {
		return "", common.NewAppError("RECORD_SHAPE", "record does not match payload schema", err)
	}

	token, err := c.tenantAccessToken(ctx)
	if err != nil {
		return "", err
	}

	url := c.endpoint(fmt.Sprintf("/bitable/v1/apps/%s/tables/%s/records", c.cfg.BaseToken, c.cfg.TableID))
	raw, err := c.post(ctx, url, token, map[string]any{"fields": tableFields(rec)})
	if err != nil {
		return "", common.WrapError(err, "create record")
	}

	var resp apiResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode create response: %w", err)
	}
	if resp.Code != 0 {
		return "", common.NewAppError("LARK_CREATE", resp.Msg, common.ErrUpstream)
	}

	var data struct {
		Record struct {
			RecordID string `json:"record_id"`
		} `json:"record"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return "", fmt.Errorf("decode created record: %w", err)
	}

	c.logger.Info("lark.create.ok",
		"record_id", data.Record.RecordID,
		"customer", rec.CustomerName,
		"event", rec.EventName,
	)
	return data.Record.RecordID, nil
}

// HasDuplicate reports whether a record with the same customer email and
// desired date already exists in the table.
func (c *Client) HasDuplicate(ctx context.Context, email, desiredDate string) (bool, error) {
	token, err := c.tenantAccessToken(ctx)
	if err != nil {
		return false, err
	}

	conditions := []map[string]any{
		{"field_name": fieldEmail, "operator": "is", "value": []string{email}},
	}
	if desiredDate != "" {
		conditions = append(conditions, map[string]any{
			"field_name": fieldDesiredDate, "operator": "is", "value": []string{desiredDate},
		})
	}

	url := c.endpoint(fmt.Sprintf("/bitable/v1/apps/%s/tables/%s/records/search", c.cfg.BaseToken, c.cfg.TableID))
	raw, err := c.post(ctx, url, token, map[string]any{
		"filter": map[string]any{"conjunction": "and", "conditions": conditions},
	})
	if err != nil {
		return false, common.WrapError(err, "search records")
	}

	var resp apiResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return false, fmt.Errorf("decode search response: %w", err)
	}
	if resp.Code != 0 {
		return false, common.NewAppError("LARK_SEARCH", resp.Msg, common.ErrUpstream)
	}

	var data struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return false, fmt.Errorf("decode search total: %w", err)
	}
	return data.Total > 0, nil
}

// TestConnection verifies credentials by fetching a tenant token.
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.tenantAccessToken(ctx)
	return err
}

func (c *Client) endpoint(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + path
}

func (c *Client) post(ctx context.Context, url, token string, body any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lark http error: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("lark response body close error", "error", cerr)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("lark status %d: %s", resp.StatusCode, raw)
	}
	return raw, nil
}
