package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m-yokoyama/reservemail/constants"
	"github.com/m-yokoyama/reservemail/internal/common"
	"github.com/m-yokoyama/reservemail/internal/record"
)

// ArchivedRecord is one accepted reservation as stored in the archive.
type ArchivedRecord struct {
	ID            uuid.UUID
	Fingerprint   string
	CustomerName  string
	CustomerEmail string
	EventName     string
	DesiredDate   string
	Status        constants.RecordStatus
	LarkRecordID  string
	Record        record.ParsedRecord
	CreatedAt     time.Time
}

// RecordRepository persists accepted reservations and answers
// redelivery checks.
type RecordRepository interface {
	Insert(ctx context.Context, fingerprint string, rec *record.ParsedRecord, larkRecordID string) (*ArchivedRecord, error)
	SeenFingerprint(ctx context.Context, fingerprint string) (bool, error)
	ListBetween(ctx context.Context, from, to *time.Time) ([]*ArchivedRecord, error)
}

type recordRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewRecordRepository(db *sql.DB, logger *slog.Logger) RecordRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &recordRepository{db: db, logger: logger}
}

// Fingerprint derives the dedup key for a raw document body.
func Fingerprint(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}

func (r *recordRepository) Insert(ctx context.Context, fingerprint string, rec *record.ParsedRecord, larkRecordID string) (*ArchivedRecord, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	row := &ArchivedRecord{
		ID:            uuid.New(),
		Fingerprint:   fingerprint,
		CustomerName:  rec.CustomerName,
		CustomerEmail: rec.CustomerEmail,
		EventName:     rec.EventName,
		DesiredDate:   rec.DesiredDate,
		Status:        rec.Status,
		LarkRecordID:  larkRecordID,
		Record:        *rec,
		CreatedAt:     rec.CreatedAt,
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO processed_records
			(id, fingerprint, customer_name, customer_email, event_name, desired_date, status, lark_record_id, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID.String(), row.Fingerprint, row.CustomerName, row.CustomerEmail,
		row.EventName, row.DesiredDate, string(row.Status), row.LarkRecordID,
		string(payload), row.CreatedAt.UTC(),
	)
	if err != nil {
		r.logger.Error("archive insert failed", "fingerprint", fingerprint, "error", err)
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, common.NewAppError("ARCHIVE_DUPLICATE", "fingerprint already archived", common.ErrDuplicate)
		}
		return nil, common.NewAppError("ARCHIVE_WRITE", err.Error(), common.ErrDatabase)
	}

	r.logger.Info("archive.insert.ok", "id", row.ID, "customer", row.CustomerName)
	return row, nil
}

func (r *recordRepository) SeenFingerprint(ctx context.Context, fingerprint string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM processed_records WHERE fingerprint = ?`, fingerprint).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *recordRepository) ListBetween(ctx context.Context, from, to *time.Time) ([]*ArchivedRecord, error) {
	q := `SELECT id, fingerprint, customer_name, customer_email, event_name, desired_date, status, lark_record_id, payload, created_at
		FROM processed_records`
	var args []any
	var where []string
	if from != nil {
		where = append(where, "created_at >= ?")
		args = append(args, from.UTC())
	}
	if to != nil {
		where = append(where, "created_at <= ?")
		args = append(args, to.UTC())
	}
	for i, w := range where {
		if i == 0 {
			q += " WHERE " + w
		} else {
			q += " AND " + w
		}
	}
	q += " ORDER BY created_at"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		r.logger.Error("archive list failed", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*ArchivedRecord
	for rows.Next() {
		var (
			row     ArchivedRecord
			id      string
			status  string
			payload string
		)
		if err := rows.Scan(&id, &row.Fingerprint, &row.CustomerName, &row.CustomerEmail,
			&row.EventName, &row.DesiredDate, &status, &row.LarkRecordID, &payload, &row.CreatedAt); err != nil {
			return nil, err
		}
		row.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("corrupt archive row id %q: %w", id, err)
		}
		row.Status = constants.RecordStatus(status)
		if err := json.Unmarshal([]byte(payload), &row.Record); err != nil {
			return nil, fmt.Errorf("corrupt archive payload for %s: %w", id, err)
		}
		out = append(out, &row)
	}
	return out, rows.Err()
}
