package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/m-yokoyama/reservemail/internal/repository"
)

// Service produces XLSX bytes for archive exports.
type Service struct {
	repo   repository.RecordRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo repository.RecordRepository, logger *slog.Logger, now func() time.Time) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, logger: logger, now: now}
}

// ExportRecordsXLSX returns an XLSX workbook (as bytes) for the given date window.
// If only from is provided -> from..today (inclusive).
// If only to is provided   -> beginning..to (inclusive).
// If neither is provided   -> the whole archive.
func (s *Service) ExportRecordsXLSX(ctx context.Context, from, to *time.Time) ([]byte, error) {
	start := s.now()

	// Normalize dates (date-only, UTC)
	var fromDate, toDate *time.Time
	if from != nil {
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		fromDate = &f
	}
	if to != nil {
		t := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		today := s.now().UTC()
		t := time.Date(today.Year(), today.Month(), today.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}

	rows, err := s.repo.ListBetween(ctx, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("query archive: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Reservations"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"受信日時",
		"お名前",
		"メールアドレス",
		"イベント名",
		"ご希望日",
		"ステータス",
		"Bitableレコード",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	rowNum := 2
	for _, r := range rows {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, rowNum)
			_ = f.SetCellValue(sheet, cell, v)
		}

		if !r.Record.ReceivedAt.IsZero() {
			write(1, r.Record.ReceivedAt.Format("2006-01-02 15:04"))
		} else {
			write(1, "")
		}
		write(2, r.CustomerName)
		write(3, r.CustomerEmail)
		write(4, r.EventName)
		write(5, r.DesiredDate)
		write(6, string(r.Record.Status))
		write(7, r.LarkRecordID)

		rowNum++
	}

	_ = f.SetColWidth(sheet, "A", "A", 18) // received
	_ = f.SetColWidth(sheet, "B", "B", 20) // name
	_ = f.SetColWidth(sheet, "C", "C", 30) // email
	_ = f.SetColWidth(sheet, "D", "D", 36) // event
	_ = f.SetColWidth(sheet, "E", "F", 14) // desired date, status
	_ = f.SetColWidth(sheet, "G", "G", 24) // bitable id

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
