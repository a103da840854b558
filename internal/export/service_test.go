package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/m-yokoyama/reservemail/constants"
	"github.com/m-yokoyama/reservemail/internal/record"
	"github.com/m-yokoyama/reservemail/internal/repository"
)

type stubRepo struct {
	rows     []*repository.ArchivedRecord
	lastFrom *time.Time
	lastTo   *time.Time
}

func (s *stubRepo) Insert(context.Context, string, *record.ParsedRecord, string) (*repository.ArchivedRecord, error) {
	return nil, nil
}

func (s *stubRepo) SeenFingerprint(context.Context, string) (bool, error) { return false, nil }

func (s *stubRepo) ListBetween(_ context.Context, from, to *time.Time) ([]*repository.ArchivedRecord, error) {
	s.lastFrom, s.lastTo = from, to
	return s.rows, nil
}

func TestExportRecordsXLSX(t *testing.T) {
	received := time.Date(2025, 9, 3, 6, 40, 0, 0, time.UTC)
	repo := &stubRepo{rows: []*repository.ArchivedRecord{{
		CustomerName:  "向山　隆志",
		CustomerEmail: "k884maria@example.com",
		EventName:     "秋の住まいづくり相談会",
		DesiredDate:   "2025-09-08",
		LarkRecordID:  "rec42",
		Record: record.ParsedRecord{
			ReceivedAt: received,
			Status:     constants.StatusStored,
		},
	}}}
	svc := NewService(repo, nil, nil)

	out, err := svc.ExportRecordsXLSX(context.Background(), nil, nil)
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Reservations")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "お名前", rows[0][1])
	assert.Equal(t, "2025-09-03 06:40", rows[1][0])
	assert.Equal(t, "向山　隆志", rows[1][1])
	assert.Equal(t, "k884maria@example.com", rows[1][2])
	assert.Equal(t, "2025-09-08", rows[1][4])
	assert.Equal(t, string(constants.StatusStored), rows[1][5])
	assert.Equal(t, "rec42", rows[1][6])

	assert.Nil(t, repo.lastFrom)
	assert.Nil(t, repo.lastTo)
}

func TestExportRecordsXLSX_FromOnlyWindow(t *testing.T) {
	repo := &stubRepo{}
	fixed := time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)
	svc := NewService(repo, nil, func() time.Time { return fixed })

	from := time.Date(2025, 9, 1, 15, 30, 0, 0, time.UTC)
	_, err := svc.ExportRecordsXLSX(context.Background(), &from, nil)
	require.NoError(t, err)

	require.NotNil(t, repo.lastFrom)
	require.NotNil(t, repo.lastTo)
	assert.Equal(t, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), *repo.lastFrom)
	assert.Equal(t, time.Date(2025, 9, 10, 23, 59, 59, 0, time.UTC), *repo.lastTo)
}
