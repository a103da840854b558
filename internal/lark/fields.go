package lark

import (
	"time"

	"github.com/m-yokoyama/reservemail/internal/record"
)

// Bitable column names, matching the target table exactly.
const (
	fieldEmail       = "メールアドレス"
	fieldDesiredDate = "ご希望日"
)

// tableFields maps a ParsedRecord onto the Japanese column names of the
// target table. Empty optionals are omitted so the table keeps its cell
// defaults.
func tableFields(rec *record.ParsedRecord) map[string]any {
	fields := map[string]any{
		"お名前":      rec.CustomerName,
		fieldEmail: rec.CustomerEmail,
		"イベント名":    rec.EventName,
		"ステータス":    string(rec.Status),
		"受信日時":     rec.ReceivedAt.Format(time.RFC3339),
		"処理日時":     rec.CreatedAt.Format("2006-01-02 15:04:05"),
	}

	put := func(col, v string) {
		if v != "" {
			fields[col] = v
		}
	}
	put("開催日", joinRange(rec.EventStartDate, rec.EventEndDate))
	put("時間", rec.EventTime)
	put("会場", rec.EventVenue)
	put("URL", rec.EventURL)
	put(fieldDesiredDate, rec.DesiredDate)
	put("ご希望時間", rec.DesiredTime)
	put("フリガナ", rec.CustomerFurigana)
	put("電話番号", rec.CustomerPhone)
	put("郵便番号", rec.PostalCode)
	put("ご住所", rec.Address)
	put("ご意見・ご質問等", rec.Comments)
	put("ご予約のきっかけ", rec.LeadSource)
	put("現在のお住まい", rec.HousingType)
	put("ご検討時期", rec.ConsiderationPeriod)
	put("展示場名", rec.StoreName)
	put("店舗所在地", rec.StoreAddress)
	put("営業時間", rec.BusinessHours)
	put("定休日", rec.ClosedDays)

	if rec.CustomerAge != nil {
		fields["年齢"] = *rec.CustomerAge
	}
	if rec.MonthlyRent != nil {
		fields["毎月の家賃"] = *rec.MonthlyRent
	}
	if rec.MonthlyPayment != nil {
		fields["月々の返済額"] = *rec.MonthlyPayment
	}
	return fields
}

func joinRange(start, end string) string {
	switch {
	case start == "":
		return ""
	case end == "" || end == start:
		return start
	default:
		return start + " - " + end
	}
}
