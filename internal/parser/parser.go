package parser

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/m-yokoyama/reservemail/constants"
	"github.com/m-yokoyama/reservemail/internal/record"
)

// RawDocument is the opaque notification text plus the timestamp at
// which the caller captured it. The capture timestamp is supplied by the
// transport, never read out of the body.
type RawDocument struct {
	Body       string
	ReceivedAt time.Time
}

// Parser assembles ParsedRecords from raw documents. The clock and the
// initial record status are injected so the output is a pure function of
// its inputs; nothing here defaults to time.Now or a hidden literal.
type Parser struct {
	logger        *slog.Logger
	now           func() time.Time
	initialStatus constants.RecordStatus
}

func New(logger *slog.Logger, now func() time.Time, initialStatus constants.RecordStatus) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger, now: now, initialStatus: initialStatus}
}

// Parse runs the full pipeline on one document: sections, fields, survey
// answers, normalization, assembly, validation. It never returns an
// error: extraction misses become empty/absent fields, validation
// failures are reported in the ValidationResult, and any unexpected
// fault inside the pipeline is recovered here and reported as a single
// failed-validation entry. A record whose result has Passes=false must
// not be persisted.
func (p *Parser) Parse(doc RawDocument) (rec record.ParsedRecord, res record.ValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("parse.panic", "error", r)
			rec = record.ParsedRecord{}
			res = record.ValidationResult{
				Passes: false,
				Errors: []string{fmt.Sprintf("internal parse failure: %v", r)},
			}
		}
	}()

	rec = p.assemble(doc)
	res = record.Validate(&rec)

	p.logger.Info("parse.done",
		"customer", rec.CustomerName,
		"event", rec.EventName,
		"desired_date", rec.DesiredDate,
		"passes", res.Passes,
		"violations", len(res.Errors),
	)
	return rec, res
}

func (p *Parser) assemble(doc RawDocument) record.ParsedRecord {
	event := ExtractSection(doc.Body, constants.SectionEvent)
	reservation := ExtractSection(doc.Body, constants.SectionReservation)
	customer := ExtractSection(doc.Body, constants.SectionCustomer)
	survey := ExtractSection(doc.Body, constants.SectionSurvey)
	store := ExtractSection(doc.Body, constants.SectionStore)

	rec := record.ParsedRecord{
		ReceivedAt: doc.ReceivedAt,
		CreatedAt:  p.now(),
		Status:     p.initialStatus,

		EventName:  ExtractField(event, constants.LabelEventName),
		EventTime:  ExtractField(event, constants.LabelEventTime),
		EventVenue: ExtractField(event, constants.LabelEventVenue),
		EventURL:   ExtractField(event, constants.LabelEventURL),

		DesiredTime: ExtractField(reservation, constants.LabelDesiredTime),

		CustomerName:     ExtractField(customer, constants.LabelCustomerName),
		CustomerFurigana: ExtractField(customer, constants.LabelFurigana),
		CustomerEmail:    ExtractField(customer, constants.LabelEmail),
		CustomerPhone:    ExtractField(customer, constants.LabelPhone),
		PostalCode:       ExtractField(customer, constants.LabelPostalCode),
		Address:          ExtractField(customer, constants.LabelAddress),
		Comments:         ExtractField(customer, constants.LabelComments),
		LeadSource:       ExtractField(customer, constants.LabelLeadSource),

		HousingType:         ExtractAnswer(survey, constants.QuestionHousingType),
		ConsiderationPeriod: ExtractAnswer(survey, constants.QuestionConsideration),

		StoreName:     ExtractField(store, constants.LabelStoreName),
		StoreAddress:  ExtractField(store, constants.LabelStoreAddress),
		BusinessHours: ExtractField(store, constants.LabelBusinessHours),
		ClosedDays:    ExtractField(store, constants.LabelClosedDays),
	}

	rec.EventStartDate, rec.EventEndDate = ParseEventDateRange(ExtractField(event, constants.LabelEventDate))
	rec.DesiredDate = ParseSingleDate(ExtractField(reservation, constants.LabelDesiredDate))
	rec.CustomerAge = ParseAge(ExtractField(customer, constants.LabelAge))
	rec.MonthlyRent = ParseAmount(ExtractField(customer, constants.LabelMonthlyRent))
	rec.MonthlyPayment = ParseAmount(ExtractField(customer, constants.LabelMonthlyPay))
	rec.CustomerPhone = NormalizePhone(rec.CustomerPhone)

	return rec
}
