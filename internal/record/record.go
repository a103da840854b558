// Package record defines the flat reservation record assembled from a
// notification document, its validation rules, and the JSON shape under
// which it travels to the persistence collaborator.
package record

import (
	"time"

	"github.com/m-yokoyama/reservemail/constants"
)

// ParsedRecord is the assembled output of the parsing pipeline. Every
// field is optional except CustomerName, CustomerEmail and EventName,
// which are required by validation. Numeric fields are nil when the
// source text carried no usable value. JSON keys are stable: the
// downstream table mapping depends on them.
type ParsedRecord struct {
	// System fields. ReceivedAt is the capture timestamp supplied by the
	// caller; CreatedAt comes from the injected clock.
	ReceivedAt time.Time              `json:"received_at"`
	CreatedAt  time.Time              `json:"created_at"`
	Status     constants.RecordStatus `json:"status"`

	// Event fields.
	EventName      string `json:"event_name"`
	EventStartDate string `json:"event_start_date,omitempty"` // YYYY-MM-DD
	EventEndDate   string `json:"event_end_date,omitempty"`   // YYYY-MM-DD
	EventTime      string `json:"event_time,omitempty"`
	EventVenue     string `json:"event_venue,omitempty"`
	EventURL       string `json:"event_url,omitempty"`

	// Reservation fields.
	DesiredDate string `json:"desired_date,omitempty"` // YYYY-MM-DD
	DesiredTime string `json:"desired_time,omitempty"`

	// Customer fields.
	CustomerName     string `json:"customer_name"`
	CustomerFurigana string `json:"customer_furigana,omitempty"`
	CustomerEmail    string `json:"customer_email"`
	CustomerPhone    string `json:"customer_phone,omitempty"`
	CustomerAge      *int   `json:"customer_age,omitempty"`
	MonthlyRent      *int   `json:"monthly_rent,omitempty"`
	MonthlyPayment   *int   `json:"monthly_payment,omitempty"`
	PostalCode       string `json:"postal_code,omitempty"`
	Address          string `json:"address,omitempty"`
	Comments         string `json:"comments,omitempty"`
	LeadSource       string `json:"lead_source,omitempty"`

	// Survey fields.
	HousingType         string `json:"housing_type,omitempty"`
	ConsiderationPeriod string `json:"consideration_period,omitempty"`

	// Store fields.
	StoreName     string `json:"store_name,omitempty"`
	StoreAddress  string `json:"store_address,omitempty"`
	BusinessHours string `json:"business_hours,omitempty"`
	ClosedDays    string `json:"closed_days,omitempty"`
}

// ValidationResult reports the outcome of validating a ParsedRecord.
// It is always returned as data, never as an error.
type ValidationResult struct {
	Passes bool     `json:"passes"`
	Errors []string `json:"errors,omitempty"`
}
