package record

import (
	"fmt"
	"regexp"
)

var (
	// General local@domain.tld shape; unicode local parts are out of scope.
	reEmail = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

	// Japanese landline/mobile grouping: leading 0, 1-4 digits, optional
	// separator, 1-4 digits, optional separator, 3-4 digits. A bare
	// 10-12 digit run starting with 0 is also accepted.
	rePhoneGrouped = regexp.MustCompile(`^0\d{1,4}[-\s]?\d{1,4}[-\s]?\d{3,4}$`)
	rePhoneBare    = regexp.MustCompile(`^0\d{9,11}$`)
)

// Validate checks required fields and field-level formats. All
// violations are collected before returning; the order of Errors is the
// order of the checks below.
func Validate(r *ParsedRecord) ValidationResult {
	var errs []string

	if r.CustomerName == "" {
		errs = append(errs, "customer name is required")
	}
	if r.CustomerEmail == "" {
		errs = append(errs, "customer email is required")
	} else if !reEmail.MatchString(r.CustomerEmail) {
		errs = append(errs, fmt.Sprintf("customer email %q is not a valid address", r.CustomerEmail))
	}
	if r.EventName == "" {
		errs = append(errs, "event name is required")
	}
	if r.CustomerPhone != "" && !validPhone(r.CustomerPhone) {
		errs = append(errs, fmt.Sprintf("customer phone %q is not a recognizable Japanese number", r.CustomerPhone))
	}
	if r.CustomerAge != nil && (*r.CustomerAge <= 0 || *r.CustomerAge >= 120) {
		errs = append(errs, fmt.Sprintf("customer age %d is out of range", *r.CustomerAge))
	}
	if r.MonthlyRent != nil && *r.MonthlyRent < 0 {
		errs = append(errs, fmt.Sprintf("monthly rent %d must be non-negative", *r.MonthlyRent))
	}
	if r.MonthlyPayment != nil && *r.MonthlyPayment < 0 {
		errs = append(errs, fmt.Sprintf("monthly payment %d must be non-negative", *r.MonthlyPayment))
	}

	return ValidationResult{Passes: len(errs) == 0, Errors: errs}
}

func validPhone(s string) bool {
	return rePhoneGrouped.MatchString(s) || rePhoneBare.MatchString(s)
}
