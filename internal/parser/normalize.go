package parser

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	reDateRange  = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日[^-−ー〜~]*[-−ー〜~][^0-9]*(\d{1,2})月(\d{1,2})日`)
	reSingleDate = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`)
	reDigits     = regexp.MustCompile(`\d+`)
	rePhoneRun   = regexp.MustCompile(`^0\d{10}$`)
)

// ParseEventDateRange recognizes "YYYY年M月D日 … - … M月D日" (the year
// applies to both endpoints) and returns both bounds as zero-padded ISO
// dates. Both are "" when the grammar does not match.
func ParseEventDateRange(text string) (start, end string) {
	m := reDateRange.FindStringSubmatch(text)
	if m == nil {
		return "", ""
	}
	year := m[1]
	start = isoDate(year, m[2], m[3])
	end = isoDate(year, m[4], m[5])
	return start, end
}

// ParseSingleDate recognizes "YYYY年M月D日" and returns the ISO date, or
// "" when the grammar does not match.
func ParseSingleDate(text string) string {
	m := reSingleDate.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return isoDate(m[1], m[2], m[3])
}

// ParseAge extracts the first run of digits ("23歳" -> 23). Returns nil
// when no digits are present. Range sanity is a validation concern.
func ParseAge(text string) *int {
	return firstInt(text)
}

// ParseAmount extracts the first run of digits with no unit conversion:
// "9万円" yields 9, not 90000. The missing 万-scaling mirrors the manual
// correction step in the downstream business process and is preserved
// deliberately.
func ParseAmount(text string) *int {
	return firstInt(text)
}

// NormalizePhone reformats a bare 11-digit mobile run into the 3-4-4
// grouping ("09092734235" -> "090-9273-4235"). Anything else is
// returned as-is: landline area codes vary from two to five digits, so
// a 10-digit run has no single correct grouping.
func NormalizePhone(text string) string {
	if !rePhoneRun.MatchString(text) {
		return text
	}
	return text[:3] + "-" + text[3:7] + "-" + text[7:]
}

func isoDate(year, month, day string) string {
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	return fmt.Sprintf("%s-%02d-%02d", year, m, d)
}

func firstInt(text string) *int {
	m := reDigits.FindString(text)
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		// Digit run too long to fit an int; treat as absent.
		return nil
	}
	return &n
}
