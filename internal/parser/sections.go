// Package parser implements the extraction and normalization core:
// splitting a notification document into banner-delimited sections,
// resolving label/value lines and survey answers, normalizing dates and
// numbers, and assembling the typed reservation record.
//
// Every function here is pure. Absence is never an error: a missing
// section, label or answer resolves to the empty string and a malformed
// date or number to its nil/empty sentinel.
package parser

import (
	"regexp"
	"strings"
)

var (
	// reBanner matches a section banner: a run of 8+ '=' characters.
	reBanner = regexp.MustCompile(`={8,}`)

	// reHeaderRule matches a banner separated from the section header
	// only by whitespace. The sender underlines each header with a
	// banner; that rule is decoration, not the section boundary.
	reHeaderRule = regexp.MustCompile(`^\s*={8,}`)
)

// ExtractSection returns the text from the first occurrence of
// sectionName up to (excluding) the next banner delimiter, or to the end
// of the document if no banner follows. A banner directly under the
// header is skipped as part of the header itself. The header match is
// exact and case-sensitive; only the first occurrence is honored.
// Returns "" when the section is absent.
func ExtractSection(document, sectionName string) string {
	start := strings.Index(document, sectionName)
	if start < 0 {
		return ""
	}
	rest := document[start:]
	offset := len(sectionName)
	if loc := reHeaderRule.FindStringIndex(rest[offset:]); loc != nil {
		offset += loc[1]
	}
	if loc := reBanner.FindStringIndex(rest[offset:]); loc != nil {
		return rest[:offset+loc[0]]
	}
	return rest
}
