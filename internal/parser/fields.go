package parser

import (
	"regexp"
	"strings"
)

// ExtractField resolves the first "label：value" (or "label: value") line
// in sectionText and returns the trimmed value, or "" when the label is
// absent. The value never crosses a line boundary. The label is escaped
// before pattern construction: several recognized labels carry regex
// metacharacters (e.g. "ご意見・ご質問等" punctuation, parenthesized
// variants), and an unescaped label would silently match the wrong text.
func ExtractField(sectionText, label string) string {
	re := regexp.MustCompile(regexp.QuoteMeta(label) + `[ \t　]*[:：][ \t　]*([^\n]*)`)
	m := re.FindStringSubmatch(sectionText)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
