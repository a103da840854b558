package parser

import (
	"regexp"
	"strings"
)

// SurveyMarker wraps each survey question in the notification body.
const SurveyMarker = "▼"

// ExtractAnswer returns the free-text answer following the marked
// question ("▼question▼") up to the next marker or the end of
// surveyText. Returns "" when the question is not found or carries no
// closing marker. The match state is built locally on every call so
// repeated invocations with identical input always scan from the start.
func ExtractAnswer(surveyText, questionText string) string {
	reQuestion := regexp.MustCompile(
		SurveyMarker + `[ \t　]*` + regexp.QuoteMeta(questionText) + `[ \t　]*` + SurveyMarker)
	loc := reQuestion.FindStringIndex(surveyText)
	if loc == nil {
		return ""
	}
	answer := surveyText[loc[1]:]
	if next := strings.Index(answer, SurveyMarker); next >= 0 {
		answer = answer[:next]
	}
	return strings.TrimSpace(answer)
}
