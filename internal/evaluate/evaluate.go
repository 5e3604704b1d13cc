// Package evaluate decides answer correctness.
package evaluate

import (
	"strings"

	"github.com/vocaquiz/vocaquiz/internal/model"
)

// CheckSpelling compares a typed answer against the canonical value in
// lenient mode: surrounding whitespace and letter case are ignored, no
// edit-distance tolerance. Empty input is incorrect, never an error.
func CheckSpelling(input, canonical string) bool {
	cleanInput := strings.ToLower(strings.TrimSpace(input))
	cleanCanonical := strings.ToLower(strings.TrimSpace(canonical))
	if cleanInput == "" || cleanCanonical == "" {
		return false
	}
	return cleanInput == cleanCanonical
}

// CheckChoice compares a chosen option's underlying value against the
// canonical answer, case-insensitively. No partial credit.
func CheckChoice(value, canonical string) bool {
	if strings.TrimSpace(value) == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(value), strings.TrimSpace(canonical))
}

// Answer dispatches on the question type. It never mutates the word
// entry; stat updates happen in the store after the session.
func Answer(qt model.QuestionType, canonical, input string) bool {
	if qt == model.MultipleChoice {
		return CheckChoice(input, canonical)
	}
	return CheckSpelling(input, canonical)
}
