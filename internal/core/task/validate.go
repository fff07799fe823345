package task

import (
	"strings"
	"unicode/utf8"
)

// NormalizeText trims text and checks it is non-empty and at most
// MaxTextLength characters long.
func NormalizeText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", &ValidationError{Field: "text", Message: "Task cannot be empty"}
	}
	if utf8.RuneCountInString(trimmed) > MaxTextLength {
		return "", &ValidationError{Field: "text", Message: "Task is too long (max 100 characters)"}
	}
	return trimmed, nil
}

// ValidateCategory checks that c may be stored on a task.
func ValidateCategory(c Category) error {
	if !c.IsStorable() {
		return &ValidationError{Field: "category", Message: "Please select a category"}
	}
	return nil
}
