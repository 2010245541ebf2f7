package submission

import "strings"

func isInvalidText(text string) bool {
	return strings.TrimSpace(text) == ""
}

// Validate checks every field of p before anything is persisted. A zero-byte
// image counts as missing.
func Validate(p Payload) error {
	switch {
	case isInvalidText(p.Title):
		return invalid(FieldTitle)
	case isInvalidText(p.Summary):
		return invalid(FieldSummary)
	case isInvalidText(p.Instructions):
		return invalid(FieldInstructions)
	case isInvalidText(p.CreatorName):
		return invalid(FieldName)
	case isInvalidText(p.CreatorEmail), !strings.Contains(p.CreatorEmail, "@"):
		return invalid(FieldEmail)
	case p.Image == nil, p.Image.Size() == 0:
		return invalid(FieldImage)
	}
	return nil
}

func invalid(field string) *ValidationError {
	return &ValidationError{Field: field, Message: InvalidInputMessage}
}
