package validator

import "errors"

// FieldError describes a single failed constraint.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   any    `json:"value"`
	Message string `json:"message"`
}

// ValidationErrors aggregates all failed constraints of one Struct call.
type ValidationErrors struct {
	Fields  []FieldError
	message string
}

// Error returns all field messages joined with "; ".
func (ve *ValidationErrors) Error() string {
	return ve.message
}

// HasField reports whether the named field failed validation.
func (ve *ValidationErrors) HasField(field string) bool {
	for _, fe := range ve.Fields {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// IsValidationError reports whether err carries field-level details.
func IsValidationError(err error) bool {
	var ve *ValidationErrors
	return errors.As(err, &ve)
}
