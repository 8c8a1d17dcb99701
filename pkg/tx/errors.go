package tx

import "fmt"

// TypeValidationError is returned by a field setter when a defined value
// violates the field's wire constraint. Always local and recoverable by
// correcting the input.
type TypeValidationError struct {
	Field  string
	Reason string
}

func (e *TypeValidationError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Reason)
}

// UnknownFlagNameError is returned when folding a flag name not registered
// for a transaction type. This is a programmer error, not user input.
type UnknownFlagNameError struct {
	TypeName string
	Name     string
}

func (e *UnknownFlagNameError) Error() string {
	return fmt.Sprintf("flag %s is not registered for transaction type %s", e.Name, e.TypeName)
}

// ValidationError is a business rule violation detected before submission.
// Reason is human-actionable; no network side effect has occurred when it
// is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}
