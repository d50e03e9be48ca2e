// Package errors defines the error taxonomy shared by services and handlers.
package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a record does not exist for the caller.
	ErrNotFound = stderrors.New("not found")

	// ErrUnauthenticated is returned when no valid session is present.
	ErrUnauthenticated = stderrors.New("authentication required")

	// ErrBusinessProfileRequired is returned when an operation needs a
	// registered business profile and the user has none.
	ErrBusinessProfileRequired = stderrors.New("business profile required")

	// ErrBusinessProfileExists is returned on a second registration attempt.
	ErrBusinessProfileExists = stderrors.New("business profile already exists")

	// ErrInvoiceNumberExhausted is returned when no free invoice number was
	// found within the configured number of attempts.
	ErrInvoiceNumberExhausted = stderrors.New("could not allocate a unique invoice number")

	// ErrStoreTimeout is returned when a write did not complete before its
	// deadline and was confirmed not to have landed.
	ErrStoreTimeout = stderrors.New("storage operation timed out")

	// ErrFeatureDisabled is returned when an optional feature is switched off.
	ErrFeatureDisabled = stderrors.New("feature is disabled")
)

// Is, As and New re-export the standard helpers so callers need one import.
var (
	Is  = stderrors.Is
	As  = stderrors.As
	New = stderrors.New
)

// ValidationError reports invalid input, optionally per field.
type ValidationError struct {
	Field   string            `json:"field,omitempty"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// NewValidationError creates a single-field validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Details: map[string]string{field: message},
	}
}

// NewFieldErrors creates a validation error carrying several field messages.
// It returns nil when details is empty.
func NewFieldErrors(details map[string]string) *ValidationError {
	if len(details) == 0 {
		return nil
	}
	fields := make([]string, 0, len(details))
	for f := range details {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	return &ValidationError{
		Field:   fields[0],
		Message: "validation failed: " + strings.Join(fields, ", "),
		Details: details,
	}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// StorageCode classifies backend storage failures.
type StorageCode string

const (
	StorageDuplicate        StorageCode = "duplicate"
	StorageMissingTable     StorageCode = "missing_table"
	StoragePermissionDenied StorageCode = "permission_denied"
	StorageUnavailable      StorageCode = "unavailable"
	StorageUnknown          StorageCode = "unknown"
)

// StorageError wraps a storage failure with its classification.
type StorageError struct {
	Code       StorageCode
	Op         string
	Constraint string
	Err        error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// UserMessage is the message shown to the user for this failure.
func (e *StorageError) UserMessage() string {
	switch e.Code {
	case StorageDuplicate:
		return "record already exists"
	case StorageMissingTable:
		return "storage is not initialised, please contact support"
	case StoragePermissionDenied:
		return "you do not have permission to perform this action"
	case StorageUnavailable:
		return "storage is temporarily unavailable, please try again"
	default:
		return "something went wrong, please try again"
	}
}

// IsStorageCode reports whether err is a StorageError with the given code.
func IsStorageCode(err error, code StorageCode) bool {
	var se *StorageError
	return stderrors.As(err, &se) && se.Code == code
}
