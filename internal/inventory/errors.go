package inventory

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation indicates caller-supplied data failed invariant checks.
	ErrValidation = errors.New("inventory: validation failed")
	// ErrDuplicateKey indicates the sku is already used by a live item.
	ErrDuplicateKey = errors.New("inventory: duplicate sku")
	// ErrNotFound indicates the mutation target does not exist.
	ErrNotFound = errors.New("inventory: item not found")
	// ErrConflict indicates the item changed since the caller read it.
	ErrConflict = errors.New("inventory: version conflict")
	// ErrInvalidQuery indicates a malformed filter or sort specification.
	ErrInvalidQuery = errors.New("inventory: invalid query")
	// ErrCorruptRecord indicates the store returned a structurally invalid record.
	ErrCorruptRecord = errors.New("inventory: corrupt record")

	// ErrVersionConflict is returned by repositories when compare-and-swap fails.
	ErrVersionConflict = errors.New("inventory: stored version mismatch")
)

// FieldError describes one invalid or missing field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field violation found in a payload.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

// Is makes errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// QueryError reports the parts of a query that could not be accepted.
type QueryError struct {
	Fields []FieldError
}

func (e *QueryError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidQuery.Error(), strings.Join(parts, "; "))
}

// Is makes errors.Is(err, ErrInvalidQuery) match.
func (e *QueryError) Is(target error) bool {
	return target == ErrInvalidQuery
}

// CorruptRecordError identifies a stored record that breaks structural invariants.
type CorruptRecordError struct {
	ID     string
	Fields []string
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("%s: id=%q invalid fields: %s", ErrCorruptRecord.Error(), e.ID, strings.Join(e.Fields, ","))
}

// Is makes errors.Is(err, ErrCorruptRecord) match.
func (e *CorruptRecordError) Is(target error) bool {
	return target == ErrCorruptRecord
}

// FieldErrors extracts field-level details from validation and query errors.
func FieldErrors(err error) []FieldError {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	var qerr *QueryError
	if errors.As(err, &qerr) {
		return qerr.Fields
	}
	return nil
}
