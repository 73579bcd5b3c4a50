package core

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError reports an operation against an id that does not exist.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %d not found", e.Entity, e.ID)
}

// NotFound builds a NotFoundError for the given entity and id.
func NotFound(entity string, id int64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ValidationError reports a creation or update payload with missing or
// malformed fields. Fields names the offending fields.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid fields: " + strings.Join(e.Fields, ", ")
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ConsistencyError reports a transaction that references a missing category
// or whose type does not match its category's type.
type ConsistencyError struct {
	Reason string
}

func (e *ConsistencyError) Error() string {
	return e.Reason
}

// IsConsistency reports whether err is (or wraps) a ConsistencyError.
func IsConsistency(err error) bool {
	var ce *ConsistencyError
	return errors.As(err, &ce)
}
