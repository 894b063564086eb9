package domain

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrNotFound the addressed note or tag does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConstraint a unique or foreign key constraint rejected the write.
	ErrConstraint = errors.New("constraint violation")
	// ErrValidation the input was rejected before touching storage.
	ErrValidation = errors.New("validation failed")
)

// NotFoundError names the missing entity.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NoteNotFound builds the error returned for a missing note.
func NoteNotFound(id int64) error {
	return &NotFoundError{Entity: "note", ID: id}
}

// TagNotFound builds the error returned for a missing tag.
func TagNotFound(id int64) error {
	return &NotFoundError{Entity: "tag", ID: id}
}

// ValidationError lists the rejected fields.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Fields)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Details lists the failures as "field: rule", sorted by field.
func (e *ValidationError) Details() []string {
	out := make([]string, 0, len(e.Fields))
	for field, rule := range e.Fields {
		out = append(out, field+": "+rule)
	}
	sort.Strings(out)
	return out
}
