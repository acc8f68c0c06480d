package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"terminal-portal/internal/repository"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrConflict         = errors.New("conflict")
	ErrMissingField     = errors.New("missing field")
	ErrTechnical        = errors.New("technical error")
)

type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field: %s", e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

type ConflictError struct {
	Resource string
	Value    string
}

func (e *ConflictError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s already exists", e.Resource)
	}
	return fmt.Sprintf("%s %q already exists", e.Resource, e.Value)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// InUseError reports a delete refused because history still references the
// row. Deactivating it is the way out.
type InUseError struct {
	Resource string
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("%s tiene historial registrado; desactívelo en lugar de eliminarlo", e.Resource)
}

func (e *InUseError) Is(target error) bool {
	return target == ErrConflict
}

// TechnicalError wraps a storage or connectivity failure. The cause is for
// logs only; callers see a generic message.
type TechnicalError struct {
	Op  string
	Err error
}

func (e *TechnicalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TechnicalError) Is(target error) bool {
	return target == ErrTechnical
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func missing(field string) error {
	return &MissingFieldError{Field: field}
}

// storeError classifies an error coming back from a repository.
func storeError(op, resource, value string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &NotFoundError{Resource: resource}
	case errors.Is(err, repository.ErrDuplicate):
		return &ConflictError{Resource: resource, Value: value}
	case errors.Is(err, repository.ErrReferenced):
		return &InUseError{Resource: resource}
	default:
		return &TechnicalError{Op: op, Err: err}
	}
}
