package domain

import (
	"errors"
	"strings"
)

var (
	ErrValidationFailed      = errors.New("validation failed")
	ErrNotFound              = errors.New("car not found")
	ErrInvalidID             = errors.New("invalid car id")
	ErrStoreUnavailable      = errors.New("database connection failed")
	ErrExternalPublishFailed = errors.New("external publish failed")
)

// ValidationError carries every violated rule for one input.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return ErrValidationFailed.Error() + ": " + strings.Join(e.Errors, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// ExternalPublishError is returned when the marketplace rejects a publish call.
type ExternalPublishError struct {
	Message string
}

func (e *ExternalPublishError) Error() string {
	return ErrExternalPublishFailed.Error() + ": " + e.Message
}

func (e *ExternalPublishError) Is(target error) bool {
	return target == ErrExternalPublishFailed
}
