package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound                = errors.New("resource not found")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("forbidden")
	ErrValidation              = errors.New("validation failed")
	ErrPPAOverlap              = errors.New("contract window overlaps an existing contract")
	ErrContractNotActive       = errors.New("contract is not active")
	ErrDuplicateBillingPeriod  = errors.New("invoice already exists for billing period")
	ErrInvalidStatusTransition = errors.New("invalid contract status transition")
	ErrConcurrentUpdate        = errors.New("contract was modified concurrently")
	ErrPaymentMismatch         = errors.New("payment amount does not match its breakdown")
	ErrTariffUnresolvable      = errors.New("no tariff source produced a rate")
)

// ValidationError reports malformed or out-of-range input on a single field.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NotFoundError identifies the missing resource.
type NotFoundError struct {
	Resource string
	ID       string
}

// NewNotFoundError creates a NotFoundError for the given resource kind and id.
func NewNotFoundError(resource string, id fmt.Stringer) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id.String()}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// OverlapError carries the identity of the contract that blocks a new one.
type OverlapError struct {
	ConflictingContractID uuid.UUID
	CustomerID            uuid.UUID
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("contract window overlaps contract %s for customer %s", e.ConflictingContractID, e.CustomerID)
}

func (e *OverlapError) Unwrap() error {
	return ErrPPAOverlap
}
