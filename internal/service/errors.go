package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced entity or relation row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned on a duplicate relation create. Uniqueness races
	// lost at the database are translated to this error as well.
	ErrAlreadyExists = errors.New("already exists")
	// ErrRelationMissing is returned when removing a relation row that was never
	// created. Distinct from ErrNotFound so a missing row maps to a client error
	// while a missing target entity stays a 404.
	ErrRelationMissing = errors.New("relation does not exist")
	// ErrForbidden is returned when a mutation is attempted by a non-owner.
	ErrForbidden = errors.New("forbidden")
	// ErrSelfSubscription is returned when a user tries to subscribe to themselves.
	ErrSelfSubscription = errors.New("cannot subscribe to yourself")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidImage is returned for undecodable or unrecognized image payloads.
	ErrInvalidImage = errors.New("invalid image payload")
	// ErrEmptyCart is returned when a shopping list is requested for an empty cart.
	ErrEmptyCart = errors.New("shopping cart is empty")
)

// ValidationError is a field-scoped input rejection.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
