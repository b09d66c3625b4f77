package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrEmptyItems        = errors.New("Order must have at least one item")
	ErrIngredientMissing = errors.New("ingredient not found")
	ErrRecipeMissing     = errors.New("recipe not found")
	ErrHeldOrderMissing  = errors.New("held order not found")
	ErrCodeTaken         = errors.New("hold code already taken")
	ErrCycleNotDue       = errors.New("replenishment cycle not due")
)

// ValidationError names the first field that failed validation
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalidField(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsCodeTaken reports whether err signals a hold code collision
func IsCodeTaken(err error) bool {
	return errors.Is(err, ErrCodeTaken)
}

// AsValidationError unwraps err into a ValidationError if it is one
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// AsInsufficientStock unwraps err into an InsufficientStockError if it is one
func AsInsufficientStock(err error) (*InsufficientStockError, bool) {
	var ise *InsufficientStockError
	if errors.As(err, &ise) {
		return ise, true
	}
	return nil, false
}

// InsufficientStockError reports the first ingredient that could not cover a
// requested deduction. The whole consumption is rolled back when it occurs.
type InsufficientStockError struct {
	IngredientID string
	Requested    float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for ingredient %s (requested %v base units)", e.IngredientID, e.Requested)
}

// IntegrityError reports stored data violating a write-time invariant, such
// as a recipe item with a non-positive quantity.
type IntegrityError struct {
	Entity string
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("data integrity violation in %s: %s", e.Entity, e.Reason)
}
