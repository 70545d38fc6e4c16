package kedai

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xraph/kedai/id"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("kedai: not found")
	ErrAlreadyExists = errors.New("kedai: already exists")
	ErrInvalidInput  = errors.New("kedai: invalid input")

	// Entity errors
	ErrIngredientNotFound = errors.New("kedai: ingredient not found")
	ErrMenuNotFound       = errors.New("kedai: menu not found")
	ErrOrderNotFound      = errors.New("kedai: order not found")
	ErrPurchaseNotFound   = errors.New("kedai: purchase not found")
	ErrExpenseNotFound    = errors.New("kedai: expense not found")

	// Ledger rule errors
	ErrReferenceNotFound = errors.New("kedai: referenced entity not found")
	ErrInvalidTransition = errors.New("kedai: invalid order status transition")
	ErrStatusConflict    = errors.New("kedai: order status changed concurrently")
	ErrEmptyCart         = errors.New("kedai: cart is empty")

	// Store errors
	ErrStoreClosed       = errors.New("kedai: store is closed")
	ErrTransactionFailed = errors.New("kedai: transaction failed")
	ErrMigrationFailed   = errors.New("kedai: migration failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("kedai: validation failed for %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e ValidationError) Unwrap() error { return ErrInvalidInput }

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "kedai: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("kedai: %d errors occurred", len(e.Errors))
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e MultiError) Unwrap() []error { return e.Errors }

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// Err returns nil when empty, the single error when there is one, and the
// MultiError otherwise.
func (e MultiError) Err() error {
	switch len(e.Errors) {
	case 0:
		return nil
	case 1:
		return e.Errors[0]
	default:
		return e
	}
}

// ReferenceError reports identifiers a mutation referenced that do not
// exist. The ID prefixes tell which kind of entity is missing.
type ReferenceError struct {
	Op      string
	Missing []id.ID
}

func (e *ReferenceError) Error() string {
	parts := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		parts[i] = m.Prefix().Kind() + " " + m.String()
	}
	return fmt.Sprintf("kedai: %s: missing %s", e.Op, strings.Join(parts, ", "))
}

// Unwrap lets errors.Is match ErrReferenceNotFound.
func (e *ReferenceError) Unwrap() error { return ErrReferenceNotFound }

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrIngredientNotFound) ||
		errors.Is(err, ErrMenuNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrPurchaseNotFound) ||
		errors.Is(err, ErrExpenseNotFound)
}

// IsReference returns true if the error is a reference-integrity failure.
func IsReference(err error) bool {
	return errors.Is(err, ErrReferenceNotFound)
}

// IsValidation returns true if the error is an input validation failure.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve) || errors.Is(err, ErrInvalidInput)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransactionFailed)
}
