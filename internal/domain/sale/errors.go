package sale

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
)

// Sentinel errors for sale operations.
var (
	// ErrNotFound is returned when a requested sale does not exist.
	ErrNotFound = errors.New("sale not found")
	// ErrConcurrencyConflict is returned when a save carries a stale version.
	// The caller must reload the sale and retry the operation.
	ErrConcurrencyConflict = errors.New("sale was modified concurrently")
	// ErrDuplicateNumber is returned by repositories when a sale number is
	// already taken. Uniqueness lives at the persistence boundary.
	ErrDuplicateNumber = errors.New("sale number already exists")
)

// Violation is a single broken invariant, with a machine-readable code and a
// human-readable message.
type Violation struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError carries the complete list of violated rules for a sale or
// one of its items. It never reports only the first failure.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// newValidationError wraps a non-empty violation list; it returns nil when
// there is nothing to report so callers can return the result directly.
func newValidationError(violations []Violation) error {
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}

// ItemNotFoundError indicates a sale has no active line item for the product.
type ItemNotFoundError struct {
	ProductID string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("sale has no active item for product %s", e.ProductID)
}

// InvalidStateTransitionError indicates an operation was attempted against a
// sale whose status does not permit it. It is distinct from ErrNotFound so
// callers can tell "doesn't exist" from "exists but can't do that".
type InvalidStateTransitionError struct {
	Status    Status
	Operation string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a %s sale", e.Operation, e.Status)
}
