package branch

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested branch does not exist.
var ErrNotFound = errors.New("branch not found")

// Branch represents a store location where sales happen.
type Branch struct {
	ID   string
	Name string
	City string
}

// Repository defines persistence operations for branches.
type Repository interface {
	List(ctx context.Context) ([]Branch, error)
	GetByID(ctx context.Context, id string) (*Branch, error)
	Create(ctx context.Context, b *Branch) error
	Update(ctx context.Context, b *Branch) error
	Delete(ctx context.Context, id string) error
}
