// Package memory implements the domain repositories with mutex-guarded maps.
// It backs the service when no database is configured and gives tests a real
// compare-and-swap implementation without a running PostgreSQL.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/primestore/sales-api/internal/domain/sale"
)

var _ sale.Repository = (*SaleRepository)(nil)

// SaleRepository is an in-memory sale.Repository with the same optimistic
// concurrency semantics as the PostgreSQL implementation.
type SaleRepository struct {
	mu      sync.RWMutex
	byID    map[string]sale.Sale
	numbers map[string]string // sale number -> sale id
}

// NewSaleRepository returns an empty in-memory sale repository.
func NewSaleRepository() *SaleRepository {
	return &SaleRepository{
		byID:    make(map[string]sale.Sale),
		numbers: make(map[string]string),
	}
}

// Load returns a copy of the stored sale.
func (r *SaleRepository) Load(_ context.Context, id string) (*sale.Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return nil, sale.ErrNotFound
	}
	return cloneSale(s), nil
}

// Save inserts the sale when expectedVersion is 0, enforcing number
// uniqueness; otherwise it performs a compare-and-swap on the version.
func (r *SaleRepository) Save(_ context.Context, s *sale.Sale, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if expectedVersion == 0 {
		if owner, taken := r.numbers[s.Number]; taken && owner != s.ID {
			return sale.ErrDuplicateNumber
		}
		s.Version = 1
		r.byID[s.ID] = *cloneSale(*s)
		r.numbers[s.Number] = s.ID
		return nil
	}

	stored, ok := r.byID[s.ID]
	if !ok {
		return sale.ErrNotFound
	}
	if stored.Version != expectedVersion {
		return sale.ErrConcurrencyConflict
	}
	s.Version = expectedVersion + 1
	r.byID[s.ID] = *cloneSale(*s)
	return nil
}

// Delete removes the sale entirely.
func (r *SaleRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[id]
	if !ok {
		return sale.ErrNotFound
	}
	delete(r.byID, id)
	delete(r.numbers, s.Number)
	return nil
}

// List returns one page of sales ordered by creation time, newest first,
// along with the total count.
func (r *SaleRepository) List(_ context.Context, page, pageSize int) ([]sale.Sale, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]sale.Sale, 0, len(r.byID))
	for _, s := range r.byID {
		all = append(all, *cloneSale(s))
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	total := len(all)
	start := (page - 1) * pageSize
	// A negative start means the multiplication overflowed; the page is past
	// the end either way.
	if start < 0 || start >= total {
		return nil, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

// cloneSale deep-copies a sale so callers never share item slices with the
// stored state.
func cloneSale(s sale.Sale) *sale.Sale {
	out := s
	out.Items = make([]sale.Item, len(s.Items))
	copy(out.Items, s.Items)
	return &out
}
