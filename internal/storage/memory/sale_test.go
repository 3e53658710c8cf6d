package memory

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primestore/sales-api/internal/domain/sale"
)

func newSale(t *testing.T, number string) *sale.Sale {
	t.Helper()
	item, err := sale.NewItem("p1", "Widget", 2,
		decimal.RequireFromString("10.00"), decimal.Zero)
	require.NoError(t, err)

	s, err := sale.New(sale.NewSaleParams{
		Number:       number,
		Date:         time.Now().UTC().Add(-time.Hour),
		CustomerID:   "cus-1",
		CustomerName: "Ada Lovett",
		BranchID:     "br-1",
		BranchName:   "Downtown",
		Items:        []sale.Item{item},
	})
	require.NoError(t, err)
	return s
}

func TestSaleRepository_InsertAndLoad(t *testing.T) {
	repo := NewSaleRepository()
	ctx := context.Background()

	s := newSale(t, "S-0001")
	require.NoError(t, repo.Save(ctx, s, 0))
	assert.Equal(t, 1, s.Version)

	got, err := repo.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Number, got.Number)
	assert.Equal(t, 1, got.Version)

	// Mutating the returned copy must not leak into the stored state.
	got.Items[0].ProductName = "tampered"
	again, err := repo.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", again.Items[0].ProductName)
}

func TestSaleRepository_LoadMissing(t *testing.T) {
	repo := NewSaleRepository()

	_, err := repo.Load(context.Background(), "missing")
	require.ErrorIs(t, err, sale.ErrNotFound)
}

func TestSaleRepository_DuplicateNumber(t *testing.T) {
	repo := NewSaleRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newSale(t, "S-0001"), 0))

	err := repo.Save(ctx, newSale(t, "S-0001"), 0)
	require.ErrorIs(t, err, sale.ErrDuplicateNumber)
}

func TestSaleRepository_ConcurrentUpdateConflict(t *testing.T) {
	repo := NewSaleRepository()
	ctx := context.Background()

	s := newSale(t, "S-0001")
	require.NoError(t, repo.Save(ctx, s, 0))

	// Two clients load the same version and race to update.
	first, err := repo.Load(ctx, s.ID)
	require.NoError(t, err)
	second, err := repo.Load(ctx, s.ID)
	require.NoError(t, err)

	require.NoError(t, first.Cancel())
	require.NoError(t, repo.Save(ctx, first, 1))
	assert.Equal(t, 2, first.Version)

	err = second.CancelItem("p1")
	require.NoError(t, err)
	err = repo.Save(ctx, second, 1)
	require.ErrorIs(t, err, sale.ErrConcurrencyConflict)

	// The winning write is what persists.
	got, err := repo.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	assert.Equal(t, sale.StatusCancelled, got.Status)
}

func TestSaleRepository_UpdateMissing(t *testing.T) {
	repo := NewSaleRepository()

	s := newSale(t, "S-0001")
	err := repo.Save(context.Background(), s, 1)
	require.ErrorIs(t, err, sale.ErrNotFound)
}

func TestSaleRepository_Delete(t *testing.T) {
	repo := NewSaleRepository()
	ctx := context.Background()

	s := newSale(t, "S-0001")
	require.NoError(t, repo.Save(ctx, s, 0))
	require.NoError(t, repo.Delete(ctx, s.ID))

	_, err := repo.Load(ctx, s.ID)
	require.ErrorIs(t, err, sale.ErrNotFound)

	// The number is released for reuse.
	require.NoError(t, repo.Save(ctx, newSale(t, "S-0001"), 0))

	err = repo.Delete(ctx, "missing")
	require.ErrorIs(t, err, sale.ErrNotFound)
}

func TestSaleRepository_List_PageBeyondIntRange(t *testing.T) {
	repo := NewSaleRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newSale(t, "S-0001"), 0))

	// (page-1)*pageSize overflows int here; the page is simply empty.
	page, total, err := repo.List(ctx, math.MaxInt/2, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Empty(t, page)
}

func TestSaleRepository_List(t *testing.T) {
	repo := NewSaleRepository()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		s := newSale(t, fmt.Sprintf("S-%04d", i))
		s.CreatedAt = time.Date(2025, 6, 1, 10, i, 0, 0, time.UTC)
		require.NoError(t, repo.Save(ctx, s, 0))
	}

	page, total, err := repo.List(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	// Newest first.
	assert.Equal(t, "S-0004", page[0].Number)
	assert.Equal(t, "S-0003", page[1].Number)

	page, total, err = repo.List(ctx, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 1)
	assert.Equal(t, "S-0000", page[0].Number)

	page, total, err = repo.List(ctx, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, page)
}
