package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/primestore/sales-api/internal/domain/sale"
)

const (
	saleColumns = `id, number, date, customer_id, customer_name, branch_id, branch_name,
		items, status, total_amount, version, created_at, updated_at`

	loadSaleSQL = `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`

	insertSaleSQL = `INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	updateSaleSQL = `UPDATE sales SET
			items = $3, status = $4, total_amount = $5, version = version + 1, updated_at = $6
		WHERE id = $1 AND version = $2`

	saleExistsSQL = `SELECT EXISTS (SELECT 1 FROM sales WHERE id = $1)`

	deleteSaleSQL = `DELETE FROM sales WHERE id = $1`

	countSalesSQL = `SELECT count(*) FROM sales`

	listSalesSQL = `SELECT ` + saleColumns + ` FROM sales
		ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`
)

// uniqueViolation is the PostgreSQL error code for a UNIQUE constraint breach.
const uniqueViolation = "23505"

var _ sale.Repository = (*SaleRepository)(nil)

// SaleRepository implements sale.Repository backed by PostgreSQL. Line items
// are stored in a JSONB column; optimistic concurrency uses the version column
// as the compare-and-swap token.
type SaleRepository struct {
	pool *pgxpool.Pool
}

// NewSaleRepository returns a SaleRepository that uses the given pool.
func NewSaleRepository(pool *pgxpool.Pool) *SaleRepository {
	return &SaleRepository{pool: pool}
}

// Load returns the sale with the given id, including its items.
func (r *SaleRepository) Load(ctx context.Context, id string) (*sale.Sale, error) {
	rows, err := r.pool.Query(ctx, loadSaleSQL, id)
	if err != nil {
		return nil, fmt.Errorf("loading sale %q: %w", id, err)
	}

	s, err := pgx.CollectExactlyOneRow(rows, scanSale)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sale.ErrNotFound
		}
		return nil, fmt.Errorf("loading sale %q: %w", id, err)
	}
	return &s, nil
}

// Save persists the sale. An expectedVersion of 0 inserts a new row at
// version 1; any other value updates the existing row only when the stored
// version still matches, failing with sale.ErrConcurrencyConflict otherwise.
func (r *SaleRepository) Save(ctx context.Context, s *sale.Sale, expectedVersion int) error {
	itemsJSON, err := json.Marshal(s.Items)
	if err != nil {
		return fmt.Errorf("marshaling sale items: %w", err)
	}

	if expectedVersion == 0 {
		s.Version = 1
		_, err := r.pool.Exec(ctx, insertSaleSQL,
			s.ID, s.Number, s.Date, s.CustomerID, s.CustomerName, s.BranchID, s.BranchName,
			itemsJSON, s.Status, s.TotalAmount, s.Version, s.CreatedAt, s.UpdatedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return sale.ErrDuplicateNumber
			}
			return fmt.Errorf("inserting sale %q: %w", s.ID, err)
		}
		return nil
	}

	tag, err := r.pool.Exec(ctx, updateSaleSQL,
		s.ID, expectedVersion, itemsJSON, s.Status, s.TotalAmount, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updating sale %q: %w", s.ID, err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a stale version from a deleted sale.
		var exists bool
		if err := r.pool.QueryRow(ctx, saleExistsSQL, s.ID).Scan(&exists); err != nil {
			return fmt.Errorf("checking sale %q: %w", s.ID, err)
		}
		if !exists {
			return sale.ErrNotFound
		}
		return sale.ErrConcurrencyConflict
	}
	s.Version = expectedVersion + 1
	return nil
}

// Delete removes the sale row entirely.
func (r *SaleRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteSaleSQL, id)
	if err != nil {
		return fmt.Errorf("deleting sale %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return sale.ErrNotFound
	}
	return nil
}

// List returns one page of sales ordered by creation time, newest first,
// along with the total row count.
func (r *SaleRepository) List(ctx context.Context, page, pageSize int) ([]sale.Sale, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, countSalesSQL).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting sales: %w", err)
	}

	offset := (page - 1) * pageSize
	// A negative offset means the multiplication overflowed; the page is past
	// the end either way.
	if offset < 0 {
		return nil, total, nil
	}
	rows, err := r.pool.Query(ctx, listSalesSQL, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing sales: %w", err)
	}
	sales, err := pgx.CollectRows(rows, scanSale)
	if err != nil {
		return nil, 0, fmt.Errorf("listing sales: %w", err)
	}
	return sales, total, nil
}

func scanSale(row pgx.CollectableRow) (sale.Sale, error) {
	var (
		s         sale.Sale
		itemsJSON []byte
	)
	err := row.Scan(
		&s.ID, &s.Number, &s.Date, &s.CustomerID, &s.CustomerName, &s.BranchID, &s.BranchName,
		&itemsJSON, &s.Status, &s.TotalAmount, &s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return sale.Sale{}, err
	}
	if err := json.Unmarshal(itemsJSON, &s.Items); err != nil {
		return sale.Sale{}, fmt.Errorf("unmarshaling sale items: %w", err)
	}
	return s, nil
}
