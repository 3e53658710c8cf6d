package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/primestore/sales-api/internal/domain/branch"
)

const (
	listBranchesSQL   = `SELECT id, name, city FROM branches ORDER BY id`
	getBranchByIDSQL  = `SELECT id, name, city FROM branches WHERE id = $1`
	insertBranchSQL   = `INSERT INTO branches (id, name, city) VALUES ($1, $2, $3)`
	updateBranchSQL   = `UPDATE branches SET name = $2, city = $3 WHERE id = $1`
	deleteBranchSQL   = `DELETE FROM branches WHERE id = $1`
)

var _ branch.Repository = (*BranchRepository)(nil)

// BranchRepository implements branch.Repository backed by PostgreSQL.
type BranchRepository struct {
	pool *pgxpool.Pool
}

// NewBranchRepository returns a BranchRepository that uses the given pool.
func NewBranchRepository(pool *pgxpool.Pool) *BranchRepository {
	return &BranchRepository{pool: pool}
}

// List returns all branches ordered by ID.
func (r *BranchRepository) List(ctx context.Context) ([]branch.Branch, error) {
	rows, err := r.pool.Query(ctx, listBranchesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}
	return pgx.CollectRows(rows, scanBranch)
}

// GetByID returns a single branch by its identifier.
func (r *BranchRepository) GetByID(ctx context.Context, id string) (*branch.Branch, error) {
	rows, err := r.pool.Query(ctx, getBranchByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting branch %q: %w", id, err)
	}

	b, err := pgx.CollectExactlyOneRow(rows, scanBranch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, branch.ErrNotFound
		}
		return nil, fmt.Errorf("getting branch %q: %w", id, err)
	}
	return &b, nil
}

// Create inserts a new branch.
func (r *BranchRepository) Create(ctx context.Context, b *branch.Branch) error {
	_, err := r.pool.Exec(ctx, insertBranchSQL, b.ID, b.Name, b.City)
	if err != nil {
		return fmt.Errorf("creating branch %q: %w", b.ID, err)
	}
	return nil
}

// Update replaces an existing branch's fields.
func (r *BranchRepository) Update(ctx context.Context, b *branch.Branch) error {
	tag, err := r.pool.Exec(ctx, updateBranchSQL, b.ID, b.Name, b.City)
	if err != nil {
		return fmt.Errorf("updating branch %q: %w", b.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return branch.ErrNotFound
	}
	return nil
}

// Delete removes a branch.
func (r *BranchRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteBranchSQL, id)
	if err != nil {
		return fmt.Errorf("deleting branch %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return branch.ErrNotFound
	}
	return nil
}

func scanBranch(row pgx.CollectableRow) (branch.Branch, error) {
	var b branch.Branch
	err := row.Scan(&b.ID, &b.Name, &b.City)
	return b, err
}
