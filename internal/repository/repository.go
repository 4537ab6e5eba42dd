// Package repository defines the persistence contracts for the catalog.
package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/domain"
)

// DBTX is the subset of pgxpool.Pool used by the repositories. Both
// *pgxpool.Pool and pgxmock satisfy it, so tests run against a mock
// without a running database.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Filter narrows and paginates List results. Nil pointer fields are not
// applied.
type Filter struct {
	Category *string
	Status   *string
	MinPrice *float64
	MaxPrice *float64
	Page     int
	PerPage  int
}

// ProductRepository is the primary store for products. All reads exclude
// soft-deleted rows.
type ProductRepository interface {
	// Create persists a new product and fills in its ID and timestamps.
	Create(ctx context.Context, p *domain.Product) error

	// GetByID returns a live product or apperrors.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*domain.Product, error)

	// GetBySKU returns a live product or apperrors.ErrNotFound.
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)

	// List returns a page of live products plus the total count of rows
	// matching the filter.
	List(ctx context.Context, f Filter) ([]domain.Product, int, error)

	// Update persists the mutable fields of an existing product and
	// refreshes UpdatedAt.
	Update(ctx context.Context, p *domain.Product) error

	// SoftDelete marks a live product as deleted. Returns
	// apperrors.ErrNotFound if no live row matches.
	SoftDelete(ctx context.Context, id int64) error
}
