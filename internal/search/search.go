// Package search defines the search index contracts: the index client, the
// query builder, and the synchronizer that mirrors catalog writes into the
// index.
package search

import (
	"context"

	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/domain"
)

// DefaultIndexName is the index holding product documents.
const DefaultIndexName = "products"

// Result holds the hits of one index query.
type Result struct {
	Hits  []domain.SearchDocument
	Total int
}

// Client talks to the search index. Implementations must treat document
// writes as idempotent upserts keyed by product ID.
type Client interface {
	// CreateIndex creates the named index with the given mapping. Creating
	// an index that already exists is not an error.
	CreateIndex(ctx context.Context, index string, mapping string) error

	// IndexDocument upserts a single document keyed by its product ID.
	IndexDocument(ctx context.Context, index string, doc *domain.SearchDocument) error

	// DeleteDocument removes a document. Deleting an absent document is
	// not an error.
	DeleteDocument(ctx context.Context, index string, id int64) error

	// Search runs a query built by BuildQuery and returns the matching
	// documents plus the total hit count.
	Search(ctx context.Context, index string, query map[string]any) (*Result, error)
}
