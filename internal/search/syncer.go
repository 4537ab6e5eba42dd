package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/domain"
)

// Syncer mirrors catalog writes into the search index. Upsert and Remove are
// best-effort: index failures are logged and swallowed so a degraded index
// never blocks a catalog write. The index can always be rebuilt from the
// primary store.
type Syncer struct {
	client Client
	index  string
	logger *slog.Logger
}

// NewSyncer creates a syncer writing to the given index. An empty index name
// falls back to DefaultIndexName.
func NewSyncer(client Client, index string, logger *slog.Logger) *Syncer {
	if index == "" {
		index = DefaultIndexName
	}
	return &Syncer{client: client, index: index, logger: logger}
}

// Index returns the index name the syncer writes to.
func (s *Syncer) Index() string {
	return s.index
}

// EnsureSchema creates the product index with its mapping if it does not
// exist yet. Unlike the mutation paths, a failure here is returned to the
// caller; it runs at process start where the operator should see it.
func (s *Syncer) EnsureSchema(ctx context.Context) error {
	if err := s.client.CreateIndex(ctx, s.index, IndexMapping()); err != nil {
		return fmt.Errorf("ensure index %s: %w", s.index, err)
	}
	return nil
}

// Upsert projects a product into the index. Failures are logged, never
// returned. The index may have been dropped since boot, so the schema is
// re-ensured before the write; already-exists is success in the client.
func (s *Syncer) Upsert(ctx context.Context, p *domain.Product) {
	if err := s.client.CreateIndex(ctx, s.index, IndexMapping()); err != nil {
		s.logger.Warn("index schema check failed",
			slog.String("index", s.index),
			slog.String("error", err.Error()),
		)
	}

	doc := domain.NewSearchDocument(p)
	if err := s.client.IndexDocument(ctx, s.index, doc); err != nil {
		s.logger.Warn("index upsert failed",
			slog.Int64("product_id", p.ID),
			slog.String("error", err.Error()),
		)
	}
}

// Remove deletes a product document from the index. Failures are logged,
// never returned. Removing an absent document is a no-op.
func (s *Syncer) Remove(ctx context.Context, id int64) {
	if err := s.client.DeleteDocument(ctx, s.index, id); err != nil {
		s.logger.Warn("index remove failed",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
	}
}
