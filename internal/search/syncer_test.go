package search

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/domain"
)

type stubClient struct {
	createIndexErr error
	indexErr       error
	deleteErr      error

	createdIndexes []string
	indexed        []*domain.SearchDocument
	deleted        []int64
}

func (c *stubClient) CreateIndex(_ context.Context, index, _ string) error {
	c.createdIndexes = append(c.createdIndexes, index)
	return c.createIndexErr
}

func (c *stubClient) IndexDocument(_ context.Context, _ string, doc *domain.SearchDocument) error {
	if c.indexErr != nil {
		return c.indexErr
	}
	c.indexed = append(c.indexed, doc)
	return nil
}

func (c *stubClient) DeleteDocument(_ context.Context, _ string, id int64) error {
	if c.deleteErr != nil {
		return c.deleteErr
	}
	c.deleted = append(c.deleted, id)
	return nil
}

func (c *stubClient) Search(context.Context, string, map[string]any) (*Result, error) {
	return &Result{Hits: []domain.SearchDocument{}}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSyncerEnsureSchema(t *testing.T) {
	client := &stubClient{}
	s := NewSyncer(client, "", discardLogger())

	err := s.EnsureSchema(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultIndexName}, client.createdIndexes)
}

func TestSyncerEnsureSchemaReturnsError(t *testing.T) {
	client := &stubClient{createIndexErr: errors.New("cluster unreachable")}
	s := NewSyncer(client, "products", discardLogger())

	err := s.EnsureSchema(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ensure index products")
}

func TestSyncerUpsertProjectsDocument(t *testing.T) {
	client := &stubClient{}
	s := NewSyncer(client, "products", discardLogger())

	p := &domain.Product{
		ID:        7,
		SKU:       "SKU-007",
		Name:      "Webcam",
		Price:     199.0,
		Category:  "peripherals",
		Status:    domain.ProductStatusActive,
		CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	s.Upsert(context.Background(), p)

	require.Len(t, client.indexed, 1)
	doc := client.indexed[0]
	assert.Equal(t, int64(7), doc.ID)
	assert.Equal(t, "SKU-007", doc.SKU)
	assert.Equal(t, "2025-06-01T00:00:00Z", doc.CreatedAt)
	assert.Equal(t, []string{"products"}, client.createdIndexes)
}

func TestSyncerUpsertProceedsWhenSchemaCheckFails(t *testing.T) {
	client := &stubClient{createIndexErr: errors.New("cluster unreachable")}
	s := NewSyncer(client, "products", discardLogger())

	s.Upsert(context.Background(), &domain.Product{ID: 7})
	require.Len(t, client.indexed, 1)
}

func TestSyncerUpsertSwallowsIndexFailure(t *testing.T) {
	client := &stubClient{indexErr: errors.New("index unavailable")}
	s := NewSyncer(client, "products", discardLogger())

	// Must not panic or surface the error.
	s.Upsert(context.Background(), &domain.Product{ID: 7})
	assert.Empty(t, client.indexed)
}

func TestSyncerRemove(t *testing.T) {
	client := &stubClient{}
	s := NewSyncer(client, "products", discardLogger())

	s.Remove(context.Background(), 42)
	assert.Equal(t, []int64{42}, client.deleted)
}

func TestSyncerRemoveSwallowsFailure(t *testing.T) {
	client := &stubClient{deleteErr: errors.New("index unavailable")}
	s := NewSyncer(client, "products", discardLogger())

	s.Remove(context.Background(), 42)
	assert.Empty(t, client.deleted)
}
