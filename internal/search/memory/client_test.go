package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/domain"
	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/search"
)

func seedClient(t *testing.T) *Client {
	t.Helper()
	c := New()
	ctx := context.Background()
	require.NoError(t, c.CreateIndex(ctx, "products", search.IndexMapping()))

	docs := []domain.SearchDocument{
		{ID: 1, SKU: "KB-1", Name: "Mechanical Keyboard", Description: "Clicky switches", Price: 350, Category: "peripherals", Status: "active", CreatedAt: "2025-01-01T00:00:00Z"},
		{ID: 2, SKU: "MS-1", Name: "Wireless Mouse", Description: "Silent clicks", Price: 120, Category: "peripherals", Status: "active", CreatedAt: "2025-02-01T00:00:00Z"},
		{ID: 3, SKU: "MN-1", Name: "4K Monitor", Description: "27 inch panel", Price: 1800, Category: "displays", Status: "inactive", CreatedAt: "2025-03-01T00:00:00Z"},
	}
	for i := range docs {
		require.NoError(t, c.IndexDocument(ctx, "products", &docs[i]))
	}
	return c
}

func TestSearchMatchAll(t *testing.T) {
	c := seedClient(t)

	res, err := c.Search(context.Background(), "products", search.BuildQuery(search.Request{}))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	require.Len(t, res.Hits, 3)

	// Default sort is created_at descending.
	assert.Equal(t, int64(3), res.Hits[0].ID)
	assert.Equal(t, int64(1), res.Hits[2].ID)
}

func TestSearchFullText(t *testing.T) {
	c := seedClient(t)

	res, err := c.Search(context.Background(), "products", search.BuildQuery(search.Request{Query: "mouse"}))
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "Wireless Mouse", res.Hits[0].Name)
}

func TestSearchTextMatchesDescription(t *testing.T) {
	c := seedClient(t)

	res, err := c.Search(context.Background(), "products", search.BuildQuery(search.Request{Query: "panel"}))
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, int64(3), res.Hits[0].ID)
}

func TestSearchFilters(t *testing.T) {
	c := seedClient(t)
	active := "active"

	res, err := c.Search(context.Background(), "products", search.BuildQuery(search.Request{
		Category: "peripherals",
		Status:   active,
	}))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
}

func TestSearchPriceRange(t *testing.T) {
	c := seedClient(t)
	min, max := 100.0, 500.0

	res, err := c.Search(context.Background(), "products", search.BuildQuery(search.Request{
		MinPrice: &min,
		MaxPrice: &max,
	}))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	for _, hit := range res.Hits {
		assert.GreaterOrEqual(t, hit.Price, min)
		assert.LessOrEqual(t, hit.Price, max)
	}
}

func TestSearchSortByPriceAscending(t *testing.T) {
	c := seedClient(t)

	res, err := c.Search(context.Background(), "products", search.BuildQuery(search.Request{
		Sort:  "price",
		Order: "asc",
	}))
	require.NoError(t, err)
	require.Len(t, res.Hits, 3)
	assert.Equal(t, 120.0, res.Hits[0].Price)
	assert.Equal(t, 350.0, res.Hits[1].Price)
	assert.Equal(t, 1800.0, res.Hits[2].Price)
}

func TestSearchPagination(t *testing.T) {
	c := seedClient(t)

	res, err := c.Search(context.Background(), "products", search.BuildQuery(search.Request{
		Page:    2,
		PerPage: 2,
	}))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Len(t, res.Hits, 1)
}

func TestSearchPageBeyondResults(t *testing.T) {
	c := seedClient(t)

	res, err := c.Search(context.Background(), "products", search.BuildQuery(search.Request{
		Page:    10,
		PerPage: 15,
	}))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Empty(t, res.Hits)
}

func TestIndexDocumentIsUpsert(t *testing.T) {
	c := seedClient(t)
	ctx := context.Background()

	require.NoError(t, c.IndexDocument(ctx, "products", &domain.SearchDocument{
		ID: 1, Name: "Renamed Keyboard", Status: "active", CreatedAt: "2025-01-01T00:00:00Z",
	}))

	assert.Equal(t, 3, c.Count("products"))

	res, err := c.Search(ctx, "products", search.BuildQuery(search.Request{Query: "renamed"}))
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, int64(1), res.Hits[0].ID)
}

func TestDeleteDocumentIsIdempotent(t *testing.T) {
	c := seedClient(t)
	ctx := context.Background()

	require.NoError(t, c.DeleteDocument(ctx, "products", 2))
	require.NoError(t, c.DeleteDocument(ctx, "products", 2))
	assert.Equal(t, 2, c.Count("products"))
}

func TestCreateIndexIsIdempotent(t *testing.T) {
	c := seedClient(t)
	ctx := context.Background()

	require.NoError(t, c.CreateIndex(ctx, "products", search.IndexMapping()))
	assert.Equal(t, 3, c.Count("products"))
}
