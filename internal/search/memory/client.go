// Package memory provides an in-memory search.Client for tests and local
// development. It interprets the same query DSL the query builder emits, so
// callers exercise the real query path without a running cluster.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/domain"
	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/search"
)

// Client is an in-memory implementation of search.Client.
type Client struct {
	mu      sync.RWMutex
	indexes map[string]map[int64]domain.SearchDocument
}

// New creates an empty in-memory search client.
func New() *Client {
	return &Client{indexes: make(map[string]map[int64]domain.SearchDocument)}
}

// CreateIndex creates the named index. Creating an existing index is a no-op.
func (c *Client) CreateIndex(_ context.Context, index string, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.indexes[index]; !ok {
		c.indexes[index] = make(map[int64]domain.SearchDocument)
	}
	return nil
}

// IndexDocument upserts a document keyed by its product ID.
func (c *Client) IndexDocument(_ context.Context, index string, doc *domain.SearchDocument) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	docs, ok := c.indexes[index]
	if !ok {
		docs = make(map[int64]domain.SearchDocument)
		c.indexes[index] = docs
	}
	docs[doc.ID] = *doc
	return nil
}

// DeleteDocument removes a document. Deleting an absent document is a no-op.
func (c *Client) DeleteDocument(_ context.Context, index string, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if docs, ok := c.indexes[index]; ok {
		delete(docs, id)
	}
	return nil
}

// Count returns the number of documents in the index.
func (c *Client) Count(index string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.indexes[index])
}

// Search interprets the bool/filter/sort subset of the query DSL emitted by
// search.BuildQuery and evaluates it against the stored documents.
func (c *Client) Search(_ context.Context, index string, query map[string]any) (*search.Result, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var matched []domain.SearchDocument
	for _, doc := range c.indexes[index] {
		if matchesQuery(doc, query) {
			matched = append(matched, doc)
		}
	}

	sortDocs(matched, query)
	total := len(matched)

	from := asInt(query["from"])
	size := asInt(query["size"])
	if from > len(matched) {
		from = len(matched)
	}
	end := from + size
	if size <= 0 || end > len(matched) {
		end = len(matched)
	}

	return &search.Result{
		Hits:  append([]domain.SearchDocument{}, matched[from:end]...),
		Total: total,
	}, nil
}

func matchesQuery(doc domain.SearchDocument, query map[string]any) bool {
	q, ok := query["query"].(map[string]any)
	if !ok {
		return true
	}
	if _, ok := q["match_all"]; ok {
		return true
	}
	boolQuery, ok := q["bool"].(map[string]any)
	if !ok {
		return true
	}

	if must, ok := boolQuery["must"].([]any); ok {
		for _, clause := range must {
			if !matchesClause(doc, clause) {
				return false
			}
		}
	}
	if filters, ok := boolQuery["filter"].([]any); ok {
		for _, clause := range filters {
			if !matchesClause(doc, clause) {
				return false
			}
		}
	}
	return true
}

func matchesClause(doc domain.SearchDocument, clause any) bool {
	m, ok := clause.(map[string]any)
	if !ok {
		return false
	}

	if _, ok := m["match_all"]; ok {
		return true
	}

	if mm, ok := m["multi_match"].(map[string]any); ok {
		text, _ := mm["query"].(string)
		text = strings.ToLower(text)
		return strings.Contains(strings.ToLower(doc.Name), text) ||
			strings.Contains(strings.ToLower(doc.Description), text)
	}

	if term, ok := m["term"].(map[string]any); ok {
		for field, want := range term {
			switch field {
			case "category":
				return doc.Category == want
			case "status":
				return doc.Status == want
			case "sku":
				return doc.SKU == want
			}
		}
		return false
	}

	if rng, ok := m["range"].(map[string]any); ok {
		bounds, ok := rng["price"].(map[string]any)
		if !ok {
			return false
		}
		if gte, ok := asFloat(bounds["gte"]); ok && doc.Price < gte {
			return false
		}
		if lte, ok := asFloat(bounds["lte"]); ok && doc.Price > lte {
			return false
		}
		return true
	}

	return false
}

func sortDocs(docs []domain.SearchDocument, query map[string]any) {
	field, order := "created_at", "desc"

	if sorts, ok := query["sort"].([]any); ok && len(sorts) > 0 {
		if clause, ok := sorts[0].(map[string]any); ok {
			for f, opts := range clause {
				field = f
				if optsMap, ok := opts.(map[string]any); ok {
					if o, ok := optsMap["order"].(string); ok {
						order = o
					}
				}
			}
		}
	}

	sort.SliceStable(docs, func(i, j int) bool {
		var less bool
		switch field {
		case "price":
			less = docs[i].Price < docs[j].Price
		default:
			less = docs[i].CreatedAt < docs[j].CreatedAt
		}
		if order == "desc" {
			return !less && !equalField(docs[i], docs[j], field)
		}
		return less
	})
}

func equalField(a, b domain.SearchDocument, field string) bool {
	switch field {
	case "price":
		return a.Price == b.Price
	default:
		return a.CreatedAt == b.CreatedAt
	}
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
