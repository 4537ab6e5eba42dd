// Package elasticsearch implements the search.Client interface on an
// Elasticsearch cluster.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/sony/gobreaker/v2"

	apperrors "github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/pkg/errors"

	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/domain"
	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/search"
)

// Client is an Elasticsearch-backed implementation of search.Client. Read
// queries run through a circuit breaker so a struggling cluster fails fast
// instead of stacking up slow requests.
type Client struct {
	es      *elasticsearch.Client
	breaker *gobreaker.CircuitBreaker[*search.Result]
	logger  *slog.Logger
}

// esSearchResponse is the structure used to decode Elasticsearch search responses.
type esSearchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source domain.SearchDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// esErrorResponse is used to decode Elasticsearch error responses.
type esErrorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

// New creates a new Elasticsearch client connected to the given URL.
func New(esURL string, logger *slog.Logger) (*Client, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{esURL},
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: failed to create client: %w", err)
	}

	settings := gobreaker.Settings{
		Name:        "elasticsearch-search",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}

	return &Client{
		es:      es,
		breaker: gobreaker.NewCircuitBreaker[*search.Result](settings),
		logger:  logger,
	}, nil
}

// Ping checks whether the Elasticsearch cluster is reachable.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: unexpected status %s", res.Status())
	}
	return nil
}

// CreateIndex creates the named index with the given mapping. An index that
// already exists is treated as success.
func (c *Client) CreateIndex(ctx context.Context, index string, mapping string) error {
	res, err := c.es.Indices.Exists(
		[]string{index},
		c.es.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("check index exists: %w", apperrors.Tag(err, apperrors.ErrIndexUnavailable))
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == 200 {
		return nil
	}

	res, err = c.es.Indices.Create(
		index,
		c.es.Indices.Create.WithBody(strings.NewReader(mapping)),
		c.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", apperrors.Tag(err, apperrors.ErrIndexUnavailable))
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		var errResp esErrorResponse
		if decErr := json.NewDecoder(res.Body).Decode(&errResp); decErr == nil {
			// A concurrent creator may have won the race.
			if errResp.Error.Type == "resource_already_exists_exception" {
				return nil
			}
			return fmt.Errorf("create index: %s: %s", errResp.Error.Type, errResp.Error.Reason)
		}
		return fmt.Errorf("create index: unexpected status %s", res.Status())
	}

	c.logger.Info("elasticsearch index created", slog.String("index", index))
	return nil
}

// IndexDocument adds or updates a single product document in the index.
func (c *Client) IndexDocument(ctx context.Context, index string, doc *domain.SearchDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("elasticsearch index: marshal document: %w", err)
	}

	res, err := c.es.Index(
		index,
		bytes.NewReader(data),
		c.es.Index.WithDocumentID(strconv.FormatInt(doc.ID, 10)),
		c.es.Index.WithRefresh("true"),
		c.es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch index: %w", apperrors.Tag(err, apperrors.ErrIndexUnavailable))
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		var errResp esErrorResponse
		if decErr := json.NewDecoder(res.Body).Decode(&errResp); decErr == nil {
			return fmt.Errorf("elasticsearch index: %s: %s", errResp.Error.Type, errResp.Error.Reason)
		}
		return fmt.Errorf("elasticsearch index: unexpected status %s", res.Status())
	}

	c.logger.Debug("indexed document", slog.Int64("id", doc.ID))
	return nil
}

// DeleteDocument removes a product document from the index by its ID.
// It does not return an error if the document does not exist (404 is ignored).
func (c *Client) DeleteDocument(ctx context.Context, index string, id int64) error {
	res, err := c.es.Delete(
		index,
		strconv.FormatInt(id, 10),
		c.es.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch delete: %w", apperrors.Tag(err, apperrors.ErrIndexUnavailable))
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() && res.StatusCode != 404 {
		var errResp esErrorResponse
		if decErr := json.NewDecoder(res.Body).Decode(&errResp); decErr == nil {
			return fmt.Errorf("elasticsearch delete: %s: %s", errResp.Error.Type, errResp.Error.Reason)
		}
		return fmt.Errorf("elasticsearch delete: unexpected status %s", res.Status())
	}

	c.logger.Debug("deleted document", slog.Int64("id", id))
	return nil
}

// Search executes a query against the index through the circuit breaker.
func (c *Client) Search(ctx context.Context, index string, query map[string]any) (*search.Result, error) {
	return c.breaker.Execute(func() (*search.Result, error) {
		return c.search(ctx, index, query)
	})
}

func (c *Client) search(ctx context.Context, index string, query map[string]any) (*search.Result, error) {
	data, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: marshal query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithIndex(index),
		c.es.Search.WithBody(bytes.NewReader(data)),
		c.es.Search.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: %w", apperrors.Tag(err, apperrors.ErrIndexUnavailable))
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		var errResp esErrorResponse
		if decErr := json.NewDecoder(res.Body).Decode(&errResp); decErr == nil {
			return nil, fmt.Errorf("elasticsearch search: %s: %s", errResp.Error.Type, errResp.Error.Reason)
		}
		return nil, fmt.Errorf("elasticsearch search: unexpected status %s", res.Status())
	}

	var esResp esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("elasticsearch search: decode response: %w", err)
	}

	hits := make([]domain.SearchDocument, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		hits = append(hits, hit.Source)
	}

	return &search.Result{
		Hits:  hits,
		Total: esResp.Hits.Total.Value,
	}, nil
}
