// Package service implements the catalog business logic. The primary store
// is authoritative; the search index, the cache, and the event stream are
// derived views kept in sync on a best-effort basis.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	apperrors "github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/pkg/errors"

	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/cache"
	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/domain"
	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/repository"
	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/search"
	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/storage"
)

// DefaultMaxCachedPage is the deepest search page stored in the cache. Deeper
// pages are served straight from the index; they are rarely revisited and
// caching them would balloon the issued-key registry.
const DefaultMaxCachedPage = 50

const reindexBatchSize = 500

// EventPublisher publishes product lifecycle events. Publishing is
// best-effort; the service logs and swallows errors.
type EventPublisher interface {
	PublishProductCreated(ctx context.Context, product *domain.Product) error
	PublishProductUpdated(ctx context.Context, product *domain.Product) error
	PublishProductDeleted(ctx context.Context, id int64) error
}

// SearchResponse is a page of search hits.
type SearchResponse struct {
	Data    []domain.SearchDocument `json:"data"`
	Total   int                     `json:"total"`
	Page    int                     `json:"page"`
	PerPage int                     `json:"per_page"`
}

// CreateProductInput holds the fields for creating a product.
type CreateProductInput struct {
	SKU         string
	Name        string
	Description string
	Price       float64
	Category    string
	Status      string
}

// UpdateProductInput holds the fields for a partial product update. Nil
// fields are left unchanged.
type UpdateProductInput struct {
	SKU         *string
	Name        *string
	Description *string
	Price       *float64
	Category    *string
	Status      *string
}

// CatalogService orchestrates the primary store, the search index, the cache,
// and the event stream.
type CatalogService struct {
	repo          repository.ProductRepository
	index         search.Client
	syncer        *search.Syncer
	cache         *cache.Cache
	events        EventPublisher
	storage       storage.Storage
	maxCachedPage int
	logger        *slog.Logger
}

// NewCatalogService creates the catalog service. A maxCachedPage of zero
// falls back to DefaultMaxCachedPage.
func NewCatalogService(
	repo repository.ProductRepository,
	index search.Client,
	syncer *search.Syncer,
	c *cache.Cache,
	events EventPublisher,
	store storage.Storage,
	maxCachedPage int,
	logger *slog.Logger,
) *CatalogService {
	if maxCachedPage <= 0 {
		maxCachedPage = DefaultMaxCachedPage
	}
	return &CatalogService{
		repo:          repo,
		index:         index,
		syncer:        syncer,
		cache:         c,
		events:        events,
		storage:       store,
		maxCachedPage: maxCachedPage,
		logger:        logger,
	}
}

// Create validates and persists a new product, then mirrors it into the
// index and publishes a created event. Index and event failures do not fail
// the call.
func (s *CatalogService) Create(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = domain.ProductStatusActive
	}

	if _, err := s.repo.GetBySKU(ctx, input.SKU); err == nil {
		return nil, apperrors.AlreadyExists("product", "sku", input.SKU)
	} else if !isNotFound(err) {
		return nil, fmt.Errorf("check sku: %w", err)
	}

	p := &domain.Product{
		SKU:         input.SKU,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		Status:      status,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.syncer.Upsert(ctx, p)
	s.publishCreated(ctx, p)

	s.logger.InfoContext(ctx, "product created",
		slog.Int64("product_id", p.ID),
		slog.String("sku", p.SKU),
	)
	return p, nil
}

// GetByID returns a product through the entity cache. An absent product
// returns (nil, nil); the miss is cached like any other result.
func (s *CatalogService) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	return cache.Remember(ctx, s.cache, cache.EntityKey(id), func(ctx context.Context) (*domain.Product, error) {
		p, err := s.repo.GetByID(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return p, nil
	})
}

// Update applies a partial update to an existing product. On success the
// entity cache entry and every issued search page are evicted, the index is
// upserted, and an updated event is published.
func (s *CatalogService) Update(ctx context.Context, id int64, input UpdateProductInput) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, err
	}

	if err := validateUpdate(input); err != nil {
		return nil, err
	}

	if input.SKU != nil && *input.SKU != p.SKU {
		if _, err := s.repo.GetBySKU(ctx, *input.SKU); err == nil {
			return nil, apperrors.AlreadyExists("product", "sku", *input.SKU)
		} else if !isNotFound(err) {
			return nil, fmt.Errorf("check sku: %w", err)
		}
		p.SKU = *input.SKU
	}
	if input.Name != nil {
		p.Name = *input.Name
	}
	if input.Description != nil {
		p.Description = *input.Description
	}
	if input.Price != nil {
		p.Price = *input.Price
	}
	if input.Category != nil {
		p.Category = *input.Category
	}
	if input.Status != nil {
		p.Status = *input.Status
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.cache.InvalidateEntity(ctx, id)
	s.cache.InvalidateSearch(ctx)
	s.syncer.Upsert(ctx, p)
	s.publishUpdated(ctx, p)

	s.logger.InfoContext(ctx, "product updated", slog.Int64("product_id", id))
	return p, nil
}

// Delete soft-deletes a product, evicts its cache entries, removes it from
// the index, and publishes a deleted event.
func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.cache.InvalidateEntity(ctx, id)
	s.cache.InvalidateSearch(ctx)
	s.syncer.Remove(ctx, id)

	if err := s.events.PublishProductDeleted(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "publish product.deleted failed",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product deleted", slog.Int64("product_id", id))
	return nil
}

// List returns a page of products straight from the primary store. Listing
// is not cached; it reflects every committed write immediately.
func (s *CatalogService) List(ctx context.Context, filter repository.Filter) ([]domain.Product, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 {
		filter.PerPage = search.DefaultPerPage
	}
	if filter.PerPage > search.MaxPerPage {
		filter.PerPage = search.MaxPerPage
	}
	return s.repo.List(ctx, filter)
}

// Search runs a product search through the result cache. Pages beyond the
// cached window bypass the cache entirely. Index failures surface to the
// caller; the read path has no fallback.
func (s *CatalogService) Search(ctx context.Context, req search.Request) (*SearchResponse, error) {
	req = req.Normalize()

	execute := func(ctx context.Context) (*SearchResponse, error) {
		result, err := s.index.Search(ctx, s.syncer.Index(), search.BuildQuery(req))
		if err != nil {
			return nil, fmt.Errorf("search products: %w", err)
		}
		return &SearchResponse{
			Data:    result.Hits,
			Total:   result.Total,
			Page:    req.Page,
			PerPage: req.PerPage,
		}, nil
	}

	if req.Page > s.maxCachedPage {
		return execute(ctx)
	}
	return cache.RememberSearch(ctx, s.cache, cache.SearchKey(req), execute)
}

// UploadImage stores an image for the product and records its URL. The
// entity cache entry is evicted and the index upserted.
func (s *CatalogService) UploadImage(ctx context.Context, id int64, input *storage.UploadInput) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, err
	}

	input.Key = imageKey(id, input.Key)
	result, err := s.storage.Upload(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	p.ImageURL = result.URL
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.cache.InvalidateEntity(ctx, id)
	s.syncer.Upsert(ctx, p)
	s.publishUpdated(ctx, p)

	s.logger.InfoContext(ctx, "product image uploaded",
		slog.Int64("product_id", id),
		slog.String("key", result.Key),
	)
	return p, nil
}

// Reindex rebuilds the search index from the primary store. It returns the
// number of products indexed. Individual document failures are logged by the
// syncer and do not abort the run.
func (s *CatalogService) Reindex(ctx context.Context) (int, error) {
	if err := s.syncer.EnsureSchema(ctx); err != nil {
		return 0, err
	}

	indexed := 0
	for page := 1; ; page++ {
		products, _, err := s.repo.List(ctx, repository.Filter{Page: page, PerPage: reindexBatchSize})
		if err != nil {
			return indexed, fmt.Errorf("list products for reindex: %w", err)
		}
		if len(products) == 0 {
			break
		}

		for i := range products {
			s.syncer.Upsert(ctx, &products[i])
			indexed++
		}

		if len(products) < reindexBatchSize {
			break
		}
	}

	s.cache.InvalidateSearch(ctx)
	return indexed, nil
}

func (s *CatalogService) publishCreated(ctx context.Context, p *domain.Product) {
	if err := s.events.PublishProductCreated(ctx, p); err != nil {
		s.logger.WarnContext(ctx, "publish product.created failed",
			slog.Int64("product_id", p.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *CatalogService) publishUpdated(ctx context.Context, p *domain.Product) {
	if err := s.events.PublishProductUpdated(ctx, p); err != nil {
		s.logger.WarnContext(ctx, "publish product.updated failed",
			slog.Int64("product_id", p.ID),
			slog.String("error", err.Error()),
		)
	}
}

func validateCreate(input CreateProductInput) error {
	if strings.TrimSpace(input.SKU) == "" {
		return apperrors.InvalidInput("sku is required")
	}
	if len(strings.TrimSpace(input.Name)) < domain.MinNameLength {
		return apperrors.InvalidInput(
			"name must be at least " + strconv.Itoa(domain.MinNameLength) + " characters",
		)
	}
	if input.Price <= 0 {
		return apperrors.InvalidInput("price must be greater than zero")
	}
	if input.Status != "" && !domain.IsValidStatus(input.Status) {
		return apperrors.InvalidInput("status must be one of: " + strings.Join(domain.ValidStatuses(), ", "))
	}
	return nil
}

func validateUpdate(input UpdateProductInput) error {
	if input.SKU != nil && strings.TrimSpace(*input.SKU) == "" {
		return apperrors.InvalidInput("sku cannot be empty")
	}
	if input.Name != nil && len(strings.TrimSpace(*input.Name)) < domain.MinNameLength {
		return apperrors.InvalidInput(
			"name must be at least " + strconv.Itoa(domain.MinNameLength) + " characters",
		)
	}
	if input.Price != nil && *input.Price <= 0 {
		return apperrors.InvalidInput("price must be greater than zero")
	}
	if input.Status != nil && !domain.IsValidStatus(*input.Status) {
		return apperrors.InvalidInput("status must be one of: " + strings.Join(domain.ValidStatuses(), ", "))
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}

func imageKey(id int64, filename string) string {
	name := strings.TrimSpace(filename)
	if name == "" {
		name = "image"
	}
	return fmt.Sprintf("products/%d/%s", id, name)
}
