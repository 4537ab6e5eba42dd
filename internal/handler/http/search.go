package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/pkg/httputil"

	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/domain"
	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/search"
	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/service"
)

// SearchHandler handles HTTP requests for the product search endpoint.
type SearchHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewSearchHandler creates a new search HTTP handler.
func NewSearchHandler(svc *service.CatalogService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		service: svc,
		logger:  logger,
	}
}

// SearchProducts handles GET /api/search/products
func (h *SearchHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseRequest(w, r)
	if !ok {
		return
	}

	result, err := h.service.Search(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *SearchHandler) parseRequest(w http.ResponseWriter, r *http.Request) (search.Request, bool) {
	q := r.URL.Query()
	req := search.Request{
		Query:    q.Get("q"),
		Category: q.Get("category"),
	}

	if v := q.Get("status"); v != "" {
		if !domain.IsValidStatus(v) {
			writeParamError(w, "status must be one of: active, inactive")
			return req, false
		}
		req.Status = v
	}

	if v := q.Get("min_price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil || price < 0 {
			writeParamError(w, "min_price must be a non-negative number")
			return req, false
		}
		req.MinPrice = &price
	}
	if v := q.Get("max_price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil || price < 0 {
			writeParamError(w, "max_price must be a non-negative number")
			return req, false
		}
		req.MaxPrice = &price
	}
	if req.MinPrice != nil && req.MaxPrice != nil && *req.MinPrice > *req.MaxPrice {
		writeParamError(w, "min_price must not exceed max_price")
		return req, false
	}

	if v := q.Get("sort"); v != "" {
		if v != "created_at" && v != "price" {
			writeParamError(w, "sort must be one of: created_at, price")
			return req, false
		}
		req.Sort = v
	}
	if v := q.Get("order"); v != "" {
		if v != "asc" && v != "desc" {
			writeParamError(w, "order must be asc or desc")
			return req, false
		}
		req.Order = v
	}

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			writeParamError(w, "page must be a positive integer")
			return req, false
		}
		req.Page = page
	}
	if v := q.Get("per_page"); v != "" {
		perPage, err := strconv.Atoi(v)
		if err != nil || perPage < 1 || perPage > search.MaxPerPage {
			writeParamError(w, "per_page must be between 1 and 100")
			return req, false
		}
		req.PerPage = perPage
	}

	return req, true
}

func writeParamError(w http.ResponseWriter, message string) {
	httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: message},
	})
}
