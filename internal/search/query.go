package search

// Query parameter defaults and bounds.
const (
	DefaultSort    = "created_at"
	DefaultOrder   = "desc"
	DefaultPerPage = 15
	MaxPerPage     = 100
)

// Request holds the parameters of one product search. The JSON form of a
// normalized request is its canonical representation and feeds the search
// cache key.
type Request struct {
	Query    string   `json:"q,omitempty"`
	Category string   `json:"category,omitempty"`
	Status   string   `json:"status,omitempty"`
	MinPrice *float64 `json:"min_price,omitempty"`
	MaxPrice *float64 `json:"max_price,omitempty"`
	Sort     string   `json:"sort"`
	Order    string   `json:"order"`
	Page     int      `json:"page"`
	PerPage  int      `json:"per_page"`
}

// ValidSorts returns the sortable fields.
func ValidSorts() []string {
	return []string{"created_at", "price"}
}

// Normalize fills in defaults and clamps out-of-range values. It is
// idempotent, so two requests that differ only in omitted parameters
// normalize to the same value.
func (r Request) Normalize() Request {
	if !isValidSort(r.Sort) {
		r.Sort = DefaultSort
	}
	if r.Order != "asc" && r.Order != "desc" {
		r.Order = DefaultOrder
	}
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PerPage < 1 {
		r.PerPage = DefaultPerPage
	}
	if r.PerPage > MaxPerPage {
		r.PerPage = MaxPerPage
	}
	return r
}

func isValidSort(sort string) bool {
	for _, s := range ValidSorts() {
		if s == sort {
			return true
		}
	}
	return false
}

// BuildQuery constructs the index query DSL for a request. It is a pure
// function of its input: equal requests always produce equal queries, which
// keeps cached results addressable by request alone.
func BuildQuery(r Request) map[string]any {
	r = r.Normalize()

	var mustClause any
	if r.Query != "" {
		mustClause = map[string]any{
			"multi_match": map[string]any{
				"query":  r.Query,
				"fields": []string{"name^2", "description"},
				"type":   "best_fields",
			},
		}
	} else {
		mustClause = map[string]any{
			"match_all": map[string]any{},
		}
	}

	boolQuery := map[string]any{
		"must": []any{mustClause},
	}

	filters := buildFilters(r)
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	}

	return map[string]any{
		"query": map[string]any{
			"bool": boolQuery,
		},
		"sort": []any{
			map[string]any{
				r.Sort: map[string]any{"order": r.Order},
			},
		},
		"from":             (r.Page - 1) * r.PerPage,
		"size":             r.PerPage,
		"track_total_hits": true,
	}
}

func buildFilters(r Request) []any {
	var filters []any

	if r.Category != "" {
		filters = append(filters, map[string]any{
			"term": map[string]any{"category": r.Category},
		})
	}

	if r.Status != "" {
		filters = append(filters, map[string]any{
			"term": map[string]any{"status": r.Status},
		})
	}

	if r.MinPrice != nil || r.MaxPrice != nil {
		priceRange := map[string]any{}
		if r.MinPrice != nil {
			priceRange["gte"] = *r.MinPrice
		}
		if r.MaxPrice != nil {
			priceRange["lte"] = *r.MaxPrice
		}
		filters = append(filters, map[string]any{
			"range": map[string]any{"price": priceRange},
		})
	}

	return filters
}
