package search

// IndexMapping returns the full JSON mapping for the products index. The
// field types are part of the service contract: category, status, and sku are
// exact-match keywords while name and description are analyzed text.
func IndexMapping() string {
	return `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0
  },
  "mappings": {
    "properties": {
      "id":          { "type": "integer" },
      "sku":         { "type": "keyword" },
      "name":        { "type": "text" },
      "description": { "type": "text" },
      "price":       { "type": "float" },
      "category":    { "type": "keyword" },
      "status":      { "type": "keyword" },
      "created_at":  { "type": "date" }
    }
  }
}`
}
