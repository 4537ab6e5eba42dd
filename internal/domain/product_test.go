package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsValidStatus(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{ProductStatusActive, true},
		{ProductStatusInactive, true},
		{"draft", false},
		{"ACTIVE", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidStatus(tt.status))
		})
	}
}

func TestNewSearchDocument(t *testing.T) {
	created := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	p := &Product{
		ID:          42,
		SKU:         "SKU-042",
		Name:        "Mechanical Keyboard",
		Description: "Tenkeyless, brown switches",
		Price:       349.90,
		Category:    "peripherals",
		Status:      ProductStatusActive,
		ImageURL:    "https://cdn.example.com/42.jpg",
		CreatedAt:   created,
		UpdatedAt:   created,
	}

	doc := NewSearchDocument(p)

	assert.Equal(t, int64(42), doc.ID)
	assert.Equal(t, "SKU-042", doc.SKU)
	assert.Equal(t, "Mechanical Keyboard", doc.Name)
	assert.Equal(t, 349.90, doc.Price)
	assert.Equal(t, "peripherals", doc.Category)
	assert.Equal(t, "active", doc.Status)
	assert.Equal(t, "2025-06-01T10:30:00Z", doc.CreatedAt)
}

func TestNewSearchDocumentNormalizesTimezone(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	p := &Product{
		ID:        7,
		CreatedAt: time.Date(2025, 6, 1, 7, 0, 0, 0, loc),
	}

	doc := NewSearchDocument(p)

	assert.Equal(t, "2025-06-01T10:00:00Z", doc.CreatedAt)
}
