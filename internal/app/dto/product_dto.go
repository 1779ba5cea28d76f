package dto

import (
	"time"

	"github.com/mrops-br/product-catalog-api/internal/domain"
)

// CreateProductRequest represents the request to create a product
type CreateProductRequest struct {
	Name          string   `json:"name" validate:"required,notblank,max=100"`
	Description   string   `json:"description,omitempty" validate:"max=1000"`
	SKU           string   `json:"sku" validate:"required,notblank,max=50"`
	Price         float64  `json:"price" validate:"required,gt=0"`
	StockQuantity *float64 `json:"stockQuantity" validate:"required,gte=0"`
	Category      string   `json:"category,omitempty" validate:"max=50"`
	Images        []string `json:"images,omitempty" validate:"omitempty,dive,url"`
	Brand         string   `json:"brand,omitempty" validate:"max=50"`
	Currency      string   `json:"currency,omitempty"`
	IsActive      *bool    `json:"isActive,omitempty"`
}

// UpdateProductRequest carries a partial update. Nil fields are left untouched;
// an empty, non-nil Images slice clears the images.
type UpdateProductRequest struct {
	Name          *string  `json:"name,omitempty" validate:"omitempty,max=100"`
	Description   *string  `json:"description,omitempty" validate:"omitempty,max=1000"`
	SKU           *string  `json:"sku,omitempty" validate:"omitempty,max=50"`
	Price         *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	StockQuantity *float64 `json:"stockQuantity,omitempty" validate:"omitempty,gte=0"`
	Category      *string  `json:"category,omitempty" validate:"omitempty,max=50"`
	Images        []string `json:"images,omitempty" validate:"omitempty,dive,url"`
	Brand         *string  `json:"brand,omitempty" validate:"omitempty,max=50"`
	Currency      *string  `json:"currency,omitempty"`
	IsActive      *bool    `json:"isActive,omitempty"`
}

// ListProductsQuery selects which repository finder serves a listing.
type ListProductsQuery struct {
	Search   string
	Name     string
	Category string
	MinPrice *float64
	MaxPrice *float64
	Active   bool
	InStock  bool
}

// ProductResponse represents the product response
type ProductResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	SKU           string    `json:"sku"`
	Price         float64   `json:"price"`
	Currency      string    `json:"currency"`
	StockQuantity int       `json:"stockQuantity"`
	Category      string    `json:"category,omitempty"`
	Images        []string  `json:"images"`
	IsActive      bool      `json:"isActive"`
	Brand         string    `json:"brand,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *domain.Product) *ProductResponse {
	return &ProductResponse{
		ID:            p.ID(),
		Name:          p.Name(),
		Description:   p.Description(),
		SKU:           p.SKU(),
		Price:         p.Price().AmountFloat(),
		Currency:      p.Price().Currency(),
		StockQuantity: p.StockQuantity().Value(),
		Category:      p.Category(),
		Images:        p.Images(),
		IsActive:      p.IsActive(),
		Brand:         p.Brand(),
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	}
}

// ToProductResponseList converts a list of domain Products to ProductResponse list
func ToProductResponseList(products []*domain.Product) []*ProductResponse {
	responses := make([]*ProductResponse, len(products))
	for i, p := range products {
		responses[i] = ToProductResponse(p)
	}
	return responses
}
