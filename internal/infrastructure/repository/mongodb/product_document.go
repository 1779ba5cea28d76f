package mongodb

import (
	"time"

	"github.com/mrops-br/product-catalog-api/internal/domain"
)

// productDocument is the BSON shape of a product in the products collection.
type productDocument struct {
	ID            string    `bson:"_id"`
	Name          string    `bson:"name"`
	Description   string    `bson:"description,omitempty"`
	SKU           string    `bson:"sku"`
	Price         float64   `bson:"price"`
	Currency      string    `bson:"currency"`
	StockQuantity int       `bson:"stockQuantity"`
	Category      string    `bson:"category,omitempty"`
	Images        []string  `bson:"images"`
	Brand         string    `bson:"brand,omitempty"`
	IsActive      bool      `bson:"isActive"`
	IsDeleted     bool      `bson:"isDeleted"`
	CreatedAt     time.Time `bson:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt"`
}

func toDocument(p *domain.Product) productDocument {
	s := p.State()
	images := s.Images
	if images == nil {
		images = []string{}
	}
	return productDocument{
		ID:            s.ID,
		Name:          s.Name,
		Description:   s.Description,
		SKU:           s.SKU,
		Price:         s.Price,
		Currency:      s.Currency,
		StockQuantity: s.StockQuantity,
		Category:      s.Category,
		Images:        images,
		Brand:         s.Brand,
		IsActive:      s.IsActive,
		IsDeleted:     s.IsDeleted,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func (d productDocument) toDomain() (*domain.Product, error) {
	return domain.RestoreProduct(domain.ProductState{
		ID:            d.ID,
		Name:          d.Name,
		Description:   d.Description,
		SKU:           d.SKU,
		Price:         d.Price,
		Currency:      d.Currency,
		StockQuantity: d.StockQuantity,
		Category:      d.Category,
		Images:        d.Images,
		Brand:         d.Brand,
		IsActive:      d.IsActive,
		IsDeleted:     d.IsDeleted,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	})
}
