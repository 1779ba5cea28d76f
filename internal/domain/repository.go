package domain

import (
	"context"
)

// ProductRepository defines the contract for product storage.
//
// Finders never return soft-deleted products. FindByID, FindBySKU and Update
// return ErrProductNotFound when nothing matches, including malformed ids.
// Save and Update return ErrProductAlreadyExists when the SKU is taken; the
// store's unique index is the authoritative check. Delete removes the record
// physically and, like Exists, ignores the soft-delete flag.
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*Product, error)
	FindAll(ctx context.Context) ([]*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	FindByName(ctx context.Context, name string) ([]*Product, error)
	FindByCategory(ctx context.Context, category string) ([]*Product, error)
	FindActive(ctx context.Context) ([]*Product, error)
	FindInStock(ctx context.Context) ([]*Product, error)
	FindByPriceRange(ctx context.Context, minPrice, maxPrice float64) ([]*Product, error)
	Search(ctx context.Context, query string) ([]*Product, error)
	Save(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id string) (bool, error)
	Exists(ctx context.Context, id string) (bool, error)
}
