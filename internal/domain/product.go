package domain

import (
	"fmt"
	"strings"
	"time"
)

// Product is the catalog aggregate root. It is mutated only through its methods.
type Product struct {
	Entity

	name          string
	description   string
	sku           string
	price         Price
	stockQuantity Quantity
	category      string
	images        []string
	brand         string
	isActive      bool
	isDeleted     bool
}

// ProductOption sets an optional attribute on a new product.
type ProductOption func(*Product)

func WithDescription(description string) ProductOption {
	return func(p *Product) { p.description = strings.TrimSpace(description) }
}

func WithCategory(category string) ProductOption {
	return func(p *Product) { p.category = strings.TrimSpace(category) }
}

func WithBrand(brand string) ProductOption {
	return func(p *Product) { p.brand = strings.TrimSpace(brand) }
}

func WithImages(images []string) ProductOption {
	return func(p *Product) { p.images = copyImages(images) }
}

// NewProduct creates an active, non-deleted product with a fresh identity.
func NewProduct(name, sku string, price Price, stock Quantity, opts ...ProductOption) (*Product, error) {
	name, err := requireText("name", name)
	if err != nil {
		return nil, err
	}
	sku, err = requireText("sku", sku)
	if err != nil {
		return nil, err
	}

	p := &Product{
		Entity:        NewEntity(),
		name:          name,
		sku:           sku,
		price:         price,
		stockQuantity: stock,
		images:        []string{},
		isActive:      true,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// ProductState is the flat, storage-facing view of a Product.
type ProductState struct {
	ID            string
	Name          string
	Description   string
	SKU           string
	Price         float64
	Currency      string
	StockQuantity int
	Category      string
	Images        []string
	Brand         string
	IsActive      bool
	IsDeleted     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RestoreProduct rebuilds a Product from persisted state, re-validating the value objects.
func RestoreProduct(s ProductState) (*Product, error) {
	price, err := NewPrice(s.Price, s.Currency)
	if err != nil {
		return nil, fmt.Errorf("restore product %s: %w", s.ID, err)
	}
	stock, err := NewQuantity(s.StockQuantity)
	if err != nil {
		return nil, fmt.Errorf("restore product %s: %w", s.ID, err)
	}

	return &Product{
		Entity:        RestoreEntity(s.ID, s.CreatedAt, s.UpdatedAt),
		name:          s.Name,
		description:   s.Description,
		sku:           s.SKU,
		price:         price,
		stockQuantity: stock,
		category:      s.Category,
		images:        copyImages(s.Images),
		brand:         s.Brand,
		isActive:      s.IsActive,
		isDeleted:     s.IsDeleted,
	}, nil
}

// State returns a snapshot of the product suitable for persistence.
func (p *Product) State() ProductState {
	return ProductState{
		ID:            p.ID(),
		Name:          p.name,
		Description:   p.description,
		SKU:           p.sku,
		Price:         p.price.AmountFloat(),
		Currency:      p.price.Currency(),
		StockQuantity: p.stockQuantity.Value(),
		Category:      p.category,
		Images:        copyImages(p.images),
		Brand:         p.brand,
		IsActive:      p.isActive,
		IsDeleted:     p.isDeleted,
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	}
}

// Clone returns a deep copy.
func (p *Product) Clone() *Product {
	c := *p
	c.images = copyImages(p.images)
	return &c
}

func (p *Product) Name() string            { return p.name }
func (p *Product) Description() string     { return p.description }
func (p *Product) SKU() string             { return p.sku }
func (p *Product) Price() Price            { return p.price }
func (p *Product) StockQuantity() Quantity { return p.stockQuantity }
func (p *Product) Category() string        { return p.category }
func (p *Product) Brand() string           { return p.brand }
func (p *Product) IsActive() bool          { return p.isActive }
func (p *Product) IsDeleted() bool         { return p.isDeleted }

func (p *Product) Images() []string { return copyImages(p.images) }

func (p *Product) UpdateName(name string) error {
	name, err := requireText("name", name)
	if err != nil {
		return err
	}
	p.name = name
	p.touch()
	return nil
}

func (p *Product) UpdateDescription(description string) {
	p.description = strings.TrimSpace(description)
	p.touch()
}

// UpdateSKU only checks that the code is non-empty. Catalog-wide uniqueness is enforced elsewhere.
func (p *Product) UpdateSKU(sku string) error {
	sku, err := requireText("sku", sku)
	if err != nil {
		return err
	}
	p.sku = sku
	p.touch()
	return nil
}

func (p *Product) UpdatePrice(price Price) {
	p.price = price
	p.touch()
}

func (p *Product) UpdateStockQuantity(quantity Quantity) {
	p.stockQuantity = quantity
	p.touch()
}

func (p *Product) UpdateCategory(category string) {
	p.category = strings.TrimSpace(category)
	p.touch()
}

func (p *Product) UpdateImages(images []string) {
	p.images = copyImages(images)
	p.touch()
}

func (p *Product) UpdateBrand(brand string) {
	p.brand = strings.TrimSpace(brand)
	p.touch()
}

// Activate marks the product active. There is no inverse on purpose: a product
// leaves the catalog through SoftDelete.
func (p *Product) Activate() {
	p.isActive = true
	p.touch()
}

func (p *Product) SoftDelete() {
	p.isDeleted = true
	p.touch()
}

func (p *Product) Restore() {
	p.isDeleted = false
	p.touch()
}

func (p *Product) IsInStock() bool {
	return p.stockQuantity.IsPositive()
}

func (p *Product) CanReduceStock(q Quantity) bool {
	return p.stockQuantity.IsSufficientFor(q)
}

// ReduceStock leaves the stock untouched when q exceeds it.
func (p *Product) ReduceStock(q Quantity) error {
	if !p.CanReduceStock(q) {
		return fmt.Errorf("%w: requested %d, available %d", ErrInsufficientStock, q.Value(), p.stockQuantity.Value())
	}
	stock, err := p.stockQuantity.Subtract(q)
	if err != nil {
		return err
	}
	p.stockQuantity = stock
	p.touch()
	return nil
}

func (p *Product) AddStock(q Quantity) error {
	stock, err := p.stockQuantity.Add(q)
	if err != nil {
		return err
	}
	p.stockQuantity = stock
	p.touch()
	return nil
}

// Equals compares identity only.
func (p *Product) Equals(other *Product) bool {
	if other == nil {
		return false
	}
	return p.SameIdentity(other.Entity)
}

func requireText(field, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", fmt.Errorf("%w: product %s cannot be empty", ErrInvalidProductData, field)
	}
	return v, nil
}

func copyImages(images []string) []string {
	out := make([]string, len(images))
	copy(out, images)
	return out
}
