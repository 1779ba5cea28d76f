package memory

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/mrops-br/product-catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ProductRepository is an in-memory implementation of domain.ProductRepository.
// It keeps a SKU index over every stored record, soft-deleted ones included,
// the same way a unique index behaves in a database.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
	skus     map[string]string
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewProductRepository creates a new in-memory product repository
func NewProductRepository(tracer trace.Tracer, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{
		products: make(map[string]*domain.Product),
		skus:     make(map[string]string),
		tracer:   tracer,
		logger:   logger,
	}
}

// Save stores a new product
func (r *ProductRepository) Save(ctx context.Context, product *domain.Product) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Save")
	defer span.End()

	span.SetAttributes(
		attribute.String("product.id", product.ID()),
		attribute.String("product.sku", product.SKU()),
	)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.skus[product.SKU()]; taken {
		err := fmt.Errorf("%w: product with SKU '%s' already exists", domain.ErrProductAlreadyExists, product.SKU())
		span.RecordError(err)
		span.SetStatus(codes.Error, "Duplicate SKU")
		return err
	}

	r.products[product.ID()] = product.Clone()
	r.skus[product.SKU()] = product.ID()

	r.logger.InfoContext(ctx, "Product saved in repository",
		slog.String("product_id", product.ID()),
		slog.String("product_sku", product.SKU()),
	)

	span.SetStatus(codes.Ok, "Product saved successfully")
	return nil
}

// Update replaces a live product's state.
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Update")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", product.ID()))

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.products[product.ID()]
	if !ok || current.IsDeleted() {
		span.RecordError(domain.ErrProductNotFound)
		span.SetStatus(codes.Error, "Product not found")
		return domain.ErrProductNotFound
	}

	if current.SKU() != product.SKU() {
		if owner, taken := r.skus[product.SKU()]; taken && owner != product.ID() {
			err := fmt.Errorf("%w: product with SKU '%s' already exists", domain.ErrProductAlreadyExists, product.SKU())
			span.RecordError(err)
			span.SetStatus(codes.Error, "Duplicate SKU")
			return err
		}
		delete(r.skus, current.SKU())
		r.skus[product.SKU()] = product.ID()
	}

	r.products[product.ID()] = product.Clone()

	r.logger.DebugContext(ctx, "Product updated in repository",
		slog.String("product_id", product.ID()),
	)

	span.SetStatus(codes.Ok, "Product updated successfully")
	return nil
}

// Delete removes a product physically, regardless of its soft-delete flag.
func (r *ProductRepository) Delete(ctx context.Context, id string) (bool, error) {
	_, span := r.tracer.Start(ctx, "ProductRepository.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return false, nil
	}
	delete(r.products, id)
	delete(r.skus, product.SKU())

	span.SetStatus(codes.Ok, "Product deleted")
	return true, nil
}

// Exists reports whether any record, soft-deleted or not, has the id.
func (r *ProductRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, span := r.tracer.Start(ctx, "ProductRepository.Exists")
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.products[id]
	return ok, nil
}

// FindByID retrieves a product by ID
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindByID")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	if _, err := uuid.Parse(id); err != nil {
		span.SetStatus(codes.Error, "Malformed product id")
		return nil, domain.ErrProductNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	product, exists := r.products[id]
	if !exists || product.IsDeleted() {
		span.RecordError(domain.ErrProductNotFound)
		span.SetStatus(codes.Error, "Product not found")
		r.logger.WarnContext(ctx, "Product not found",
			slog.String("product_id", id),
		)
		return nil, domain.ErrProductNotFound
	}

	r.logger.DebugContext(ctx, "Product found in repository",
		slog.String("product_id", id),
		slog.String("product_name", product.Name()),
	)

	span.SetStatus(codes.Ok, "Product found")
	return product.Clone(), nil
}

// FindBySKU retrieves a live product by its SKU
func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	_, span := r.tracer.Start(ctx, "ProductRepository.FindBySKU")
	defer span.End()

	span.SetAttributes(attribute.String("product.sku", sku))

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.skus[sku]
	if !ok || r.products[id].IsDeleted() {
		span.SetStatus(codes.Ok, "No product with SKU")
		return nil, domain.ErrProductNotFound
	}

	span.SetStatus(codes.Ok, "Product found")
	return r.products[id].Clone(), nil
}

// FindAll retrieves all products
func (r *ProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	return r.filter(ctx, "ProductRepository.FindAll", func(*domain.Product) bool { return true })
}

func (r *ProductRepository) FindByName(ctx context.Context, name string) ([]*domain.Product, error) {
	return r.filter(ctx, "ProductRepository.FindByName", func(p *domain.Product) bool {
		return containsFold(p.Name(), name)
	})
}

func (r *ProductRepository) FindByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	return r.filter(ctx, "ProductRepository.FindByCategory", func(p *domain.Product) bool {
		return containsFold(p.Category(), category)
	})
}

func (r *ProductRepository) FindActive(ctx context.Context) ([]*domain.Product, error) {
	return r.filter(ctx, "ProductRepository.FindActive", (*domain.Product).IsActive)
}

func (r *ProductRepository) FindInStock(ctx context.Context) ([]*domain.Product, error) {
	return r.filter(ctx, "ProductRepository.FindInStock", (*domain.Product).IsInStock)
}

func (r *ProductRepository) FindByPriceRange(ctx context.Context, minPrice, maxPrice float64) ([]*domain.Product, error) {
	return r.filter(ctx, "ProductRepository.FindByPriceRange", func(p *domain.Product) bool {
		amount := p.Price().AmountFloat()
		return amount >= minPrice && amount <= maxPrice
	})
}

// Search matches the query against name, description, category and brand.
func (r *ProductRepository) Search(ctx context.Context, query string) ([]*domain.Product, error) {
	return r.filter(ctx, "ProductRepository.Search", func(p *domain.Product) bool {
		return containsFold(p.Name(), query) ||
			containsFold(p.Description(), query) ||
			containsFold(p.Category(), query) ||
			containsFold(p.Brand(), query)
	})
}

// filter returns clones of the live products matching keep, oldest first.
func (r *ProductRepository) filter(ctx context.Context, spanName string, keep func(*domain.Product) bool) ([]*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, spanName)
	defer span.End()

	r.mu.RLock()
	products := make([]*domain.Product, 0, len(r.products))
	for _, product := range r.products {
		if product.IsDeleted() || !keep(product) {
			continue
		}
		products = append(products, product.Clone())
	}
	r.mu.RUnlock()

	slices.SortFunc(products, func(a, b *domain.Product) int {
		if c := a.CreatedAt().Compare(b.CreatedAt()); c != 0 {
			return c
		}
		return strings.Compare(a.ID(), b.ID())
	})

	span.SetAttributes(attribute.Int("product.count", len(products)))

	r.logger.DebugContext(ctx, "Products retrieved from repository",
		slog.String("query", spanName),
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products retrieved successfully")
	return products, nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
