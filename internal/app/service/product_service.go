package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/mrops-br/product-catalog-api/internal/app/dto"
	"github.com/mrops-br/product-catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	resultSuccess  = "success"
	resultNotFound = "not_found"
	resultConflict = "conflict"
	resultInvalid  = "invalid"
	resultFailure  = "failure"
	resultIgnored  = "ignored"
)

// ProductService handles product use cases. It keeps no state between calls
// and is safe for concurrent use.
type ProductService struct {
	repo                  domain.ProductRepository
	tracer                trace.Tracer
	logger                *slog.Logger
	productCreatedCounter metric.Int64Counter
	productOperations     metric.Int64Counter
}

// NewProductService creates a new product service
func NewProductService(
	repo domain.ProductRepository,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *ProductService {
	productCreatedCounter, _ := meter.Int64Counter(
		"products.created.total",
		metric.WithDescription("Total number of products created"),
	)

	productOperations, _ := meter.Int64Counter(
		"products.operations",
		metric.WithDescription("Total number of product operations"),
	)

	return &ProductService{
		repo:                  repo,
		tracer:                tracer,
		logger:                logger,
		productCreatedCounter: productCreatedCounter,
		productOperations:     productOperations,
	}
}

// CreateProduct creates a new product. The SKU lookup is a pre-check only;
// the repository's unique index has the final word.
func (s *ProductService) CreateProduct(ctx context.Context, req *dto.CreateProductRequest) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.CreateProduct")
	defer span.End()

	sku := strings.TrimSpace(req.SKU)
	span.SetAttributes(
		attribute.String("product.name", req.Name),
		attribute.String("product.sku", sku),
		attribute.Float64("product.price", req.Price),
	)

	s.logger.InfoContext(ctx, "Creating product",
		slog.String("name", req.Name),
		slog.String("sku", sku),
		slog.Float64("price", req.Price),
	)

	if err := s.ensureSKUAvailable(ctx, sku, ""); err != nil {
		return nil, s.fail(ctx, span, "create", err)
	}

	currency := req.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	price, err := domain.NewPrice(req.Price, currency)
	if err != nil {
		return nil, s.fail(ctx, span, "create", err)
	}

	if req.StockQuantity == nil {
		return nil, s.fail(ctx, span, "create", fmt.Errorf("%w: stock quantity is required", domain.ErrInvalidQuantity))
	}
	stock, err := domain.NewQuantityFromFloat(*req.StockQuantity)
	if err != nil {
		return nil, s.fail(ctx, span, "create", err)
	}

	product, err := domain.NewProduct(req.Name, sku, price, stock,
		domain.WithDescription(req.Description),
		domain.WithCategory(req.Category),
		domain.WithImages(req.Images),
		domain.WithBrand(req.Brand),
	)
	if err != nil {
		return nil, s.fail(ctx, span, "create", err)
	}

	span.SetAttributes(attribute.String("product.id", product.ID()))

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, s.fail(ctx, span, "create", err)
	}

	s.productCreatedCounter.Add(ctx, 1)
	s.recordOperation(ctx, "create", resultSuccess)

	s.logger.InfoContext(ctx, "Product created successfully",
		slog.String("product_id", product.ID()),
	)

	span.SetStatus(codes.Ok, "Product created successfully")
	return product, nil
}

// FindAllProducts returns every product that is not soft-deleted.
func (s *ProductService) FindAllProducts(ctx context.Context) ([]*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.FindAllProducts")
	defer span.End()

	s.logger.InfoContext(ctx, "Listing all products")

	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, s.fail(ctx, span, "list", err)
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	s.recordOperation(ctx, "list", resultSuccess)

	s.logger.InfoContext(ctx, "Products listed successfully",
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products listed successfully")
	return products, nil
}

// ListProducts picks a repository finder from the query. Precedence is
// search, name, category, price range, active, in stock, then all.
func (s *ProductService) ListProducts(ctx context.Context, q dto.ListProductsQuery) ([]*domain.Product, error) {
	if q == (dto.ListProductsQuery{}) {
		return s.FindAllProducts(ctx)
	}

	ctx, span := s.tracer.Start(ctx, "ProductService.ListProducts")
	defer span.End()

	var (
		products []*domain.Product
		err      error
		filter   string
	)

	switch {
	case strings.TrimSpace(q.Search) != "":
		filter = "search"
		products, err = s.repo.Search(ctx, strings.TrimSpace(q.Search))
	case strings.TrimSpace(q.Name) != "":
		filter = "name"
		products, err = s.repo.FindByName(ctx, strings.TrimSpace(q.Name))
	case strings.TrimSpace(q.Category) != "":
		filter = "category"
		products, err = s.repo.FindByCategory(ctx, strings.TrimSpace(q.Category))
	case q.MinPrice != nil || q.MaxPrice != nil:
		filter = "price_range"
		var lo, hi float64
		lo, hi, err = priceBounds(q.MinPrice, q.MaxPrice)
		if err == nil {
			products, err = s.repo.FindByPriceRange(ctx, lo, hi)
		}
	case q.Active:
		filter = "active"
		products, err = s.repo.FindActive(ctx)
	case q.InStock:
		filter = "in_stock"
		products, err = s.repo.FindInStock(ctx)
	default:
		filter = "all"
		products, err = s.repo.FindAll(ctx)
	}

	span.SetAttributes(attribute.String("product.filter", filter))
	if err != nil {
		return nil, s.fail(ctx, span, "list", err)
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	s.recordOperation(ctx, "list", resultSuccess)

	s.logger.InfoContext(ctx, "Products listed successfully",
		slog.String("filter", filter),
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products listed successfully")
	return products, nil
}

// FindProductByID retrieves a product by ID
func (s *ProductService) FindProductByID(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.FindProductByID")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	s.logger.InfoContext(ctx, "Getting product by ID",
		slog.String("product_id", id),
	)

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, span, "read", err)
	}

	s.recordOperation(ctx, "read", resultSuccess)

	span.SetStatus(codes.Ok, "Product retrieved successfully")
	return product, nil
}

// UpdateProduct applies the fields present in req. Price and currency merge
// with the current values. IsActive=false is ignored: products can only be
// activated here, and leave the catalog through DeleteProduct.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, req *dto.UpdateProductRequest) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.UpdateProduct")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	s.logger.InfoContext(ctx, "Updating product",
		slog.String("product_id", id),
	)

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, span, "update", err)
	}

	if req.SKU != nil {
		sku := strings.TrimSpace(*req.SKU)
		if sku != "" && sku != product.SKU() {
			if err := s.ensureSKUAvailable(ctx, sku, product.ID()); err != nil {
				return nil, s.fail(ctx, span, "update", err)
			}
		}
	}

	if err := s.applyUpdate(ctx, product, req); err != nil {
		return nil, s.fail(ctx, span, "update", err)
	}

	if err := s.repo.Update(ctx, product); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			err = fmt.Errorf("%w: failed to update product with ID '%s'", domain.ErrProductOperationFailed, id)
		}
		return nil, s.fail(ctx, span, "update", err)
	}

	s.recordOperation(ctx, "update", resultSuccess)

	s.logger.InfoContext(ctx, "Product updated successfully",
		slog.String("product_id", id),
	)

	span.SetStatus(codes.Ok, "Product updated successfully")
	return product, nil
}

// DeleteProduct soft-deletes a product. The record stays in the store.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "ProductService.DeleteProduct")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	s.logger.InfoContext(ctx, "Deleting product",
		slog.String("product_id", id),
	)

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.fail(ctx, span, "delete", err)
	}

	product.SoftDelete()

	if err := s.repo.Update(ctx, product); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			err = fmt.Errorf("%w: failed to delete product with ID '%s'", domain.ErrProductOperationFailed, id)
		}
		return s.fail(ctx, span, "delete", err)
	}

	s.recordOperation(ctx, "delete", resultSuccess)

	s.logger.InfoContext(ctx, "Product deleted successfully",
		slog.String("product_id", id),
	)

	span.SetStatus(codes.Ok, "Product deleted successfully")
	return nil
}

func (s *ProductService) applyUpdate(ctx context.Context, product *domain.Product, req *dto.UpdateProductRequest) error {
	if req.Name != nil {
		if err := product.UpdateName(*req.Name); err != nil {
			return err
		}
	}
	if req.Description != nil {
		product.UpdateDescription(*req.Description)
	}
	if req.SKU != nil {
		if err := product.UpdateSKU(*req.SKU); err != nil {
			return err
		}
	}
	if req.Price != nil || req.Currency != nil {
		current := product.Price()
		currency := current.Currency()
		if req.Currency != nil && *req.Currency != "" {
			currency = *req.Currency
		}

		var (
			price domain.Price
			err   error
		)
		if req.Price != nil {
			price, err = domain.NewPrice(*req.Price, currency)
		} else {
			price, err = domain.NewPriceFromDecimal(current.Amount(), currency)
		}
		if err != nil {
			return err
		}
		product.UpdatePrice(price)
	}
	if req.StockQuantity != nil {
		stock, err := domain.NewQuantityFromFloat(*req.StockQuantity)
		if err != nil {
			return err
		}
		product.UpdateStockQuantity(stock)
	}
	if req.Category != nil {
		product.UpdateCategory(*req.Category)
	}
	if req.Images != nil {
		product.UpdateImages(req.Images)
	}
	if req.Brand != nil {
		product.UpdateBrand(*req.Brand)
	}
	if req.IsActive != nil {
		if *req.IsActive {
			product.Activate()
		} else {
			s.logger.WarnContext(ctx, "Ignoring request to deactivate product",
				slog.String("product_id", product.ID()),
			)
			s.recordOperation(ctx, "deactivate", resultIgnored)
		}
	}
	return nil
}

// ensureSKUAvailable fails with ErrProductAlreadyExists when another live
// product holds sku. ownerID is excluded from the check.
func (s *ProductService) ensureSKUAvailable(ctx context.Context, sku, ownerID string) error {
	existing, err := s.repo.FindBySKU(ctx, sku)
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID() == ownerID:
		return nil
	default:
		return fmt.Errorf("%w: product with SKU '%s' already exists", domain.ErrProductAlreadyExists, sku)
	}
}

func priceBounds(minPrice, maxPrice *float64) (float64, float64, error) {
	lo, hi := 0.0, math.MaxFloat64
	if minPrice != nil {
		lo = *minPrice
	}
	if maxPrice != nil {
		hi = *maxPrice
	}
	if lo < 0 || hi < 0 {
		return 0, 0, fmt.Errorf("%w: price bounds must not be negative", domain.ErrInvalidProductData)
	}
	if lo > hi {
		return 0, 0, fmt.Errorf("%w: minPrice must not exceed maxPrice", domain.ErrInvalidProductData)
	}
	return lo, hi, nil
}

// fail records err on the span, the log and the operations counter, and returns it unchanged.
func (s *ProductService) fail(ctx context.Context, span trace.Span, operation string, err error) error {
	result := classify(err)

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	if result == resultFailure {
		s.logger.ErrorContext(ctx, "Product operation failed",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
	} else {
		s.logger.WarnContext(ctx, "Product operation rejected",
			slog.String("operation", operation),
			slog.String("result", result),
			slog.String("error", err.Error()),
		)
	}

	s.recordOperation(ctx, operation, result)
	return err
}

func (s *ProductService) recordOperation(ctx context.Context, operation, result string) {
	s.productOperations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("result", result),
		),
	)
}

func classify(err error) string {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return resultNotFound
	case errors.Is(err, domain.ErrProductAlreadyExists):
		return resultConflict
	case errors.Is(err, domain.ErrInvalidProductData),
		errors.Is(err, domain.ErrProductOperationFailed),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidPriceFormat),
		errors.Is(err, domain.ErrUnsupportedCurrency),
		errors.Is(err, domain.ErrCurrencyMismatch),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInsufficientStock):
		return resultInvalid
	default:
		return resultFailure
	}
}
