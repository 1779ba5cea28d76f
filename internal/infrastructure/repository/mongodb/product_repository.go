// Package mongodb stores products in a MongoDB collection.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/mrops-br/product-catalog-api/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// CollectionName is the collection holding product documents.
const CollectionName = "products"

var (
	notDeleted  = bson.E{Key: "isDeleted", Value: false}
	defaultSort = bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}
)

// ProductRepository is a MongoDB implementation of domain.ProductRepository.
type ProductRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewProductRepository binds the repository to the products collection of db.
// Every call is bounded by timeout.
func NewProductRepository(db *mongo.Database, timeout time.Duration, tracer trace.Tracer, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{
		coll:    db.Collection(CollectionName),
		timeout: timeout,
		tracer:  tracer,
		logger:  logger,
	}
}

// EnsureIndexes creates the collection indexes. The unique sku index backs
// ErrProductAlreadyExists.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	const op = "mongodb.ProductRepository.EnsureIndexes"

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "sku", Value: 1}}, Options: options.Index().SetUnique(true).SetName("sku_unique")},
		{Keys: bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}}, Options: options.Index().SetName("name_description_text")},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "isActive", Value: 1}}},
		{Keys: bson.D{{Key: "isDeleted", Value: 1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "stockQuantity", Value: 1}}},
	}

	names, err := r.coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	r.logger.InfoContext(ctx, "Product indexes ensured", slog.Any("indexes", names))
	return nil
}

// Save inserts a new product.
func (r *ProductRepository) Save(ctx context.Context, product *domain.Product) error {
	const op = "mongodb.ProductRepository.Save"

	ctx, span := r.tracer.Start(ctx, "ProductRepository.Save")
	defer span.End()

	span.SetAttributes(
		attribute.String("product.id", product.ID()),
		attribute.String("product.sku", product.SKU()),
	)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, toDocument(product)); err != nil {
		err = r.writeError(op, product.SKU(), err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save product")
		return err
	}

	r.logger.InfoContext(ctx, "Product saved in repository",
		slog.String("product_id", product.ID()),
		slog.String("product_sku", product.SKU()),
	)

	span.SetStatus(codes.Ok, "Product saved successfully")
	return nil
}

// Update replaces a live product document.
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	const op = "mongodb.ProductRepository.Update"

	ctx, span := r.tracer.Start(ctx, "ProductRepository.Update")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", product.ID()))

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.D{{Key: "_id", Value: product.ID()}, notDeleted}
	res, err := r.coll.ReplaceOne(ctx, filter, toDocument(product))
	if err != nil {
		err = r.writeError(op, product.SKU(), err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update product")
		return err
	}
	if res.MatchedCount == 0 {
		span.SetStatus(codes.Error, "Product not found")
		return domain.ErrProductNotFound
	}

	r.logger.DebugContext(ctx, "Product updated in repository",
		slog.String("product_id", product.ID()),
	)

	span.SetStatus(codes.Ok, "Product updated successfully")
	return nil
}

// Delete removes the document physically, regardless of its soft-delete flag.
func (r *ProductRepository) Delete(ctx context.Context, id string) (bool, error) {
	const op = "mongodb.ProductRepository.Delete"

	ctx, span := r.tracer.Start(ctx, "ProductRepository.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete product")
		return false, fmt.Errorf("%s: %w", op, err)
	}

	span.SetStatus(codes.Ok, "Product deleted")
	return res.DeletedCount > 0, nil
}

// Exists reports whether any document, soft-deleted or not, has the id.
func (r *ProductRepository) Exists(ctx context.Context, id string) (bool, error) {
	const op = "mongodb.ProductRepository.Exists"

	ctx, span := r.tracer.Start(ctx, "ProductRepository.Exists")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: id}}, options.Count().SetLimit(1))
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}

// FindByID retrieves a live product by id. Ids that are not UUIDs match nothing.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindByID")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	if _, err := uuid.Parse(id); err != nil {
		span.SetStatus(codes.Error, "Malformed product id")
		return nil, domain.ErrProductNotFound
	}

	product, err := r.findOne(ctx, "mongodb.ProductRepository.FindByID", bson.D{{Key: "_id", Value: id}, notDeleted})
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			r.logger.WarnContext(ctx, "Product not found", slog.String("product_id", id))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Product not found")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Product found")
	return product, nil
}

// FindBySKU retrieves a live product by its SKU.
func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindBySKU")
	defer span.End()

	span.SetAttributes(attribute.String("product.sku", sku))

	product, err := r.findOne(ctx, "mongodb.ProductRepository.FindBySKU", bson.D{{Key: "sku", Value: sku}, notDeleted})
	if err != nil {
		if !errors.Is(err, domain.ErrProductNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to find product")
		}
		return nil, err
	}

	span.SetStatus(codes.Ok, "Product found")
	return product, nil
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	return r.find(ctx, "ProductRepository.FindAll", bson.D{notDeleted})
}

func (r *ProductRepository) FindByName(ctx context.Context, name string) ([]*domain.Product, error) {
	return r.find(ctx, "ProductRepository.FindByName", bson.D{{Key: "name", Value: containsFold(name)}, notDeleted})
}

func (r *ProductRepository) FindByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	return r.find(ctx, "ProductRepository.FindByCategory", bson.D{{Key: "category", Value: containsFold(category)}, notDeleted})
}

func (r *ProductRepository) FindActive(ctx context.Context) ([]*domain.Product, error) {
	return r.find(ctx, "ProductRepository.FindActive", bson.D{{Key: "isActive", Value: true}, notDeleted})
}

func (r *ProductRepository) FindInStock(ctx context.Context) ([]*domain.Product, error) {
	return r.find(ctx, "ProductRepository.FindInStock", bson.D{
		{Key: "stockQuantity", Value: bson.D{{Key: "$gt", Value: 0}}},
		notDeleted,
	})
}

func (r *ProductRepository) FindByPriceRange(ctx context.Context, minPrice, maxPrice float64) ([]*domain.Product, error) {
	return r.find(ctx, "ProductRepository.FindByPriceRange", bson.D{
		{Key: "price", Value: bson.D{{Key: "$gte", Value: minPrice}, {Key: "$lte", Value: maxPrice}}},
		notDeleted,
	})
}

// Search matches the query literally and case-insensitively against name,
// description, category and brand.
func (r *ProductRepository) Search(ctx context.Context, query string) ([]*domain.Product, error) {
	pattern := containsFold(query)
	return r.find(ctx, "ProductRepository.Search", bson.D{
		{Key: "$or", Value: bson.A{
			bson.D{{Key: "name", Value: pattern}},
			bson.D{{Key: "description", Value: pattern}},
			bson.D{{Key: "category", Value: pattern}},
			bson.D{{Key: "brand", Value: pattern}},
		}},
		notDeleted,
	})
}

func (r *ProductRepository) findOne(ctx context.Context, op string, filter bson.D) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc productDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	product, err := doc.toDomain()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return product, nil
}

// find returns the products matching filter, oldest first.
func (r *ProductRepository) find(ctx context.Context, spanName string, filter bson.D) ([]*domain.Product, error) {
	op := "mongodb." + spanName

	ctx, span := r.tracer.Start(ctx, spanName)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(defaultSort))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Query failed")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Decoding failed")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	products := make([]*domain.Product, 0, len(docs))
	for _, doc := range docs {
		product, err := doc.toDomain()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Invalid stored product")
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		products = append(products, product)
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))

	r.logger.DebugContext(ctx, "Products retrieved from repository",
		slog.String("query", spanName),
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products retrieved successfully")
	return products, nil
}

func (r *ProductRepository) writeError(op, sku string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: product with SKU '%s' already exists", domain.ErrProductAlreadyExists, sku)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// containsFold builds a case-insensitive substring match for s, taken literally.
func containsFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}
