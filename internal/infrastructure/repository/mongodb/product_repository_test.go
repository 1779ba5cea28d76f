package mongodb

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mrops-br/product-catalog-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/trace/noop"
)

var testClient *mongo.Client

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	container, err := tcmongo.Run(ctx, "mongo:7")
	if err != nil {
		log.Printf("mongodb container unavailable, integration tests will be skipped: %v", err)
		os.Exit(m.Run())
	}

	uri, err := container.ConnectionString(ctx)
	if err == nil {
		testClient, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
	}
	if err != nil {
		log.Printf("mongodb connection failed, integration tests will be skipped: %v", err)
		testClient = nil
	}

	code := m.Run()

	if testClient != nil {
		_ = testClient.Disconnect(ctx)
	}
	if err := testcontainers.TerminateContainer(container); err != nil {
		log.Printf("failed to terminate mongodb container: %v", err)
	}
	os.Exit(code)
}

// newRepo returns a repository over a fresh database with indexes in place.
func newRepo(t *testing.T) *ProductRepository {
	t.Helper()
	if testClient == nil {
		t.Skip("mongodb not available")
	}

	db := testClient.Database("catalog_" + strings.ReplaceAll(uuid.NewString(), "-", ""))
	t.Cleanup(func() { _ = db.Drop(context.Background()) })

	repo := NewProductRepository(db, 5*time.Second, noop.NewTracerProvider().Tracer("test"), slog.New(slog.DiscardHandler))
	require.NoError(t, repo.EnsureIndexes(context.Background()))
	return repo
}

func newProduct(t *testing.T, name, sku string, amount float64, stock int, opts ...domain.ProductOption) *domain.Product {
	t.Helper()
	price, err := domain.NewPrice(amount, "USD")
	require.NoError(t, err)
	qty, err := domain.NewQuantity(stock)
	require.NoError(t, err)
	p, err := domain.NewProduct(name, sku, price, qty, opts...)
	require.NoError(t, err)
	return p
}

func names(products []*domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name())
	}
	return out
}

func TestProductRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	p := newProduct(t, "Laptop", "LAP-1", 1499.99, 3,
		domain.WithDescription("14 inch"),
		domain.WithImages([]string{"https://img.example.com/lap.png"}),
	)

	require.NoError(t, repo.Save(ctx, p))

	found, err := repo.FindByID(ctx, p.ID())
	require.NoError(t, err)
	assert.True(t, p.Equals(found))
	assert.Equal(t, "Laptop", found.Name())
	assert.Equal(t, "14 inch", found.Description())
	assert.Equal(t, "USD 1499.99", found.Price().String())
	assert.Equal(t, 3, found.StockQuantity().Value())
	assert.Equal(t, []string{"https://img.example.com/lap.png"}, found.Images())
	assert.WithinDuration(t, p.CreatedAt(), found.CreatedAt(), time.Millisecond)

	bySKU, err := repo.FindBySKU(ctx, "LAP-1")
	require.NoError(t, err)
	assert.True(t, p.Equals(bySKU))

	_, err = repo.FindByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = repo.FindBySKU(ctx, "NOPE")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestProductRepository_UniqueSKU(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	first := newProduct(t, "Mouse", "MOU-1", 20, 1)
	require.NoError(t, repo.Save(ctx, first))

	err := repo.Save(ctx, newProduct(t, "Other mouse", "MOU-1", 25, 1))
	assert.ErrorIs(t, err, domain.ErrProductAlreadyExists)

	// A soft-deleted product keeps its SKU reserved.
	first.SoftDelete()
	require.NoError(t, repo.Update(ctx, first))
	err = repo.Save(ctx, newProduct(t, "Third mouse", "MOU-1", 30, 1))
	assert.ErrorIs(t, err, domain.ErrProductAlreadyExists)
}

func TestProductRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	a := newProduct(t, "Keyboard", "KEY-1", 50, 2)
	b := newProduct(t, "Monitor", "MON-1", 300, 1)
	require.NoError(t, repo.Save(ctx, a))
	require.NoError(t, repo.Save(ctx, b))

	require.NoError(t, a.UpdateSKU("KEY-2"))
	a.UpdateCategory("Peripherals")
	require.NoError(t, repo.Update(ctx, a))

	found, err := repo.FindBySKU(ctx, "KEY-2")
	require.NoError(t, err)
	assert.Equal(t, "Peripherals", found.Category())

	require.NoError(t, b.UpdateSKU("KEY-2"))
	assert.ErrorIs(t, repo.Update(ctx, b), domain.ErrProductAlreadyExists)

	ghost := newProduct(t, "Ghost", "GHO-1", 1, 0)
	assert.ErrorIs(t, repo.Update(ctx, ghost), domain.ErrProductNotFound)

	a.SoftDelete()
	require.NoError(t, repo.Update(ctx, a))
	assert.ErrorIs(t, repo.Update(ctx, a), domain.ErrProductNotFound)
	_, err = repo.FindByID(ctx, a.ID())
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestProductRepository_DeleteAndExists(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	p := newProduct(t, "Cable", "CAB-1", 5, 10)
	require.NoError(t, repo.Save(ctx, p))

	p.SoftDelete()
	require.NoError(t, repo.Update(ctx, p))

	exists, err := repo.Exists(ctx, p.ID())
	require.NoError(t, err)
	assert.True(t, exists)

	deleted, err := repo.Delete(ctx, p.ID())
	require.NoError(t, err)
	assert.True(t, deleted)

	exists, err = repo.Exists(ctx, p.ID())
	require.NoError(t, err)
	assert.False(t, exists)

	deleted, err = repo.Delete(ctx, p.ID())
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestProductRepository_Finders(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	laptop := newProduct(t, "Gaming Laptop", "P-1", 1500, 2, domain.WithCategory("Computers"), domain.WithBrand("Acme"))
	phone := newProduct(t, "Phone", "P-2", 800, 0, domain.WithCategory("Mobile"), domain.WithDescription("laptop killer"))
	tablet := newProduct(t, "Tablet (10.5)", "P-3", 400, 5, domain.WithCategory("Mobile"))
	gone := newProduct(t, "Old Laptop", "P-4", 100, 1, domain.WithCategory("Computers"))
	for _, p := range []*domain.Product{laptop, phone, tablet, gone} {
		require.NoError(t, repo.Save(ctx, p))
	}
	gone.SoftDelete()
	require.NoError(t, repo.Update(ctx, gone))

	tests := []struct {
		name string
		find func() ([]*domain.Product, error)
		want []string
	}{
		{"all", func() ([]*domain.Product, error) { return repo.FindAll(ctx) }, []string{"Gaming Laptop", "Phone", "Tablet (10.5)"}},
		{"name", func() ([]*domain.Product, error) { return repo.FindByName(ctx, "LAPTOP") }, []string{"Gaming Laptop"}},
		{"name is literal", func() ([]*domain.Product, error) { return repo.FindByName(ctx, "(10.5)") }, []string{"Tablet (10.5)"}},
		{"category", func() ([]*domain.Product, error) { return repo.FindByCategory(ctx, "mobile") }, []string{"Phone", "Tablet (10.5)"}},
		{"in stock", func() ([]*domain.Product, error) { return repo.FindInStock(ctx) }, []string{"Gaming Laptop", "Tablet (10.5)"}},
		{"active", func() ([]*domain.Product, error) { return repo.FindActive(ctx) }, []string{"Gaming Laptop", "Phone", "Tablet (10.5)"}},
		{"price range", func() ([]*domain.Product, error) { return repo.FindByPriceRange(ctx, 400, 800) }, []string{"Phone", "Tablet (10.5)"}},
		{"search", func() ([]*domain.Product, error) { return repo.Search(ctx, "laptop") }, []string{"Gaming Laptop", "Phone"}},
		{"search brand", func() ([]*domain.Product, error) { return repo.Search(ctx, "acme") }, []string{"Gaming Laptop"}},
		{"search nothing", func() ([]*domain.Product, error) { return repo.Search(ctx, ".*") }, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.find()
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, names(got))
		})
	}
}
