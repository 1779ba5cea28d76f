package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrops-br/product-catalog-api/internal/app/service"
	"github.com/mrops-br/product-catalog-api/internal/domain"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/config"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/http"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/http/handler"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/repository/memory"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/repository/mongodb"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/telemetry"
	"github.com/mrops-br/product-catalog-api/pkg/closer"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/trace"
)

func main() {
	cfg := config.LoadConfig()

	var (
		telem *telemetry.Telemetry
		err   error
	)
	if cfg.OTLP.Disabled {
		telem, err = telemetry.NewNoOpTelemetry(&cfg.OTLP, cfg.Log.Level)
	} else {
		telem, err = telemetry.NewTelemetry(&cfg.OTLP, cfg.Log.Level)
	}
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}

	logger := telem.Logger
	shutdown := closer.New(cfg.Server.ShutdownTimeout)
	shutdown.Add("telemetry", telem.Shutdown)

	if err := run(cfg, telem, shutdown); err != nil {
		logger.Error("Products API failed", slog.String("error", err.Error()))
		closeAll(shutdown, cfg, logger)
		os.Exit(1)
	}

	closeAll(shutdown, cfg, logger)
	logger.Info("Server stopped")
}

func run(cfg *config.Config, telem *telemetry.Telemetry, shutdown *closer.Closer) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracer := telem.TracerProvider.Tracer("products-api")
	meter := telem.MeterProvider.Meter("products-api")
	logger := telem.Logger

	logger.Info("Starting Products API", slog.String("storage", cfg.Storage.Driver))

	repo, err := newRepository(ctx, cfg, tracer, logger, shutdown)
	if err != nil {
		return err
	}

	productService := service.NewProductService(repo, tracer, meter, logger)
	productHandler := handler.NewProductHandler(productService, logger)
	server := http.NewServer(cfg, productHandler, logger, telem)
	shutdown.Add("http server", server.Stop)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
		return nil
	case err := <-errCh:
		return err
	}
}

func newRepository(ctx context.Context, cfg *config.Config, tracer trace.Tracer, logger *slog.Logger, shutdown *closer.Closer) (domain.ProductRepository, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		return memory.NewProductRepository(tracer, logger), nil
	case config.StorageMongo:
		mcfg := cfg.Storage.Mongo

		connectCtx, cancel := context.WithTimeout(ctx, mcfg.Timeout)
		defer cancel()

		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(mcfg.URI))
		if err != nil {
			return nil, fmt.Errorf("connect to mongodb: %w", err)
		}
		shutdown.Add("mongodb", client.Disconnect)

		if err := client.Ping(connectCtx, nil); err != nil {
			return nil, fmt.Errorf("ping mongodb: %w", err)
		}

		repo := mongodb.NewProductRepository(client.Database(mcfg.Database), mcfg.Timeout, tracer, logger)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, err
		}

		logger.Info("Connected to MongoDB", slog.String("database", mcfg.Database))
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func closeAll(shutdown *closer.Closer, cfg *config.Config, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := shutdown.Close(ctx); err != nil {
		logger.Error("Shutdown finished with errors", slog.String("error", err.Error()))
	}
}
