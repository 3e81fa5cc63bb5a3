package main

import (
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/streadway/amqp"

	"catalog/internal/config"
	"catalog/internal/database"
	"catalog/internal/logger"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/server"
	"catalog/internal/services"
	"catalog/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logCloser, err := logger.Init(logger.Config{
		Level:    cfg.LogLevel,
		Format:   cfg.LogFormat,
		Output:   cfg.LogOutput,
		FilePath: cfg.LogFile,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logCloser.Close()

	// --- Initialize Repository ---
	store, err := openStore(cfg)
	if err != nil {
		slog.Error("store_init_failed", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	defer store.close()

	// --- Initialize RabbitMQ Client (optional) ---
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue})
		if err != nil {
			slog.Error("rabbitmq_init_failed", "error", err)
			os.Exit(1)
		}
		defer mqClient.Close()
		publisher = mqClient

		if err := mqClient.Consume(handleCatalogEvent); err != nil {
			slog.Error("rabbitmq_consumer_failed", "error", err)
		}
	} else {
		slog.Info("rabbitmq_disabled")
	}

	// --- Initialize Fiber App ---
	app := server.NewApp(server.Options{
		ProductService: services.NewProductService(store.repo, publisher),
		HealthCheck:    store.ping,
		RequestLog:     true,
	})

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server_starting", "port", cfg.AppPort, "driver", cfg.DBDriver)
		if err := app.Listen(cfg.AppPort); err != nil {
			slog.Error("server_failed", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	slog.Info("server_shutting_down")
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		slog.Error("server_shutdown_failed", "error", err)
	}
	slog.Info("server_stopped")
}

// catalogStore bundles the product repository with the hooks of its backing database.
type catalogStore struct {
	repo  repositories.ProductRepository
	ping  server.Pinger
	close func() error
}

// openStore builds the repository selected by cfg.DBDriver, migrating the schema
// when DB_AUTO_MIGRATE is set.
func openStore(cfg config.Config) (*catalogStore, error) {
	if cfg.DBDriver == config.DriverMemory {
		return &catalogStore{
			repo:  repositories.NewInMemoryProductRepository(),
			close: func() error { return nil },
		}, nil
	}

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if cfg.DBAutoMigrate {
		if err := database.Migrate(db); err != nil {
			_ = database.Close(db)
			return nil, err
		}
		slog.Info("database_migrated", "driver", cfg.DBDriver)
	}
	return &catalogStore{
		repo:  repositories.NewGORMProductRepository(db),
		ping:  func() error { return database.Ping(db) },
		close: func() error { return database.Close(db) },
	}, nil
}

// handleCatalogEvent logs catalog events read back from the queue.
func handleCatalogEvent(msg amqp.Delivery) error {
	var event models.ProductEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return fmt.Errorf("%w: failed to decode catalog event: %v", rabbitmq.ErrPermanent, err)
	}
	if event.ProductID == "" {
		return fmt.Errorf("%w: catalog event %q has no product id", rabbitmq.ErrPermanent, msg.Type)
	}
	slog.Info("catalog_event_received",
		"type", event.Type,
		"product_id", event.ProductID,
		"languages", event.Languages,
		"delivery_tag", msg.DeliveryTag,
	)
	return nil
}
