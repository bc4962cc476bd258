package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wms-core/location-service/internal/api/handlers"
	"github.com/wms-core/location-service/internal/application"
	mongoRepo "github.com/wms-core/location-service/internal/infrastructure/mongodb"
	"github.com/wms-core/location-service/internal/messaging"
	"github.com/wms-core/location-service/pkg/kafka"
	"github.com/wms-core/location-service/pkg/logging"
	"github.com/wms-core/location-service/pkg/metrics"
	"github.com/wms-core/location-service/pkg/middleware"
	"github.com/wms-core/location-service/pkg/mongodb"
	"github.com/wms-core/location-service/pkg/outbox"
	outboxmongo "github.com/wms-core/location-service/pkg/outbox/mongodb"
	"github.com/wms-core/location-service/pkg/tracing"
)

const serviceName = "location-service"

func main() {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	if err := run(context.Background(), loadConfig(), appDependencies{}, signalCh); err != nil {
		os.Exit(1)
	}
}

type tracerProvider interface {
	Shutdown(ctx context.Context) error
}

type mongoClient interface {
	Database() *mongo.Database
	Close(ctx context.Context) error
	HealthCheck(ctx context.Context) error
}

type eventProducer interface {
	outbox.EventProducer
	Close() error
}

type eventConsumer interface {
	Subscribe(topic string, eventType string, handler kafka.EventHandler)
	Start(ctx context.Context) error
	Close() error
}

type outboxPublisher interface {
	Start(ctx context.Context) error
	Stop() error
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

type appDependencies struct {
	initTracing        func(ctx context.Context, cfg *tracing.Config) (tracerProvider, error)
	newMetrics         func(cfg *metrics.Config) *metrics.Metrics
	newMongoClient     func(ctx context.Context, cfg *mongodb.Config) (mongoClient, error)
	newProducer        func(cfg *kafka.Config, m *metrics.Metrics, logger *logging.Logger) eventProducer
	newConsumer        func(cfg *kafka.Config, m *metrics.Metrics, logger *logging.Logger) eventConsumer
	newOutboxRepo      func(db *mongo.Database) outbox.Repository
	newLocationRepo    func(db *mongo.Database) application.LocationRepository
	newGroupRepo       func(db *mongo.Database) application.LocationGroupRepository
	newOutboxPublisher func(repo outbox.Repository, producer outbox.EventProducer, logger *logging.Logger, m *metrics.Metrics, cfg *outbox.PublisherConfig) outboxPublisher
	newHTTPServer      func(addr string, handler http.Handler) httpServer
}

func defaultDependencies() appDependencies {
	return appDependencies{
		initTracing: func(ctx context.Context, cfg *tracing.Config) (tracerProvider, error) {
			return tracing.Initialize(ctx, cfg)
		},
		newMetrics: metrics.New,
		newMongoClient: func(ctx context.Context, cfg *mongodb.Config) (mongoClient, error) {
			return mongodb.NewClient(ctx, cfg)
		},
		newProducer: func(cfg *kafka.Config, m *metrics.Metrics, logger *logging.Logger) eventProducer {
			return kafka.NewProductionProducer(cfg, m, logger)
		},
		newConsumer: func(cfg *kafka.Config, m *metrics.Metrics, logger *logging.Logger) eventConsumer {
			return kafka.NewProductionConsumer(cfg, m, logger)
		},
		newOutboxRepo: func(db *mongo.Database) outbox.Repository {
			return outboxmongo.NewOutboxRepository(db)
		},
		newLocationRepo: func(db *mongo.Database) application.LocationRepository {
			return mongoRepo.NewLocationRepository(db)
		},
		newGroupRepo: func(db *mongo.Database) application.LocationGroupRepository {
			return mongoRepo.NewLocationGroupRepository(db)
		},
		newOutboxPublisher: func(repo outbox.Repository, producer outbox.EventProducer, logger *logging.Logger, m *metrics.Metrics, cfg *outbox.PublisherConfig) outboxPublisher {
			return outbox.NewPublisher(repo, producer, logger, m, cfg)
		},
		newHTTPServer: func(addr string, handler http.Handler) httpServer {
			return &http.Server{
				Addr:         addr,
				Handler:      handler,
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 30 * time.Second,
			}
		},
	}
}

func (d appDependencies) withDefaults() appDependencies {
	def := defaultDependencies()
	if d.initTracing == nil {
		d.initTracing = def.initTracing
	}
	if d.newMetrics == nil {
		d.newMetrics = def.newMetrics
	}
	if d.newMongoClient == nil {
		d.newMongoClient = def.newMongoClient
	}
	if d.newProducer == nil {
		d.newProducer = def.newProducer
	}
	if d.newConsumer == nil {
		d.newConsumer = def.newConsumer
	}
	if d.newOutboxRepo == nil {
		d.newOutboxRepo = def.newOutboxRepo
	}
	if d.newLocationRepo == nil {
		d.newLocationRepo = def.newLocationRepo
	}
	if d.newGroupRepo == nil {
		d.newGroupRepo = def.newGroupRepo
	}
	if d.newOutboxPublisher == nil {
		d.newOutboxPublisher = def.newOutboxPublisher
	}
	if d.newHTTPServer == nil {
		d.newHTTPServer = def.newHTTPServer
	}
	return d
}

func run(ctx context.Context, config *Config, deps appDependencies, signalCh <-chan os.Signal) error {
	deps = deps.withDefaults()
	if config == nil {
		config = loadConfig()
	}

	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting location-service API")

	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	tracingConfig.Environment = getEnv("ENVIRONMENT", "development")
	tracingConfig.Enabled = getEnv("TRACING_ENABLED", "true") == "true"

	tracerProvider, err := deps.initTracing(ctx, tracingConfig)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
		// Continue without tracing - don't exit
	} else if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "endpoint", tracingConfig.OTLPEndpoint)
	}

	metricsConfig := metrics.DefaultConfig(serviceName)
	m := deps.newMetrics(metricsConfig)
	logger.Info("Metrics initialized")

	client, err := deps.newMongoClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if client != nil {
		defer client.Close(ctx)
	}
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	producer := deps.newProducer(config.Kafka, m, logger)
	if producer != nil {
		defer func() {
			_ = producer.Close()
		}()
	}
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	var db *mongo.Database
	if client != nil {
		db = client.Database()
	}
	locationRepo := deps.newLocationRepo(db)
	groupRepo := deps.newGroupRepo(db)
	outboxRepo := deps.newOutboxRepo(db)

	publisher := deps.newOutboxPublisher(outboxRepo, producer, logger, m, &outbox.PublisherConfig{
		PollInterval: 1 * time.Second,
		BatchSize:    100,
	})
	if err := publisher.Start(ctx); err != nil {
		logger.WithError(err).Error("Failed to start outbox publisher")
		return fmt.Errorf("failed to start outbox publisher: %w", err)
	}
	defer func() {
		_ = publisher.Stop()
	}()
	logger.Info("Outbox publisher started")

	propagator := application.NewGroupPropagator(groupRepo, logger, m)
	targetService := application.NewTargetService(locationRepo, groupRepo, propagator, logger, m)
	locationService := application.NewLocationApplicationService(locationRepo, groupRepo, logger)
	groupService := application.NewLocationGroupApplicationService(groupRepo, propagator, logger)
	errorCodeService := application.NewErrorCodeService(groupRepo, propagator, logger, m)

	// Inbound equipment status events drive the error code pipeline
	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()

	consumer := deps.newConsumer(config.Kafka, m, logger)
	if consumer != nil {
		equipmentConsumer := messaging.NewEquipmentStatusConsumer(errorCodeService, logger)
		equipmentConsumer.Register(consumer)
		go func() {
			if err := consumer.Start(consumerCtx); err != nil && consumerCtx.Err() == nil {
				logger.WithError(err).Error("Equipment status consumer stopped")
			}
		}()
		defer func() {
			_ = consumer.Close()
		}()
		logger.Info("Equipment status consumer started", "topic", kafka.Topics.EquipmentStatusInbound)
	}

	router := gin.New()

	middlewareConfig := middleware.DefaultConfig(serviceName, logger.Logger)
	middleware.Setup(router, middlewareConfig)

	router.Use(middleware.MetricsMiddleware(m))
	router.Use(middleware.TracingMiddleware(middleware.DefaultTracingConfig(serviceName)))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		if client == nil {
			return fmt.Errorf("mongo client unavailable")
		}
		return client.HealthCheck(ctx)
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	apiV1 := router.Group("/api/v1")
	handlers.NewTargetHandlers(targetService, logger).RegisterRoutes(apiV1)
	handlers.NewLocationHandlers(locationService, logger).RegisterRoutes(apiV1)
	handlers.NewLocationGroupHandlers(groupService, errorCodeService, logger).RegisterRoutes(apiV1)

	srv := deps.newHTTPServer(config.ServerAddr, router)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	if signalCh == nil {
		signalCh = make(chan os.Signal, 1)
	}
	select {
	case <-signalCh:
	case <-ctx.Done():
	}
	logger.Info("Shutting down server...")

	stopConsumer()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server stopped")
	return nil
}

// Config holds application configuration
type Config struct {
	ServerAddr string
	MongoDB    *mongodb.Config
	Kafka      *kafka.Config
}

func loadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8020"),
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "location_db"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
		},
		Kafka: &kafka.Config{
			Brokers:       []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			ConsumerGroup: serviceName,
			ClientID:      serviceName,
			BatchSize:     100,
			BatchTimeout:  10 * time.Millisecond,
			RequiredAcks:  -1,
			MinBytes:      1,
			MaxBytes:      10e6,
			MaxWait:       500 * time.Millisecond,
			CommitTimeout: 5 * time.Second,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
