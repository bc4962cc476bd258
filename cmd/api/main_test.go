package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wms-core/location-service/internal/application"
	"github.com/wms-core/location-service/internal/domain"
	"github.com/wms-core/location-service/pkg/cloudevents"
	"github.com/wms-core/location-service/pkg/kafka"
	"github.com/wms-core/location-service/pkg/logging"
	"github.com/wms-core/location-service/pkg/metrics"
	"github.com/wms-core/location-service/pkg/mongodb"
	"github.com/wms-core/location-service/pkg/outbox"
	"github.com/wms-core/location-service/pkg/tracing"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("LOCATION_TEST_ENV", "value")

	if got := getEnv("LOCATION_TEST_ENV", "default"); got != "value" {
		t.Fatalf("getEnv returned %q", got)
	}
	if got := getEnv("LOCATION_MISSING_ENV", "default"); got != "default" {
		t.Fatalf("getEnv default returned %q", got)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9000")
	t.Setenv("MONGODB_URI", "mongodb://example:27017")
	t.Setenv("MONGODB_DATABASE", "location_test")
	t.Setenv("KAFKA_BROKERS", "kafka:9092")

	cfg := loadConfig()

	if cfg.ServerAddr != ":9000" {
		t.Fatalf("ServerAddr = %q", cfg.ServerAddr)
	}
	if cfg.MongoDB.URI != "mongodb://example:27017" || cfg.MongoDB.Database != "location_test" {
		t.Fatalf("MongoDB config = %#v", cfg.MongoDB)
	}
	if len(cfg.Kafka.Brokers) != 1 || cfg.Kafka.Brokers[0] != "kafka:9092" {
		t.Fatalf("Kafka brokers = %#v", cfg.Kafka.Brokers)
	}
	if cfg.Kafka.ConsumerGroup != serviceName {
		t.Fatalf("ConsumerGroup = %q", cfg.Kafka.ConsumerGroup)
	}
}

type fakeTracerProvider struct {
	shutdownCalls int
}

func (f *fakeTracerProvider) Shutdown(ctx context.Context) error {
	f.shutdownCalls++
	return nil
}

type fakeMongoClient struct {
	closeCalls  int
	healthCalls int
}

func (f *fakeMongoClient) Database() *mongo.Database {
	return nil
}

func (f *fakeMongoClient) Close(ctx context.Context) error {
	f.closeCalls++
	return nil
}

func (f *fakeMongoClient) HealthCheck(ctx context.Context) error {
	f.healthCalls++
	return nil
}

type fakeProducer struct {
	closeCalls int
}

func (f *fakeProducer) PublishEvent(ctx context.Context, topic string, event *cloudevents.CloudEvent) error {
	return nil
}

func (f *fakeProducer) Close() error {
	f.closeCalls++
	return nil
}

type fakeConsumer struct {
	subscriptions map[string]string
	startCalls    int
	closeCalls    int
}

func newFakeConsumer() *fakeConsumer {
	return &fakeConsumer{subscriptions: make(map[string]string)}
}

func (f *fakeConsumer) Subscribe(topic string, eventType string, handler kafka.EventHandler) {
	f.subscriptions[topic] = eventType
}

func (f *fakeConsumer) Start(ctx context.Context) error {
	f.startCalls++
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeConsumer) Close() error {
	f.closeCalls++
	return nil
}

type fakePublisher struct {
	startCalls int
	stopCalls  int
	startErr   error
}

func (f *fakePublisher) Start(ctx context.Context) error {
	f.startCalls++
	return f.startErr
}

func (f *fakePublisher) Stop() error {
	f.stopCalls++
	return nil
}

type fakeServer struct {
	listenCalls   atomic.Int32
	shutdownCalls atomic.Int32
	listening     chan struct{}
	stopped       chan struct{}
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		listening: make(chan struct{}),
		stopped:   make(chan struct{}),
	}
}

// ListenAndServe blocks until Shutdown, like the real server.
func (f *fakeServer) ListenAndServe() error {
	f.listenCalls.Add(1)
	close(f.listening)
	<-f.stopped
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(ctx context.Context) error {
	f.shutdownCalls.Add(1)
	close(f.stopped)
	return nil
}

type stubLocationRepo struct{}

func (stubLocationRepo) Save(context.Context, *domain.Location) error { return nil }
func (stubLocationRepo) FindByLocationID(context.Context, domain.LocationPK) (*domain.Location, error) {
	return nil, nil
}
func (stubLocationRepo) FindByGroupName(context.Context, string) ([]*domain.Location, error) {
	return nil, nil
}
func (stubLocationRepo) FindAll(context.Context, int, int) ([]*domain.Location, error) {
	return nil, nil
}

type stubGroupRepo struct{}

func (stubGroupRepo) Save(context.Context, *domain.LocationGroup) error      { return nil }
func (stubGroupRepo) SaveAll(context.Context, []*domain.LocationGroup) error { return nil }
func (stubGroupRepo) FindByName(context.Context, string) (*domain.LocationGroup, error) {
	return nil, nil
}
func (stubGroupRepo) FindAll(context.Context, int, int) ([]*domain.LocationGroup, error) {
	return nil, nil
}

type stubOutboxRepo struct{}

func (stubOutboxRepo) Save(context.Context, *outbox.OutboxEvent) error      { return nil }
func (stubOutboxRepo) SaveAll(context.Context, []*outbox.OutboxEvent) error { return nil }
func (stubOutboxRepo) FindUnpublished(context.Context, int) ([]*outbox.OutboxEvent, error) {
	return nil, nil
}
func (stubOutboxRepo) MarkPublished(context.Context, string) error          { return nil }
func (stubOutboxRepo) IncrementRetry(context.Context, string, string) error { return nil }
func (stubOutboxRepo) DeletePublished(context.Context, int64) error         { return nil }

func testDependencies(tp *fakeTracerProvider, mc *fakeMongoClient, producer *fakeProducer, consumer *fakeConsumer, publisher *fakePublisher, srv *fakeServer) appDependencies {
	return appDependencies{
		initTracing: func(ctx context.Context, cfg *tracing.Config) (tracerProvider, error) {
			return tp, nil
		},
		newMongoClient: func(ctx context.Context, cfg *mongodb.Config) (mongoClient, error) {
			return mc, nil
		},
		newProducer: func(cfg *kafka.Config, m *metrics.Metrics, logger *logging.Logger) eventProducer {
			return producer
		},
		newConsumer: func(cfg *kafka.Config, m *metrics.Metrics, logger *logging.Logger) eventConsumer {
			return consumer
		},
		newOutboxRepo: func(db *mongo.Database) outbox.Repository {
			return stubOutboxRepo{}
		},
		newLocationRepo: func(db *mongo.Database) application.LocationRepository {
			return stubLocationRepo{}
		},
		newGroupRepo: func(db *mongo.Database) application.LocationGroupRepository {
			return stubGroupRepo{}
		},
		newOutboxPublisher: func(repo outbox.Repository, producer outbox.EventProducer, logger *logging.Logger, m *metrics.Metrics, cfg *outbox.PublisherConfig) outboxPublisher {
			return publisher
		},
		newHTTPServer: func(addr string, handler http.Handler) httpServer {
			return srv
		},
	}
}

func TestRun_StartsAndShutsDown(t *testing.T) {
	tp := &fakeTracerProvider{}
	mc := &fakeMongoClient{}
	producer := &fakeProducer{}
	consumer := newFakeConsumer()
	publisher := &fakePublisher{}
	srv := newFakeServer()

	// The shutdown signal must not race ahead of server startup, so it is
	// sent only once the server goroutine is accepting.
	signalCh := make(chan os.Signal, 1)
	go func() {
		<-srv.listening
		signalCh <- syscall.SIGTERM
	}()

	err := run(context.Background(), loadConfig(), testDependencies(tp, mc, producer, consumer, publisher, srv), signalCh)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if publisher.startCalls != 1 || publisher.stopCalls != 1 {
		t.Errorf("publisher start/stop = %d/%d, want 1/1", publisher.startCalls, publisher.stopCalls)
	}
	if got, want := srv.listenCalls.Load(), int32(1); got != want {
		t.Errorf("server listen calls = %d, want %d", got, want)
	}
	if got, want := srv.shutdownCalls.Load(), int32(1); got != want {
		t.Errorf("server shutdown calls = %d, want %d", got, want)
	}
	if mc.closeCalls != 1 {
		t.Errorf("mongo close calls = %d, want 1", mc.closeCalls)
	}
	if producer.closeCalls != 1 {
		t.Errorf("producer close calls = %d, want 1", producer.closeCalls)
	}
	if tp.shutdownCalls != 1 {
		t.Errorf("tracer shutdown calls = %d, want 1", tp.shutdownCalls)
	}
	if eventType, ok := consumer.subscriptions[kafka.Topics.EquipmentStatusInbound]; !ok || eventType != cloudevents.EquipmentStatusReported {
		t.Errorf("consumer subscriptions = %#v", consumer.subscriptions)
	}
	if consumer.closeCalls != 1 {
		t.Errorf("consumer close calls = %d, want 1", consumer.closeCalls)
	}
}

func TestRun_MongoConnectFailure(t *testing.T) {
	deps := testDependencies(&fakeTracerProvider{}, &fakeMongoClient{}, &fakeProducer{}, newFakeConsumer(), &fakePublisher{}, newFakeServer())
	deps.newMongoClient = func(ctx context.Context, cfg *mongodb.Config) (mongoClient, error) {
		return nil, errors.New("connection refused")
	}

	err := run(context.Background(), loadConfig(), deps, nil)
	if err == nil {
		t.Fatal("run() error = nil, want connection error")
	}
}

func TestRun_OutboxPublisherFailure(t *testing.T) {
	publisher := &fakePublisher{startErr: errors.New("poll loop failed")}
	deps := testDependencies(&fakeTracerProvider{}, &fakeMongoClient{}, &fakeProducer{}, newFakeConsumer(), publisher, newFakeServer())

	err := run(context.Background(), loadConfig(), deps, nil)
	if err == nil {
		t.Fatal("run() error = nil, want publisher error")
	}
}

func TestRun_ContextCancellation(t *testing.T) {
	deps := testDependencies(&fakeTracerProvider{}, &fakeMongoClient{}, &fakeProducer{}, newFakeConsumer(), &fakePublisher{}, newFakeServer())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := run(ctx, loadConfig(), deps, make(chan os.Signal))
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
}
