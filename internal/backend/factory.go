package backend

import (
	"context"
	"fmt"
	"log/slog"

	"revgrid/internal/amqp"
	"revgrid/internal/services"
	"revgrid/internal/storage"
	"revgrid/internal/store"
	"revgrid/internal/store/memory"
)

// PublisherDialer opens the event publisher. Tests replace it.
type PublisherDialer func(url, exchange, queue string) (services.EventPublisher, func() error, error)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
	dial   PublisherDialer
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) *DefaultFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
		dial:   dialAMQP,
	}
}

// WithPublisherDialer overrides how the AMQP publisher is opened.
func (f *DefaultFactory) WithPublisherDialer(d PublisherDialer) *DefaultFactory {
	f.dial = d
	return f
}

func dialAMQP(url, exchange, queue string) (services.EventPublisher, func() error, error) {
	client, err := amqp.NewClient(url, exchange, queue)
	if err != nil {
		return nil, nil, err
	}
	return client, client.Close, nil
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		st  store.RecordStore
		err error
	)
	switch config.Type {
	case SQLiteBackend:
		st, err = storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case MemoryBackend:
		st = memory.New()
		f.logger.Info("Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	pub, closePub := f.publisher(config)
	svc := services.NewRecordService(st, pub)
	if closePub != nil {
		svc.AddCloser(closePub)
	}

	if config.SeedOnStart {
		n, err := svc.Reseed(ctx)
		if err != nil {
			svc.Close()
			return nil, fmt.Errorf("seed on start: %w", err)
		}
		f.logger.Info("Seeded store on start", "count", n)
	}

	return &BackendResult{
		Backend: svc,
		Cleanup: svc.Close,
	}, nil
}

// publisher returns nil when events are disabled or the broker is
// unreachable; the backend keeps serving without events.
func (f *DefaultFactory) publisher(config Config) (services.EventPublisher, func() error) {
	if config.AMQPURL == "" {
		return nil, nil
	}
	pub, closeFn, err := f.dial(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		return nil, nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return pub, closeFn
}
