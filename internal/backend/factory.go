package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"expensetracker/internal/amqp"
	"expensetracker/internal/events"
	"expensetracker/internal/kafka"
	"expensetracker/internal/storage"
	"expensetracker/internal/storage/memory"
	"expensetracker/internal/storage/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend opens the configured store and event publishers. An event
// transport that cannot be reached is logged and skipped; the ledger keeps
// working without it.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, err := f.createStore(config)
	if err != nil {
		return nil, err
	}

	publisher := f.createPublisher(ctx, config)

	return &BackendResult{
		Store:     store,
		Publisher: publisher,
		Cleanup: func() error {
			return errors.Join(publisher.Close(), store.Close())
		},
	}, nil
}

func (f *DefaultFactory) createStore(config Config) (storage.Store, error) {
	switch config.Type {
	case SQLiteBackend:
		repo, err := sqlite.NewRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return repo, nil
	case MemoryBackend:
		f.logger.Info("Initialized memory backend")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createPublisher(ctx context.Context, config Config) events.Publisher {
	var publishers events.Multi
	for _, transport := range config.Transports {
		switch transport {
		case AMQPTransport:
			client, err := amqp.NewClient(ctx, config.AMQPURL, config.AMQPExchange, config.AMQPQueue, config.AMQPMaxAttempts)
			if err != nil {
				f.logger.Warn("Failed to initialize AMQP client, continuing without it", "error", err)
				continue
			}
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			publishers = append(publishers, client)
		case KafkaTransport:
			pub, err := kafka.NewPublisher(config.KafkaBrokers, config.KafkaTopic)
			if err != nil {
				f.logger.Warn("Failed to initialize Kafka publisher, continuing without it", "error", err)
				continue
			}
			f.logger.Info("Initialized Kafka publisher",
				"brokers", config.KafkaBrokers,
				"topic", config.KafkaTopic)
			publishers = append(publishers, pub)
		}
	}

	switch len(publishers) {
	case 0:
		return events.Nop{}
	case 1:
		return publishers[0]
	default:
		return publishers
	}
}
