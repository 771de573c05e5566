package backend

import (
	"context"

	"expensetracker/internal/events"
	"expensetracker/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the created store and publisher with their cleanup.
type BackendResult struct {
	Store     storage.Store
	Publisher events.Publisher
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type       BackendType
	Transports []TransportType

	// SQLite specific
	SQLiteDBPath string

	// AMQP specific
	AMQPURL         string
	AMQPExchange    string
	AMQPQueue       string
	AMQPMaxAttempts int

	// Kafka specific
	KafkaBrokers []string
	KafkaTopic   string
}

// BackendType represents the type of storage backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// TransportType selects where ledger events are published.
type TransportType string

const (
	NoTransport    TransportType = "none"
	AMQPTransport  TransportType = "amqp"
	KafkaTransport TransportType = "kafka"
)

func (tt TransportType) String() string {
	return string(tt)
}

func (tt TransportType) IsValid() bool {
	switch tt {
	case NoTransport, AMQPTransport, KafkaTransport:
		return true
	default:
		return false
	}
}
