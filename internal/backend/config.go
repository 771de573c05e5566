package backend

import (
	"fmt"

	"expensetracker/internal/config"
)

const defaultAMQPMaxAttempts = 5

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	transports := make([]TransportType, 0, len(appConfig.EventsTransports))
	for _, t := range appConfig.EventsTransports {
		transports = append(transports, TransportType(t))
	}

	cfg := Config{
		Type:       BackendType(appConfig.DataBackend),
		Transports: transports,

		SQLiteDBPath: appConfig.SQLiteDBPath,

		AMQPURL:         appConfig.AMQPURL,
		AMQPExchange:    appConfig.AMQPExchange,
		AMQPQueue:       appConfig.AMQPQueue,
		AMQPMaxAttempts: defaultAMQPMaxAttempts,

		KafkaBrokers: appConfig.KafkaBrokers,
		KafkaTopic:   appConfig.KafkaTopic,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Type == SQLiteBackend && c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required for sqlite backend")
	}

	for _, t := range c.Transports {
		switch t {
		case NoTransport:
		case AMQPTransport:
			if c.AMQPURL == "" || c.AMQPExchange == "" || c.AMQPQueue == "" {
				return fmt.Errorf("AMQP url, exchange and queue are required for amqp transport")
			}
		case KafkaTransport:
			if len(c.KafkaBrokers) == 0 || c.KafkaTopic == "" {
				return fmt.Errorf("Kafka brokers and topic are required for kafka transport")
			}
		default:
			return fmt.Errorf("invalid events transport: %s", t)
		}
	}

	return nil
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	return []string{MemoryBackend.String(), SQLiteBackend.String()}
}
