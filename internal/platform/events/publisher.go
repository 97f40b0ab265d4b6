// Package events ships transfer status events to a message broker.
// Publishing is best effort: callers log failures and carry on.
package events

import (
	"context"
	"log/slog"

	"medtransit/internal/platform/config"
)

// Publisher sends one serialized event. key groups events that must stay
// ordered (one schedule on one date).
type Publisher interface {
	Publish(ctx context.Context, key string, payload []byte) error
	Close() error
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, string, []byte) error { return nil }
func (Noop) Close() error                                  { return nil }

// FromConfig connects the configured broker. NATS wins when both are set;
// neither yields Noop.
func FromConfig(ctx context.Context, cfg config.Events, logger *slog.Logger) (Publisher, error) {
	switch {
	case cfg.NATSURL != "":
		p, err := NewNATS(ctx, cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			return nil, err
		}
		logger.Info("status events publishing to NATS JetStream", "subject", cfg.NATSSubject)
		return p, nil
	case len(cfg.KafkaBrokers) > 0:
		p, err := NewKafka(ctx, cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, err
		}
		logger.Info("status events publishing to Kafka", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
		return p, nil
	default:
		logger.Info("no event broker configured, status events are dropped")
		return Noop{}, nil
	}
}
