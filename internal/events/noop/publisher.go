package noop

import (
	"context"

	"go.uber.org/zap"

	"chainfly/internal/port"
)

type publisher struct {
	log *zap.Logger
}

// NewPublisher creates an EventPublisher that only logs events. It is used
// when no Kafka brokers are configured.
func NewPublisher(log *zap.Logger) port.EventPublisher {
	return &publisher{log: log}
}

func (p *publisher) Publish(_ context.Context, event port.Event) error {
	p.log.Debug("noop event", zap.String("type", event.Type), zap.String("key", event.Key))
	return nil
}

func (p *publisher) Close() error { return nil }
