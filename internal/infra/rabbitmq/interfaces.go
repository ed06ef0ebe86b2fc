package rabbitmq

import (
	"context"

	"go.uber.org/zap"
)

type PublisherInterface interface {
	Publish(ctx context.Context, routingKey string, data any) error
}

var (
	_ PublisherInterface = (*Publisher)(nil)
	_ PublisherInterface = (*LogPublisher)(nil)
)

// LogPublisher stands in for the broker when none is configured. It only
// logs what would have been published.
type LogPublisher struct {
	Log *zap.Logger
}

func (p *LogPublisher) Publish(_ context.Context, routingKey string, data any) error {
	body, err := encode(routingKey, data)
	if err != nil {
		return err
	}
	p.Log.Info("event", zap.String("pattern", routingKey), zap.ByteString("body", body))
	return nil
}
