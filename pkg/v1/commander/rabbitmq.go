package commander

import (
	"context"
	"fmt"
)

//go:generate mockery --name RabbitMQPublisher --filename rabbitmqpublisher.go

// RabbitMQPublisher is RabbitMQ messages publisher.
type RabbitMQPublisher interface {
	Publish(context.Context, string, []byte) error
}

// RabbitMQSender publishes commands to routing key consumed by aggregator.
type RabbitMQSender struct {
	publisher     RabbitMQPublisher
	cmdRoutingKey string
}

// NewRabbitMQSender returns new RabbitMQSender publishing to cmdRoutingKey.
func NewRabbitMQSender(publisher RabbitMQPublisher, cmdRoutingKey string) RabbitMQSender {
	return RabbitMQSender{
		publisher:     publisher,
		cmdRoutingKey: cmdRoutingKey,
	}
}

// Send publishes message to RabbitMQSender's routing key.
func (s RabbitMQSender) Send(ctx context.Context, msg []byte) error {
	if err := s.publisher.Publish(ctx, s.cmdRoutingKey, msg); err != nil {
		return fmt.Errorf("can't publish to %q: %w", s.cmdRoutingKey, err)
	}

	return nil
}
