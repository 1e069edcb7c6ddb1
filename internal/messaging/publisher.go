package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"npc-server/shared/interfaces"
	sharedMessaging "npc-server/shared/messaging"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

var (
	_ interfaces.EventPublisher = (*RabbitMQEventPublisher)(nil)
	_ interfaces.EventPublisher = NoopPublisher{}
)

// amqpChannel - подмножество *amqp.Channel, которое нужно издателю.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQEventPublisher публикует доменные события в topic exchange.
type RabbitMQEventPublisher struct {
	ch       amqpChannel
	exchange string
	logger   *zap.Logger
}

// NewRabbitMQEventPublisher открывает канал, объявляет exchange и очередь событий и связывает их.
func NewRabbitMQEventPublisher(conn *amqp.Connection, queueName string, logger *zap.Logger) (*RabbitMQEventPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}
	if queueName == "" {
		queueName = sharedMessaging.DefaultEventsQueueName
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("event publisher: failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		sharedMessaging.EventsExchangeName,
		sharedMessaging.EventsExchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", sharedMessaging.EventsExchangeName, err)
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare queue '%s': %w", queueName, err)
	}
	for _, key := range []string{sharedMessaging.RoutingKeyCharacterGenerated, sharedMessaging.RoutingKeyConversationTurn} {
		if err := ch.QueueBind(queueName, key, sharedMessaging.EventsExchangeName, false, nil); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("failed to bind queue '%s' to '%s': %w", queueName, key, err)
		}
	}

	logger.Info("Event exchange and queue declared",
		zap.String("exchange", sharedMessaging.EventsExchangeName),
		zap.String("queue", queueName),
	)
	return newRabbitMQEventPublisher(ch, logger), nil
}

func newRabbitMQEventPublisher(ch amqpChannel, logger *zap.Logger) *RabbitMQEventPublisher {
	return &RabbitMQEventPublisher{
		ch:       ch,
		exchange: sharedMessaging.EventsExchangeName,
		logger:   logger.Named("EventPublisher"),
	}
}

// PublishCharacterGenerated публикует событие о новом персонаже.
func (p *RabbitMQEventPublisher) PublishCharacterGenerated(ctx context.Context, event sharedMessaging.CharacterGeneratedEvent) error {
	return p.publish(ctx, sharedMessaging.RoutingKeyCharacterGenerated, event)
}

// PublishConversationTurn публикует событие о новой паре реплик.
func (p *RabbitMQEventPublisher) PublishConversationTurn(ctx context.Context, event sharedMessaging.ConversationTurnEvent) error {
	return p.publish(ctx, sharedMessaging.RoutingKeyConversationTurn, event)
}

func (p *RabbitMQEventPublisher) publish(ctx context.Context, routingKey string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", routingKey, err)
	}

	err = p.ch.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish event", zap.String("routing_key", routingKey), zap.Error(err))
		return fmt.Errorf("failed to publish event %s: %w", routingKey, err)
	}

	p.logger.Debug("Event published", zap.String("routing_key", routingKey), zap.Int("bytes", len(body)))
	return nil
}

// Close закрывает канал RabbitMQ.
func (p *RabbitMQEventPublisher) Close() error {
	if p.ch != nil {
		return p.ch.Close()
	}
	return nil
}

// NoopPublisher используется, когда RabbitMQ не настроен.
type NoopPublisher struct{}

func (NoopPublisher) PublishCharacterGenerated(context.Context, sharedMessaging.CharacterGeneratedEvent) error {
	return nil
}

func (NoopPublisher) PublishConversationTurn(context.Context, sharedMessaging.ConversationTurnEvent) error {
	return nil
}
