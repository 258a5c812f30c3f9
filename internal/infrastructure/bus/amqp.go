package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/hilthontt/guessit/internal/infrastructure/logging"
)

const (
	gameExchange = "game.events"

	roomKeyPrefix = "room."
	connKeyPrefix = "conn."
)

// AMQPBus is the Group Bus backed by a RabbitMQ topic exchange, for
// deployments running more than one instance. Every instance consumes
// from its own queue; binding keys mirror the local subscriptions, so a
// publish on any instance reaches the connections on all of them.
// Local dispatch is delegated to an embedded MemoryBus.
type AMQPBus struct {
	local   *MemoryBus
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string

	bindings map[string]int // routing key -> refcount
	mu       sync.Mutex     // protects bindings and channel operations

	logger logging.Logger
}

type wireEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func NewAMQPBus(uri, instanceID string, logger logging.Logger) (*AMQPBus, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		gameExchange, // name
		"topic",      // kind
		false,        // durable
		true,         // auto-delete
		false,        // internal
		false,        // no-wait
		nil,
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		"guessit."+instanceID, // name
		false,                 // durable
		true,                  // delete when unused
		true,                  // exclusive
		false,                 // no-wait
		nil,
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	b := &AMQPBus{
		local:    NewMemoryBus(logger),
		conn:     conn,
		channel:  ch,
		queue:    q.Name,
		bindings: make(map[string]int),
		logger:   logger,
	}

	if err := b.consume(); err != nil {
		conn.Close()
		return nil, err
	}

	return b, nil
}

func (b *AMQPBus) Close() {
	if b.channel != nil {
		b.channel.Close()
	}
	if b.conn != nil {
		b.conn.Close()
	}
}

func (b *AMQPBus) Attach(connectionID string, sink chan<- *Event) {
	b.local.Attach(connectionID, sink)
	if err := b.bind(connKeyPrefix + connectionID); err != nil {
		b.logger.Error(logging.RabbitMQ, logging.Subscribe, "failed to bind connection key", map[logging.ExtraKey]any{
			logging.ConnectionID: connectionID,
			logging.ErrorMessage: err.Error(),
		})
	}
}

func (b *AMQPBus) Detach(connectionID string) {
	b.unbind(connKeyPrefix + connectionID)
	b.local.Detach(connectionID)
}

func (b *AMQPBus) Subscribe(group, connectionID string) error {
	if err := b.local.Subscribe(group, connectionID); err != nil {
		return err
	}
	return b.bind(roomKeyPrefix + group)
}

func (b *AMQPBus) Unsubscribe(group, connectionID string) {
	b.local.Unsubscribe(group, connectionID)
	b.unbind(roomKeyPrefix + group)
}

func (b *AMQPBus) SendTo(ctx context.Context, connectionID string, event *Event) error {
	return b.publish(ctx, connKeyPrefix+connectionID, event)
}

func (b *AMQPBus) Broadcast(ctx context.Context, group string, event *Event) error {
	return b.publish(ctx, roomKeyPrefix+group, event)
}

func (b *AMQPBus) publish(ctx context.Context, key string, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	return b.channel.PublishWithContext(ctx,
		gameExchange, // exchange
		key,          // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (b *AMQPBus) bind(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bindings[key]++
	if b.bindings[key] > 1 {
		return nil
	}

	return b.channel.QueueBind(b.queue, key, gameExchange, false, nil)
}

func (b *AMQPBus) unbind(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bindings[key] == 0 {
		return
	}

	b.bindings[key]--
	if b.bindings[key] > 0 {
		return
	}

	delete(b.bindings, key)
	if err := b.channel.QueueUnbind(b.queue, key, gameExchange, nil); err != nil {
		b.logger.Warn(logging.RabbitMQ, logging.Subscribe, "failed to unbind key", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
}

func (b *AMQPBus) consume() error {
	deliveries, err := b.channel.Consume(
		b.queue, // queue
		"",      // consumer
		true,    // auto-ack
		true,    // exclusive
		false,   // no-local
		false,   // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	go func() {
		for d := range deliveries {
			var we wireEvent
			if err := json.Unmarshal(d.Body, &we); err != nil {
				b.logger.Warn(logging.RabbitMQ, logging.Delivery, "dropping undecodable event", map[logging.ExtraKey]any{
					logging.ErrorMessage: err.Error(),
				})
				continue
			}

			event := &Event{Type: we.Type, Data: we.Data}

			switch {
			case strings.HasPrefix(d.RoutingKey, roomKeyPrefix):
				_ = b.local.Broadcast(context.Background(), strings.TrimPrefix(d.RoutingKey, roomKeyPrefix), event)
			case strings.HasPrefix(d.RoutingKey, connKeyPrefix):
				_ = b.local.SendTo(context.Background(), strings.TrimPrefix(d.RoutingKey, connKeyPrefix), event)
			}
		}
	}()

	return nil
}
