package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher is the part of an AMQP channel the tracker needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitTracker struct {
	conn     *amqp.Connection
	ch       Publisher
	exchange string
	mu       sync.Mutex
}

// DialRabbit connects and declares a durable topic exchange; events are
// routed by their action name.
func DialRabbit(url, exchange string) (*RabbitTracker, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq exchange: %w", err)
	}
	return &RabbitTracker{conn: conn, ch: ch, exchange: exchange}, nil
}

func NewRabbitTracker(ch Publisher, exchange string) *RabbitTracker {
	return &RabbitTracker{ch: ch, exchange: exchange}
}

func (t *RabbitTracker) Track(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	// amqp channels are not safe for concurrent publishing.
	t.mu.Lock()
	defer t.mu.Unlock()

	err = t.ch.PublishWithContext(ctx, t.exchange, ev.Category+"."+ev.Action, false, false, amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    ev.ID,
		Timestamp:    ev.At,
		Type:         ev.Action,
		Body:         body,
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

func (t *RabbitTracker) Close() error {
	if t.conn == nil {
		return nil
	}
	return t.conn.Close()
}
