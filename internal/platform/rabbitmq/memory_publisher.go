package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"rolechat/internal/memory"
)

// MemoryPublisher hands memory-store snippets to the broker so the request
// path never blocks on the external memory API.
type MemoryPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewMemoryPublisher(conn *amqp.Connection, queueName string) *MemoryPublisher {
	return &MemoryPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *MemoryPublisher) Enqueue(ctx context.Context, item memory.IngestItem) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal ingest payload failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish ingest item failed: %w", err)
	}
	return nil
}
