package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"rolechat/internal/memory"
)

// MemoryIngestWorker drains queued memory snippets and writes them to the
// external memory API. Delivery is at-least-once; a failed write is logged
// and dropped rather than requeued, matching the swallow-and-log contract of
// memory storage.
type MemoryIngestWorker struct {
	conn      *amqp.Connection
	client    *memory.Client
	queueName string
	log       *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewMemoryIngestWorker(conn *amqp.Connection, client *memory.Client, queueName string, log *zap.Logger) *MemoryIngestWorker {
	if log == nil {
		log = zap.NewNop()
	}
	return &MemoryIngestWorker{
		conn:      conn,
		client:    client,
		queueName: queueName,
		log:       log,
	}
}

func (w *MemoryIngestWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var item memory.IngestItem
				if err := json.Unmarshal(d.Body, &item); err != nil {
					w.log.Warn("worker decode ingest item failed", zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}

				failed := false
				for _, tag := range item.ContainerTags {
					if err := w.client.Add(workerCtx, item.Content, tag); err != nil {
						w.log.Warn("worker memory store failed",
							zap.String("container_tag", tag),
							zap.Error(err))
						failed = true
					}
				}
				if failed {
					_ = d.Nack(false, false)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *MemoryIngestWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
