package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"gopherai-docqa/internal/model"
)

const IngestEventType = "document.ingested"

// IngestEventPublisher sends one persistent message per published index.
type IngestEventPublisher struct {
	conn      *amqp.Connection
	queueName string

	mu sync.Mutex
	ch *amqp.Channel
}

func NewIngestEventPublisher(conn *amqp.Connection, queueName string) *IngestEventPublisher {
	return &IngestEventPublisher{conn: conn, queueName: queueName}
}

func (p *IngestEventPublisher) Publish(ctx context.Context, event model.IngestEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal ingest event failed: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, "", p.queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Type:         IngestEventType,
		Timestamp:    event.IngestedAt,
		Body:         payload,
	})
	if err != nil {
		_ = ch.Close()
		p.ch = nil
		return fmt.Errorf("publish ingest event failed: %w", err)
	}
	return nil
}

// channel returns the cached channel, reopening it after a failure.
func (p *IngestEventPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	if err := declare(ch, p.queueName); err != nil {
		_ = ch.Close()
		return nil, err
	}
	p.ch = ch
	return ch, nil
}

func (p *IngestEventPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return nil
	}
	err := p.ch.Close()
	p.ch = nil
	return err
}
