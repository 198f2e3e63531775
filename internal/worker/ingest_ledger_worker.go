package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"gopherai-docqa/internal/model"
)

type LedgerStore interface {
	Create(ctx context.Context, record *model.DocumentRecord) error
}

// IngestLedgerWorker consumes ingest events and records them in the ledger.
type IngestLedgerWorker struct {
	conn      *amqp.Connection
	store     LedgerStore
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewIngestLedgerWorker(conn *amqp.Connection, store LedgerStore, queueName string) *IngestLedgerWorker {
	return &IngestLedgerWorker{
		conn:      conn,
		store:     store,
		queueName: queueName,
	}
}

func (w *IngestLedgerWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	ch, err := w.conn.Channel()
	if err != nil {
		return fmt.Errorf("open worker channel failed: %w", err)
	}
	if _, err := ch.QueueDeclare(w.queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}
	if err := ch.Qos(8, 0, false); err != nil {
		_ = ch.Close()
		return fmt.Errorf("set worker qos failed: %w", err)
	}
	deliveries, err := ch.Consume(w.queueName, "docqa-ledger", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

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
				if err := w.handle(workerCtx, d.Body); err != nil {
					log.Printf("ledger worker: %v", err)
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *IngestLedgerWorker) handle(ctx context.Context, body []byte) error {
	var event model.IngestEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode ingest event failed: %w", err)
	}
	if event.ID == "" || event.Digest == "" {
		return fmt.Errorf("ingest event missing id or digest")
	}
	record := model.NewDocumentRecord(event)
	return w.store.Create(ctx, &record)
}

func (w *IngestLedgerWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
