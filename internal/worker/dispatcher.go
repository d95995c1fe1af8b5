package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nexcrm/outreach-gateway/internal/dispatcher"
	"github.com/nexcrm/outreach-gateway/internal/kafka"
	"github.com/nexcrm/outreach-gateway/internal/model"
	"github.com/nexcrm/outreach-gateway/internal/repository"
)

// MessageSource is the slice of the Kafka consumer the worker needs.
type MessageSource interface {
	Fetch(ctx context.Context) (kafka.Message, error)
	Commit(ctx context.Context, m kafka.Message) error
}

// DispatchWorker:
// - fetches dispatch envelopes from Kafka,
// - runs each attempt through the Dispatcher,
// - batches message status updates.
//
// The queue guarantees at-least-once delivery; providers tolerate duplicate
// sends and status writes are idempotent, so no dedup happens here.
type DispatchWorker struct {
	DB       *sqlx.DB
	Consumer MessageSource
	Messages repository.MessagesRepository
	Dispatch *dispatcher.Dispatcher

	Workers   int
	BatchSize int
	BatchWait time.Duration
}

func NewDispatchWorker(
	db *sqlx.DB,
	consumer MessageSource,
	msgRepo repository.MessagesRepository,
	disp *dispatcher.Dispatcher,
) *DispatchWorker {
	return &DispatchWorker{
		DB:        db,
		Consumer:  consumer,
		Messages:  msgRepo,
		Dispatch:  disp,
		Workers:   32,
		BatchSize: 200,
		BatchWait: 300 * time.Millisecond,
	}
}

type updateItem struct {
	id     string
	status model.MessageStatus // sent | failed
}

// Run starts the worker and blocks until ctx is cancelled.
func (w *DispatchWorker) Run(ctx context.Context) error {
	if w.Dispatch == nil {
		return errors.New("dispatch-worker: dispatcher is required")
	}
	if w.Workers <= 0 {
		w.Workers = 32
	}
	if w.BatchSize <= 0 {
		w.BatchSize = 200
	}
	if w.BatchWait <= 0 {
		w.BatchWait = 300 * time.Millisecond
	}

	updates := make(chan updateItem, w.BatchSize*2)

	go w.runBatchWriter(ctx, updates)

	msgCh := make(chan kafka.Message, w.Workers*2)

	// fetcher
	go func() {
		defer close(msgCh)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				m, err := w.Consumer.Fetch(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					log.Printf("[dispatch] kafka fetch err: %v", err)
					time.Sleep(200 * time.Millisecond)
					continue
				}
				msgCh <- m
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < w.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.runProcessor(ctx, msgCh, updates)
		}()
	}

	<-ctx.Done()
	// updates must not close while a processor can still send on it
	wg.Wait()
	close(updates)
	return nil
}

func (w *DispatchWorker) runProcessor(ctx context.Context, in <-chan kafka.Message, out chan<- updateItem) {
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-in:
			if !ok {
				return
			}
			w.processOne(ctx, m, out)
		}
	}
}

func (w *DispatchWorker) processOne(ctx context.Context, m kafka.Message, out chan<- updateItem) {
	var env model.DispatchEnvelope
	if err := json.Unmarshal(m.Value, &env); err != nil || env.ID == "" {
		_ = w.Consumer.Commit(ctx, m) // poison, commit and skip
		if err != nil {
			log.Printf("[dispatch] bad envelope json: %v", err)
		} else {
			log.Printf("[dispatch] envelope missing id")
		}
		return
	}

	// the envelope id is authoritative for the persisted row
	env.Message.MessageID = env.ID
	env.Message.TenantID = env.TenantID

	res := w.Dispatch.Dispatch(ctx, env.Message)

	select {
	case out <- updateItem{id: env.ID, status: res.Status}:
	case <-ctx.Done():
		// not committed; the attempt is redelivered and the status write is
		// idempotent
		return
	}

	// always commit: at-least-once, idempotency lives in the DB layer
	if err := w.Consumer.Commit(ctx, m); err != nil {
		log.Printf("[dispatch] commit err: %v", err)
	}
}

// runBatchWriter flushes status updates by size or time.
func (w *DispatchWorker) runBatchWriter(ctx context.Context, in <-chan updateItem) {
	tick := time.NewTicker(w.BatchWait)
	defer tick.Stop()

	var sent, failed []string

	reset := func() {
		sent = sent[:0]
		failed = failed[:0]
	}

	flush := func() {
		if len(sent) == 0 && len(failed) == 0 {
			return
		}

		tx, err := w.DB.BeginTxx(ctx, nil)
		if err != nil {
			log.Printf("[dispatch] begin tx err: %v", err)
			reset()
			return
		}
		defer func() { _ = tx.Rollback() }()

		if len(sent) > 0 {
			if err := w.Messages.BatchApplyStatus(ctx, tx, sent, model.StatusSent); err != nil {
				log.Printf("[dispatch] batch update sent err: %v", err)
				return
			}
		}
		if len(failed) > 0 {
			if err := w.Messages.BatchApplyStatus(ctx, tx, failed, model.StatusFailed); err != nil {
				log.Printf("[dispatch] batch update failed err: %v", err)
				return
			}
		}

		if err := tx.Commit(); err != nil {
			log.Printf("[dispatch] tx commit err: %v", err)
			return
		}

		log.Printf("[dispatch] flushed: sent=%d failed=%d", len(sent), len(failed))
		reset()
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return

		case u, ok := <-in:
			if !ok {
				flush()
				return
			}
			if u.status == model.StatusSent {
				sent = append(sent, u.id)
			} else {
				failed = append(failed, u.id)
			}

			if len(sent)+len(failed) >= w.BatchSize {
				flush()
			}

		case <-tick.C:
			flush()
		}
	}
}
