package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"service-shop-delivery/internal/domain"
	"service-shop-delivery/internal/logx"
)

var (
	errQueueFull    = errors.New("notification queue full")
	errQueueStopped = errors.New("notification queue stopped")
)

// QueueOptions configure Queue.
type QueueOptions struct {
	Workers      int
	Size         int
	Timeout      time.Duration
	DeadLettered prometheus.Counter
	Logger       logx.Logger
}

// Queue is the asynchronous notifier. Notify only enqueues; workers deliver
// in the background and failed messages end up in the dead-letter store.
type Queue struct {
	sender  Sender
	dead    DeadLetterStore
	ch      chan Message
	workers int
	timeout time.Duration

	deadLettered prometheus.Counter
	logger       logx.Logger
	newID        func() string

	mu      sync.RWMutex
	stopped bool
}

// NewQueue creates a Queue. Call Run to start the workers.
func NewQueue(sender Sender, dead DeadLetterStore, o QueueOptions) *Queue {
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.Size <= 0 {
		o.Size = 64
	}
	if o.Timeout <= 0 {
		o.Timeout = 5 * time.Second
	}
	if o.Logger == nil {
		o.Logger = logx.Nop()
	}
	return &Queue{
		sender:       sender,
		dead:         dead,
		ch:           make(chan Message, o.Size),
		workers:      o.Workers,
		timeout:      o.Timeout,
		deadLettered: o.DeadLettered,
		logger:       o.Logger,
		newID:        uuid.NewString,
	}
}

// Notify enqueues msgs without blocking. A message that does not fit is
// dead-lettered right away.
func (q *Queue) Notify(ctx context.Context, msgs ...Message) error {
	for _, m := range msgs {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	msgs = q.withRecordIDs(msgs)
	type rejection struct {
		m     Message
		cause error
	}
	var rejected []rejection

	q.mu.RLock()
	for _, m := range msgs {
		if q.stopped {
			rejected = append(rejected, rejection{m, errQueueStopped})
			continue
		}
		select {
		case q.ch <- m:
		default:
			rejected = append(rejected, rejection{m, errQueueFull})
		}
	}
	q.mu.RUnlock()

	for _, r := range rejected {
		q.deadLetter(ctx, r.m, r.cause)
	}
	return nil
}

// withRecordIDs returns msgs with a record ID on every user message. The
// caller's slice is not modified.
func (q *Queue) withRecordIDs(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		if m.Kind == KindUser && m.RecordID == "" {
			m.RecordID = q.newID()
		}
		out[i] = m
	}
	return out
}

// Run starts the workers and blocks until ctx is cancelled. Messages still
// buffered at that point are dead-lettered.
func (q *Queue) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < q.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.work(ctx)
		}()
	}
	q.logger.Info("notification queue started", logx.Int("workers", q.workers))

	<-ctx.Done()
	q.mu.Lock()
	q.stopped = true
	q.mu.Unlock()
	wg.Wait()

	drained := 0
	for {
		select {
		case m := <-q.ch:
			q.deadLetter(ctx, m, errQueueStopped)
			drained++
		default:
			q.logger.Info("notification queue stopped", logx.Int("dead_lettered", drained))
			return nil
		}
	}
}

func (q *Queue) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-q.ch:
			q.deliver(ctx, m)
		}
	}
}

func (q *Queue) deliver(ctx context.Context, m Message) {
	dctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()
	if err := q.sender.Dispatch(dctx, m); err != nil {
		q.deadLetter(ctx, m, err)
	}
}

func (q *Queue) deadLetter(ctx context.Context, m Message, cause error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), q.timeout)
	defer cancel()

	payload, err := json.Marshal(m)
	if err != nil {
		q.logger.Error("dead letter encode failed", logx.Err(err))
		return
	}
	d := &domain.DeadLetter{
		ID:        q.newID(),
		Payload:   payload,
		Attempts:  1,
		LastError: cause.Error(),
	}
	if err := q.dead.Save(ctx, d); err != nil {
		q.logger.Error("dead letter not saved",
			logx.String("topic", string(m.Topic)),
			logx.String("cause", cause.Error()),
			logx.Err(err),
		)
		return
	}
	if q.deadLettered != nil {
		q.deadLettered.Inc()
	}
	q.logger.Warn("notification dead-lettered",
		logx.String("event", "notification_dead_lettered"),
		logx.String("id", d.ID),
		logx.String("kind", string(m.Kind)),
		logx.String("topic", string(m.Topic)),
		logx.String("cause", cause.Error()),
	)
}

// Replay re-dispatches up to limit dead letters and returns how many were
// delivered. Delivered letters are removed; failures bump the attempt count.
func (q *Queue) Replay(ctx context.Context, limit int) (int, error) {
	letters, err := q.dead.List(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("list dead letters: %w", err)
	}

	delivered := 0
	for _, d := range letters {
		if ctx.Err() != nil {
			return delivered, ctx.Err()
		}

		var m Message
		if err := json.Unmarshal(d.Payload, &m); err != nil {
			q.logger.Error("dead letter undecodable, dropping", logx.String("id", d.ID), logx.Err(err))
			if err := q.dead.Delete(ctx, d.ID); err != nil {
				return delivered, err
			}
			continue
		}

		dctx, cancel := context.WithTimeout(ctx, q.timeout)
		err := q.sender.Dispatch(dctx, m)
		cancel()
		if err != nil {
			if markErr := q.dead.MarkFailed(ctx, d.ID, err.Error()); markErr != nil {
				return delivered, markErr
			}
			continue
		}
		if err := q.dead.Delete(ctx, d.ID); err != nil {
			return delivered, err
		}
		delivered++
	}
	return delivered, nil
}
