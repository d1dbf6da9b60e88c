package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/replydesk/responder/internal/domain"
)

// ErrMalformedJob marks a popped record that failed to deserialize. The
// record has already been consumed from the queue; callers should log it and
// move on rather than abort the drain.
var ErrMalformedJob = errors.New("malformed job record")

// Small store-side interface so the queue can be tested with an in-memory fake.
type listStore interface {
	PushTail(ctx context.Context, key, value string) error
	PopHead(ctx context.Context, key string) (string, bool, error)
	Len(ctx context.Context, key string) (int64, error)
}

// Queue is a FIFO of inbound jobs over a durable list. Ordering holds only
// with a single drainer; the head pop itself is atomic at the store level.
type Queue struct {
	store listStore
	key   string
}

func New(store listStore, key string) *Queue {
	return &Queue{store: store, key: key}
}

func (q *Queue) Enqueue(ctx context.Context, job *domain.Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job %s: %w", job.ID, err)
	}

	if err := q.store.PushTail(ctx, q.key, string(payload)); err != nil {
		return fmt.Errorf("failed to enqueue job %s: %w", job.ID, err)
	}

	return nil
}

// Dequeue pops the next job. An empty queue returns (nil, nil). A record that
// cannot be parsed returns ErrMalformedJob; it is already consumed.
func (q *Queue) Dequeue(ctx context.Context) (*domain.Job, error) {
	raw, ok, err := q.store.PopHead(ctx, q.key)
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue job: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var job domain.Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJob, err)
	}

	return &job, nil
}

func (q *Queue) Length(ctx context.Context) (int64, error) {
	n, err := q.store.Len(ctx, q.key)
	if err != nil {
		return 0, fmt.Errorf("failed to get queue length: %w", err)
	}
	return n, nil
}
