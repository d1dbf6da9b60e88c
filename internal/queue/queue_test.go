package queue

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/replydesk/responder/internal/domain"
)

// fakeListStore is an in-memory stand-in for the Valkey list commands.
type fakeListStore struct {
	lists map[string][]string

	pushErr error
	popErr  error
}

func newFakeListStore() *fakeListStore {
	return &fakeListStore{lists: map[string][]string{}}
}

func (s *fakeListStore) PushTail(ctx context.Context, key, value string) error {
	if s.pushErr != nil {
		return s.pushErr
	}
	s.lists[key] = append(s.lists[key], value)
	return nil
}

func (s *fakeListStore) PopHead(ctx context.Context, key string) (string, bool, error) {
	if s.popErr != nil {
		return "", false, s.popErr
	}
	list := s.lists[key]
	if len(list) == 0 {
		return "", false, nil
	}
	head := list[0]
	s.lists[key] = list[1:]
	return head, true, nil
}

func (s *fakeListStore) Len(ctx context.Context, key string) (int64, error) {
	return int64(len(s.lists[key])), nil
}

func TestQueue_FIFO(t *testing.T) {
	ctx := context.Background()
	store := newFakeListStore()
	q := New(store, "test:jobs")

	for _, id := range []string{"first", "second", "third"} {
		job := &domain.Job{ID: id, Form: map[string]any{"email": id + "@example.com"}}
		if err := q.Enqueue(ctx, job); err != nil {
			t.Fatalf("Enqueue(%s) returned error: %v", id, err)
		}
	}

	n, err := q.Length(ctx)
	if err != nil {
		t.Fatalf("Length returned error: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected length 3, got %d", n)
	}

	for _, want := range []string{"first", "second", "third"} {
		job, err := q.Dequeue(ctx)
		if err != nil {
			t.Fatalf("Dequeue returned error: %v", err)
		}
		if job == nil || job.ID != want {
			t.Fatalf("expected job %q, got %v", want, job)
		}
	}
}

func TestQueue_EmptyDequeue(t *testing.T) {
	ctx := context.Background()
	q := New(newFakeListStore(), "test:jobs")

	job, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("expected no error on empty queue, got %v", err)
	}
	if job != nil {
		t.Fatalf("expected nil job on empty queue, got %v", job)
	}
}

func TestQueue_MalformedRecordIsConsumed(t *testing.T) {
	ctx := context.Background()
	store := newFakeListStore()
	store.lists["test:jobs"] = []string{"{not json", `{"id":"ok","form":{}}`}

	q := New(store, "test:jobs")

	_, err := q.Dequeue(ctx)
	if !errors.Is(err, ErrMalformedJob) {
		t.Fatalf("expected ErrMalformedJob, got %v", err)
	}

	// The bad record must be gone so the next pop reaches the valid one.
	job, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("expected valid job after malformed record, got %v", err)
	}
	if job == nil || job.ID != "ok" {
		t.Fatalf("expected job ok, got %v", job)
	}
}

func TestQueue_StorageErrorsAreWrapped(t *testing.T) {
	ctx := context.Background()
	store := newFakeListStore()
	store.popErr = fmt.Errorf("connection refused")

	q := New(store, "test:jobs")

	_, err := q.Dequeue(ctx)
	if err == nil {
		t.Fatalf("expected storage error to surface")
	}
	if errors.Is(err, ErrMalformedJob) {
		t.Fatalf("storage error must not look like a malformed record: %v", err)
	}
}

func TestQueue_RoundTripPreservesForm(t *testing.T) {
	ctx := context.Background()
	q := New(newFakeListStore(), "test:jobs")

	in := domain.NewJob(map[string]any{
		"name":    "Ada",
		"email":   "ada@example.com",
		"message": "My kettle is broken.",
	})

	if err := q.Enqueue(ctx, in); err != nil {
		t.Fatalf("Enqueue returned error: %v", err)
	}

	out, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("Dequeue returned error: %v", err)
	}
	if out.ID != in.ID || out.ReceivedAt != in.ReceivedAt {
		t.Fatalf("expected identity preserved, got %v", out)
	}
	if out.SenderEmail() != "ada@example.com" {
		t.Fatalf("expected form fields preserved, got %v", out.Form)
	}
}
