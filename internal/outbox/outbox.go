package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/replydesk/responder/internal/domain"
	"github.com/replydesk/responder/pkg/logger"
)

type listStore interface {
	PushHead(ctx context.Context, key, value string) error
	Len(ctx context.Context, key string) (int64, error)
	Range(ctx context.Context, key string, start, stop int64) ([]string, error)
	Trim(ctx context.Context, key string, start, stop int64) error
}

// Outbox is the append-only record of sent replies, newest first, bounded by
// maxEntries with oldest entries evicted on each append.
type Outbox struct {
	store      listStore
	key        string
	maxEntries int
}

func New(store listStore, key string, maxEntries int) *Outbox {
	return &Outbox{store: store, key: key, maxEntries: maxEntries}
}

func (o *Outbox) Record(ctx context.Context, entry domain.OutboxEntry) error {
	if entry.SentAt == "" {
		entry.SentAt = time.Now().UTC().Format(time.RFC3339)
	}
	if entry.Meta == nil {
		entry.Meta = map[string]string{}
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox entry: %w", err)
	}

	if err := o.store.PushHead(ctx, o.key, string(payload)); err != nil {
		return fmt.Errorf("failed to record outbox entry: %w", err)
	}

	if err := o.store.Trim(ctx, o.key, 0, int64(o.maxEntries)-1); err != nil {
		// The entry is recorded; a failed trim only delays eviction.
		logger.Warnf("Failed to trim outbox: %v", err)
	}

	return nil
}

// List returns entries newest first. approxTotal is the current list length;
// entries that fail to parse are skipped.
func (o *Outbox) List(ctx context.Context, offset, limit int) ([]domain.OutboxEntry, int64, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}

	total, err := o.store.Len(ctx, o.key)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get outbox length: %w", err)
	}

	raws, err := o.store.Range(ctx, o.key, int64(offset), int64(offset+limit)-1)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list outbox: %w", err)
	}

	entries := make([]domain.OutboxEntry, 0, len(raws))
	for _, raw := range raws {
		var entry domain.OutboxEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			logger.Warnf("Skipping unparseable outbox entry: %v", err)
			continue
		}
		entries = append(entries, entry)
	}

	return entries, total, nil
}
