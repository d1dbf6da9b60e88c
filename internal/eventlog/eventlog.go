package eventlog

import (
	"context"
	"encoding/json"

	"github.com/replydesk/responder/internal/domain"
	"github.com/replydesk/responder/pkg/logger"
)

type listStore interface {
	PushHead(ctx context.Context, key, value string) error
	Range(ctx context.Context, key string, start, stop int64) ([]string, error)
	Trim(ctx context.Context, key string, start, stop int64) error
}

// Log is the durable event trail. Appends are best effort: a log write must
// never abort the operation being logged, so failures are swallowed and only
// reported to the process logger.
type Log struct {
	store      listStore
	key        string
	maxEntries int
}

func New(store listStore, key string, maxEntries int) *Log {
	return &Log{store: store, key: key, maxEntries: maxEntries}
}

func (l *Log) Append(ctx context.Context, eventType string, data map[string]any) {
	entry := domain.NewLogEntry(eventType, data)

	payload, err := json.Marshal(entry)
	if err != nil {
		logger.Warnf("Failed to marshal log entry %s: %v", eventType, err)
		return
	}

	if err := l.store.PushHead(ctx, l.key, string(payload)); err != nil {
		logger.Warnf("Failed to append log entry %s: %v", eventType, err)
		return
	}

	if err := l.store.Trim(ctx, l.key, 0, int64(l.maxEntries)-1); err != nil {
		logger.Warnf("Failed to trim event log: %v", err)
	}
}

// Recent returns up to limit entries, newest first. Unparseable stored lines
// are surfaced as parse_error entries rather than dropped.
func (l *Log) Recent(ctx context.Context, limit int) ([]domain.LogEntry, error) {
	if limit <= 0 || limit > l.maxEntries {
		limit = l.maxEntries
	}

	raws, err := l.store.Range(ctx, l.key, 0, int64(limit)-1)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.LogEntry, 0, len(raws))
	for _, raw := range raws {
		var entry domain.LogEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			entries = append(entries, domain.LogEntry{
				Type: "parse_error",
				Data: map[string]any{"raw": raw},
			})
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
