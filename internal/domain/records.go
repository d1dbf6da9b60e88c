package domain

import "time"

// Reply is a composed outbound email, ready for the mailer.
type Reply struct {
	Recipient   string `json:"recipient"`
	Subject     string `json:"subject"`
	HTML        string `json:"html"`
	Text        string `json:"text"`
	MatchedRule string `json:"matchedRule,omitempty"`
}

// OutboxEntry records one successfully sent reply. Entries are immutable;
// the outbox list is bounded and evicts oldest first.
type OutboxEntry struct {
	ID      string            `json:"id,omitempty"`
	SentAt  string            `json:"sentAt"`
	To      string            `json:"to"`
	Subject string            `json:"subject"`
	Text    string            `json:"text"`
	HTML    string            `json:"html"`
	Section *string           `json:"section"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// LogEntry is one event in the append-only, best-effort trail.
type LogEntry struct {
	TS   string         `json:"ts"`
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

func NewLogEntry(eventType string, data map[string]any) LogEntry {
	return LogEntry{
		TS:   time.Now().UTC().Format(time.RFC3339),
		Type: eventType,
		Data: data,
	}
}

// DrainResult summarizes one bounded worker drain.
type DrainResult struct {
	Processed int   `json:"processed"`
	Remaining int64 `json:"remaining"`
	Deferred  int   `json:"deferred"`
	Skipped   int   `json:"skipped"`
	Failed    int   `json:"failed"`
	Throttled bool  `json:"throttled,omitempty"`
	Disabled  bool  `json:"disabled,omitempty"`
}
