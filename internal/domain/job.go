package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Job is one inbound form submission awaiting a reply. The form payload is
// passed through untouched; only well-known fields are read via the accessors.
type Job struct {
	ID         string         `json:"id"`
	ReceivedAt int64          `json:"receivedAt"` // epoch milliseconds
	Form       map[string]any `json:"form"`
}

func NewJob(form map[string]any) *Job {
	now := time.Now().UnixMilli()
	if form == nil {
		form = map[string]any{}
	}
	return &Job{
		ID:         fmt.Sprintf("%d-%s", now, uuid.NewString()[:8]),
		ReceivedAt: now,
		Form:       form,
	}
}

// FormField returns the first non-empty string value among the given keys.
// Non-string values are ignored.
func (j *Job) FormField(keys ...string) string {
	for _, k := range keys {
		if v, ok := j.Form[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func (j *Job) SenderName() string {
	return j.FormField("name", "fullName")
}

func (j *Job) SenderEmail() string {
	return j.FormField("email")
}

func (j *Job) Subject() string {
	return j.FormField("subject")
}

func (j *Job) Message() string {
	return j.FormField("message")
}
