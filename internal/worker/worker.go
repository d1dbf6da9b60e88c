package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/replydesk/responder/environments"
	"github.com/replydesk/responder/internal/domain"
	"github.com/replydesk/responder/internal/matcher"
	"github.com/replydesk/responder/internal/queue"
	"github.com/replydesk/responder/pkg/logger"
)

// Small internal interfaces so the drain loop can be tested with fakes.
type jobQueue interface {
	Enqueue(ctx context.Context, job *domain.Job) error
	Dequeue(ctx context.Context) (*domain.Job, error)
	Length(ctx context.Context) (int64, error)
}

type settingsLoader interface {
	Load(ctx context.Context) (domain.Settings, error)
}

type replyComposer interface {
	Build(ctx context.Context, settings domain.Settings, job *domain.Job) domain.Reply
}

type mailer interface {
	Send(ctx context.Context, to, subject, html, text, from string) (string, error)
}

type sentRecorder interface {
	Record(ctx context.Context, entry domain.OutboxEntry) error
}

type eventLogger interface {
	Append(ctx context.Context, eventType string, data map[string]any)
}

type valueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Worker drains the job queue in bounded batches with at-least-once
// semantics. One drain is strictly sequential; concurrent drains are only
// guarded by the advisory last-run throttle, as the head pop is atomic and
// interleaved drains cannot duplicate-process a single record.
type Worker struct {
	queue      jobQueue
	settings   settingsLoader
	composer   replyComposer
	mailer     mailer
	outbox     sentRecorder
	events     eventLogger
	lastRun    valueStore
	lastRunKey string
	config     environments.WorkerConfig
}

func New(
	q jobQueue,
	settings settingsLoader,
	composer replyComposer,
	m mailer,
	outbox sentRecorder,
	events eventLogger,
	lastRun valueStore,
	lastRunKey string,
	config environments.WorkerConfig,
) *Worker {
	return &Worker{
		queue:      q,
		settings:   settings,
		composer:   composer,
		mailer:     m,
		outbox:     outbox,
		events:     events,
		lastRun:    lastRun,
		lastRunKey: lastRunKey,
		config:     config,
	}
}

// RunOnce performs one bounded drain of at most maxBatch dequeues.
// Delay-deferred and skipped jobs consume a batch slot but are not counted
// as processed. A storage error ends the drain with the partial result.
func (w *Worker) RunOnce(ctx context.Context, maxBatch int) (domain.DrainResult, error) {
	if maxBatch <= 0 {
		maxBatch = w.config.MaxBatch
	}

	result := domain.DrainResult{}

	if w.throttled(ctx) {
		result.Throttled = true
		result.Remaining = w.queueLength(ctx)
		return result, nil
	}

	settings, err := w.settings.Load(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to load settings: %w", err)
	}

	// With the responder disabled, jobs stay queued until it is re-enabled.
	if !settings.EnableAutoResponder {
		w.events.Append(ctx, "worker.disabled", nil)
		result.Disabled = true
		result.Remaining = w.queueLength(ctx)
		return result, nil
	}

	now := time.Now().UnixMilli()
	deferredIDs := map[string]bool{}

	for i := 0; i < maxBatch; i++ {
		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, queue.ErrMalformedJob) {
				// The record is consumed; drop it and keep draining.
				logger.Warnf("Dropping malformed job record: %v", err)
				w.events.Append(ctx, "worker.job.malformed", map[string]any{
					"error": err.Error(),
				})
				result.Skipped++
				continue
			}

			result.Remaining = w.queueLength(ctx)
			return result, fmt.Errorf("drain stopped after %d processed: %w", result.Processed, err)
		}
		if job == nil {
			break
		}

		matched, _ := matcher.Match(settings, job)
		delay := settings.DelayFor(matched)

		if delay > 0 {
			notBefore := job.ReceivedAt + int64(delay)*1000
			if now < notBefore {
				// Back to the tail so ready jobs behind it still drain
				// this cycle. FIFO is intentionally given up here.
				if err := w.queue.Enqueue(ctx, job); err != nil {
					result.Remaining = w.queueLength(ctx)
					return result, fmt.Errorf("failed to re-enqueue delayed job %s: %w", job.ID, err)
				}

				// Seeing a job a second time means the head has wrapped
				// around to jobs deferred this drain. Stop instead of
				// spinning on them until the batch runs out.
				if deferredIDs[job.ID] {
					break
				}
				deferredIDs[job.ID] = true

				w.events.Append(ctx, "worker.job.deferred", map[string]any{
					"id":           job.ID,
					"delaySeconds": delay,
				})
				result.Deferred++
				continue
			}
		}

		if job.SenderEmail() == "" {
			w.events.Append(ctx, "worker.job.skipped", map[string]any{
				"id":     job.ID,
				"reason": "no recipient",
			})
			result.Skipped++
			continue
		}

		if w.deliver(ctx, settings, job, matched) {
			result.Processed++
		} else {
			result.Failed++
			if w.config.StopAfterSendFailure {
				break
			}
		}
	}

	w.recordLastRun(ctx)
	result.Remaining = w.queueLength(ctx)

	return result, nil
}

func (w *Worker) deliver(
	ctx context.Context,
	settings domain.Settings,
	job *domain.Job,
	matched *domain.Rule,
) bool {
	reply := w.composer.Build(ctx, settings, job)

	messageID, err := w.mailer.Send(ctx, reply.Recipient, reply.Subject, reply.HTML, reply.Text, settings.FromEmail)
	if err != nil {
		// No automatic retry of send failures; the job is consumed.
		logger.Errorf("Failed to send reply for job %s: %v", job.ID, err)
		w.events.Append(ctx, "mail.send.error", map[string]any{
			"id":    job.ID,
			"to":    reply.Recipient,
			"error": err.Error(),
		})
		return false
	}

	entry := domain.OutboxEntry{
		ID:      messageID,
		To:      reply.Recipient,
		Subject: reply.Subject,
		Text:    reply.Text,
		HTML:    reply.HTML,
		Meta:    map[string]string{"jobId": job.ID},
	}
	if reply.MatchedRule != "" {
		section := reply.MatchedRule
		entry.Section = &section
	}

	if err := w.outbox.Record(ctx, entry); err != nil {
		// The mail went out; losing the record must not fail the drain.
		logger.Warnf("Failed to record outbox entry for job %s: %v", job.ID, err)
		w.events.Append(ctx, "outbox.record.error", map[string]any{
			"id":    job.ID,
			"error": err.Error(),
		})
	}

	w.events.Append(ctx, "mail.sent", map[string]any{
		"id":      job.ID,
		"to":      reply.Recipient,
		"section": reply.MatchedRule,
	})

	return true
}

// throttled reports whether the previous drain finished less than
// MinRunInterval ago. The timestamp is advisory only: a second caller racing
// past the read can still slip through, which at-least-once allows.
func (w *Worker) throttled(ctx context.Context) bool {
	if w.config.MinRunInterval <= 0 {
		return false
	}

	raw, ok, err := w.lastRun.Get(ctx, w.lastRunKey)
	if err != nil || !ok {
		return false
	}

	last, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false
	}

	return time.Now().UnixMilli()-last < w.config.MinRunInterval.Milliseconds()
}

func (w *Worker) recordLastRun(ctx context.Context) {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if err := w.lastRun.Set(ctx, w.lastRunKey, ts); err != nil {
		logger.Warnf("Failed to record worker last-run timestamp: %v", err)
	}
}

func (w *Worker) queueLength(ctx context.Context) int64 {
	n, err := w.queue.Length(ctx)
	if err != nil {
		logger.Warnf("Failed to get queue length: %v", err)
		return 0
	}
	return n
}
