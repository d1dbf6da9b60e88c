package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/replydesk/responder/internal/domain"
	"github.com/replydesk/responder/pkg/logger"
)

// drainRunner matches the worker's RunOnce and lets us unit test the
// scheduler with a small fake implementation.
type drainRunner interface {
	RunOnce(ctx context.Context, maxBatch int) (domain.DrainResult, error)
}

// Scheduler triggers a queue drain on a fixed interval. A manual trigger
// through the worker endpoint may overlap a scheduled run; the worker's
// advisory throttle is the only guard between them.
type Scheduler struct {
	worker   drainRunner
	interval time.Duration
	maxBatch int

	running  bool
	stopChan chan struct{}
	doneChan chan struct{}
	mu       sync.RWMutex

	lastRunAt      time.Time
	runsCount      int64
	repliesSent    int64
	repliesFailed  int64
	lastDrain      domain.DrainResult
	consecutiveErr int
}

func New(worker drainRunner, interval time.Duration, maxBatch int) *Scheduler {
	return &Scheduler{
		worker:   worker,
		interval: interval,
		maxBatch: maxBatch,
		running:  false,
	}
}

func (s *Scheduler) StartWithParams(ctx context.Context, intervalMinutes, maxBatch int) error {
	s.mu.Lock()
	if intervalMinutes > 0 {
		s.interval = time.Duration(intervalMinutes) * time.Minute
	}
	if maxBatch > 0 {
		s.maxBatch = maxBatch
	}
	s.mu.Unlock()

	return s.Start(ctx)
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()

	if s.running {
		s.mu.Unlock()
		logger.Warnf("Scheduler is already running")
		return nil
	}

	s.running = true
	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})
	s.mu.Unlock()

	logger.Infof("Starting scheduler with interval: %v", s.interval)

	go s.run(ctx)

	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneChan)

	s.drain(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.drain(ctx)

		case <-s.stopChan:
			logger.Warnf("Scheduler received stop signal")
			return

		case <-ctx.Done():
			logger.Warnf("Scheduler context cancelled")
			return
		}
	}
}

func (s *Scheduler) drain(ctx context.Context) {
	s.mu.Lock()
	s.lastRunAt = time.Now()
	s.runsCount++
	runNumber := s.runsCount
	maxBatch := s.maxBatch
	s.mu.Unlock()

	result, err := s.worker.RunOnce(ctx, maxBatch)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.consecutiveErr++
		logger.Errorf("[Run #%d] Drain error (consecutive: %d): %v", runNumber, s.consecutiveErr, err)
		return
	}
	s.consecutiveErr = 0

	s.repliesSent += int64(result.Processed)
	s.repliesFailed += int64(result.Failed)
	s.lastDrain = result

	if result.Throttled {
		logger.Debugf("[Run #%d] Drain throttled", runNumber)
		return
	}

	logger.Infof("[Run #%d] Drain done: processed=%d deferred=%d skipped=%d failed=%d remaining=%d",
		runNumber, result.Processed, result.Deferred, result.Skipped, result.Failed, result.Remaining)
}

func (s *Scheduler) Stop() error {
	s.mu.Lock()

	if !s.running {
		s.mu.Unlock()
		logger.Warnf("Scheduler is not running")
		return nil
	}

	s.running = false
	stopChan := s.stopChan
	doneChan := s.doneChan
	s.mu.Unlock()

	close(stopChan)
	<-doneChan

	logger.Infof("Scheduler stopped")
	return nil
}

func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Scheduler) GetStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := Status{
		Running:          s.running,
		LastRunAt:        s.lastRunAt,
		RunsCount:        s.runsCount,
		RepliesSent:      s.repliesSent,
		RepliesFailed:    s.repliesFailed,
		Interval:         s.interval,
		MaxBatch:         s.maxBatch,
		LastDrain:        s.lastDrain,
		ConsecutiveError: s.consecutiveErr,
	}

	if s.running && !s.lastRunAt.IsZero() {
		status.NextRunAt = s.lastRunAt.Add(s.interval)
	}

	return status
}

type Status struct {
	Running          bool               `json:"running"`
	LastRunAt        time.Time          `json:"lastRunAt,omitempty"`
	NextRunAt        time.Time          `json:"nextRunAt,omitempty"`
	RunsCount        int64              `json:"runsCount"`
	RepliesSent      int64              `json:"repliesSent"`
	RepliesFailed    int64              `json:"repliesFailed"`
	Interval         time.Duration      `json:"interval"`
	MaxBatch         int                `json:"maxBatch"`
	LastDrain        domain.DrainResult `json:"lastDrain"`
	ConsecutiveError int                `json:"consecutiveErrors"`
}
