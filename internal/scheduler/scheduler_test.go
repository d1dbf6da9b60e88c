package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/replydesk/responder/internal/domain"
)

// fakeRunner is a simple test double for drainRunner.
type fakeRunner struct {
	resultToReturn domain.DrainResult
	errToReturn    error

	calls []drainCall
}

type drainCall struct {
	MaxBatch int
}

func (f *fakeRunner) RunOnce(ctx context.Context, maxBatch int) (domain.DrainResult, error) {
	f.calls = append(f.calls, drainCall{MaxBatch: maxBatch})
	return f.resultToReturn, f.errToReturn
}

func TestScheduler_Drain_AccumulatesStats(t *testing.T) {
	ctx := context.Background()

	runner := &fakeRunner{
		resultToReturn: domain.DrainResult{Processed: 3, Failed: 1, Remaining: 2},
	}
	s := &Scheduler{
		worker:   runner,
		interval: time.Minute,
		maxBatch: 25,
	}

	s.drain(ctx)
	s.drain(ctx)

	status := s.GetStatus()
	if status.RunsCount != 2 {
		t.Errorf("expected RunsCount=2, got %d", status.RunsCount)
	}
	if status.RepliesSent != 6 {
		t.Errorf("expected RepliesSent=6, got %d", status.RepliesSent)
	}
	if status.RepliesFailed != 2 {
		t.Errorf("expected RepliesFailed=2, got %d", status.RepliesFailed)
	}
	if status.LastDrain.Remaining != 2 {
		t.Errorf("expected LastDrain.Remaining=2, got %d", status.LastDrain.Remaining)
	}
	if len(runner.calls) != 2 {
		t.Fatalf("expected 2 drain calls, got %d", len(runner.calls))
	}
	if runner.calls[0].MaxBatch != 25 {
		t.Errorf("expected configured max batch passed through, got %d", runner.calls[0].MaxBatch)
	}
}

func TestScheduler_Drain_TracksConsecutiveErrors(t *testing.T) {
	ctx := context.Background()

	runner := &fakeRunner{errToReturn: fmt.Errorf("store unreachable")}
	s := &Scheduler{
		worker:   runner,
		interval: time.Minute,
		maxBatch: 25,
	}

	s.drain(ctx)
	s.drain(ctx)

	status := s.GetStatus()
	if status.ConsecutiveError != 2 {
		t.Errorf("expected ConsecutiveError=2, got %d", status.ConsecutiveError)
	}
	if status.RepliesSent != 0 {
		t.Errorf("expected no replies counted on errors, got %d", status.RepliesSent)
	}

	// A successful drain resets the streak.
	runner.errToReturn = nil
	s.drain(ctx)

	if got := s.GetStatus().ConsecutiveError; got != 0 {
		t.Errorf("expected error streak reset, got %d", got)
	}
}

func TestScheduler_StartAndStopToggleRunning(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := &fakeRunner{}
	s := &Scheduler{
		worker:   runner,
		interval: 10 * time.Millisecond,
		maxBatch: 5,
	}

	if s.IsRunning() {
		t.Fatalf("expected scheduler to be not running initially")
	}

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	if !s.IsRunning() {
		t.Fatalf("expected scheduler to be running after Start")
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}

	if s.IsRunning() {
		t.Fatalf("expected scheduler to be not running after Stop")
	}
}

func TestScheduler_StartWithParamsOverridesDefaults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := &fakeRunner{}
	s := New(runner, time.Minute, 25)

	if err := s.StartWithParams(ctx, 5, 50); err != nil {
		t.Fatalf("StartWithParams returned error: %v", err)
	}
	defer func() {
		if err := s.Stop(); err != nil {
			t.Fatalf("Stop returned error: %v", err)
		}
	}()

	status := s.GetStatus()
	if status.Interval != 5*time.Minute {
		t.Errorf("expected interval override, got %v", status.Interval)
	}
	if status.MaxBatch != 50 {
		t.Errorf("expected max batch override, got %d", status.MaxBatch)
	}
}
