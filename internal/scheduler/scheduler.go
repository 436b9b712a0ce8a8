// Package scheduler runs periodic tasks one at a time on a single executor goroutine.
//
// Tasks never overlap, so state owned by the executor needs no locking. Work that has to
// block (network fetches) runs elsewhere and hands its result back with Post; posted
// callbacks run on the executor between ticks.
//
// Run drives the tasks from the wall clock. Advance drives them from a virtual clock so
// tests can step time deterministically.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/yegors/flight-overlay/pkg/logger"
)

// TaskFunc is the body of a periodic task
type TaskFunc func(ctx context.Context)

type task struct {
	name     string
	interval time.Duration
	next     time.Duration // offset from the scheduler epoch
	fn       TaskFunc
	runs     int
}

// Scheduler owns the periodic tasks and the executor
type Scheduler struct {
	tasks  []*task
	posted chan func()
	now    time.Duration // virtual clock position, used by Advance
	logger *logger.Logger
}

// New creates an empty scheduler
func New(loggerObj *logger.Logger) *Scheduler {
	return &Scheduler{
		posted: make(chan func(), 64),
		logger: loggerObj.Named("scheduler"),
	}
}

// Every registers fn to run each interval. The first run is one interval after start.
func (s *Scheduler) Every(name string, interval time.Duration, fn TaskFunc) error {
	if interval <= 0 {
		return fmt.Errorf("task %s: interval must be positive, got %v", name, interval)
	}
	for _, t := range s.tasks {
		if t.name == name {
			return fmt.Errorf("task %s already registered", name)
		}
	}
	s.tasks = append(s.tasks, &task{
		name:     name,
		interval: interval,
		next:     s.now + interval,
		fn:       fn,
	})
	return nil
}

// Post queues fn to run on the executor. Safe to call from any goroutine.
func (s *Scheduler) Post(fn func()) {
	s.posted <- fn
}

// Stats returns the number of runs per task
func (s *Scheduler) Stats() map[string]int {
	stats := make(map[string]int, len(s.tasks))
	for _, t := range s.tasks {
		stats[t.name] = t.runs
	}
	return stats
}

// Run executes tasks against the wall clock until ctx is cancelled
func (s *Scheduler) Run(ctx context.Context) error {
	if len(s.tasks) == 0 {
		return fmt.Errorf("no tasks registered")
	}

	for _, t := range s.tasks {
		s.logger.Info("Scheduling task",
			logger.String("task", t.name),
			logger.Duration("interval", t.interval))
	}

	start := time.Now()
	for {
		wait := s.nextDue().next - time.Since(start)
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("Scheduler stopped")
			return nil
		case fn := <-s.posted:
			timer.Stop()
			fn()
		case <-timer.C:
			s.runDue(ctx, time.Since(start))
		}
	}
}

// Advance moves the virtual clock forward by d, running every task that falls due on the
// way in due order. Callbacks posted before or during the step run after each task.
func (s *Scheduler) Advance(ctx context.Context, d time.Duration) {
	target := s.now + d
	for {
		s.drainPosted()
		t := s.nextDue()
		if t == nil || t.next > target {
			break
		}
		s.now = t.next
		s.runTask(ctx, t)
	}
	s.now = target
	s.drainPosted()
}

// Elapsed returns the virtual clock position
func (s *Scheduler) Elapsed() time.Duration {
	return s.now
}

func (s *Scheduler) runDue(ctx context.Context, now time.Duration) {
	for {
		t := s.nextDue()
		if t == nil || t.next > now {
			return
		}
		s.runTask(ctx, t)
	}
}

func (s *Scheduler) runTask(ctx context.Context, t *task) {
	t.fn(ctx)
	t.runs++
	t.next += t.interval
}

func (s *Scheduler) drainPosted() {
	for {
		select {
		case fn := <-s.posted:
			fn()
		default:
			return
		}
	}
}

// nextDue returns the task with the earliest due time; ties go to registration order
func (s *Scheduler) nextDue() *task {
	var best *task
	for _, t := range s.tasks {
		if best == nil || t.next < best.next {
			best = t
		}
	}
	return best
}
