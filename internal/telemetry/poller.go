package telemetry

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yegors/flight-overlay/pkg/logger"
)

// Fetcher retrieves one telemetry report
type Fetcher interface {
	Fetch(ctx context.Context) (*Report, error)
}

// Status summarizes poll health for the API
type Status struct {
	LastSuccess         time.Time `json:"last_success"`
	LastAttempt         time.Time `json:"last_attempt"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	TotalPolls          int       `json:"total_polls"`
	Healthy             bool      `json:"healthy"`
}

// Poller applies fetched reports to a Store. A failed fetch leaves the store untouched and
// is never retried; the next tick simply tries again.
type Poller struct {
	fetcher  Fetcher
	store    *Store
	logger   *logger.Logger
	inFlight atomic.Bool

	mu     sync.RWMutex
	status Status
}

// NewPoller creates a poller writing into store
func NewPoller(fetcher Fetcher, store *Store, loggerObj *logger.Logger) *Poller {
	return &Poller{
		fetcher: fetcher,
		store:   store,
		logger:  loggerObj.Named("telemetry-poll"),
	}
}

// Poll fetches and applies one report synchronously
func (p *Poller) Poll(ctx context.Context) error {
	report, err := p.fetcher.Fetch(ctx)
	p.record(err)
	if err != nil {
		p.logger.Debug("Telemetry fetch failed, keeping previous snapshot", logger.Error(err))
		return err
	}
	p.store.Apply(report)
	return nil
}

// PollAsync runs the fetch on its own goroutine and hands the apply step to post, which
// must run it on the goroutine that owns the store. A tick arriving while the previous
// fetch is still outstanding is dropped.
func (p *Poller) PollAsync(ctx context.Context, post func(func())) {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.logger.Debug("Previous telemetry fetch still in flight, skipping tick")
		return
	}

	go func() {
		defer p.inFlight.Store(false)

		report, err := p.fetcher.Fetch(ctx)
		p.record(err)
		if err != nil {
			p.logger.Debug("Telemetry fetch failed, keeping previous snapshot", logger.Error(err))
			return
		}
		post(func() { p.store.Apply(report) })
	}()
}

// Status returns the current poll status
func (p *Poller) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

func (p *Poller) record(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	p.status.LastAttempt = now
	p.status.TotalPolls++
	if err != nil {
		p.status.ConsecutiveFailures++
		p.status.Healthy = false
		return
	}
	if p.status.ConsecutiveFailures > 0 {
		p.logger.Info("Telemetry source recovered",
			logger.Int("failed_polls", p.status.ConsecutiveFailures))
	}
	p.status.ConsecutiveFailures = 0
	p.status.LastSuccess = now
	p.status.Healthy = true
}
