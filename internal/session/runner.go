package session

import (
	"context"
	"sync"
	"time"

	"github.com/rossmatican/thoughtleaderai/internal/model"
)

// Analyzer is the part of a Session the Runner drives.
type Analyzer interface {
	Analyze(ctx context.Context, text string) model.Snapshot
}

// Runner debounces analysis requests. A new submission supersedes the
// pending one, and at most one analysis runs at a time.
type Runner struct {
	target Analyzer
	delay  time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	closed  bool
	running chan struct{}
	wg      sync.WaitGroup

	out  chan model.Snapshot
	done chan struct{}
}

// NewRunner creates a Runner that waits delay after the last submission.
func NewRunner(target Analyzer, delay time.Duration) *Runner {
	return &Runner{
		target:  target,
		delay:   delay,
		running: make(chan struct{}, 1),
		out:     make(chan model.Snapshot, 16),
		done:    make(chan struct{}),
	}
}

// Results delivers completed snapshots. It is closed by Close.
func (r *Runner) Results() <-chan model.Snapshot {
	return r.out
}

// Submit schedules text for analysis, cancelling any pending request.
func (r *Runner) Submit(ctx context.Context, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	if r.cancel != nil {
		r.cancel()
	}
	cctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.wg.Add(1)
	go r.run(cctx, text)
}

func (r *Runner) run(ctx context.Context, text string) {
	defer r.wg.Done()
	timer := time.NewTimer(r.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	select {
	case <-ctx.Done():
		return
	case r.running <- struct{}{}:
	}
	defer func() { <-r.running }()
	if ctx.Err() != nil {
		return
	}

	snap := r.target.Analyze(context.WithoutCancel(ctx), text)
	select {
	case r.out <- snap:
	case <-r.done:
	}
}

// Close cancels any pending request, waits for in-flight work and closes Results.
func (r *Runner) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	if r.cancel != nil {
		r.cancel()
	}
	close(r.done)
	r.mu.Unlock()
	r.wg.Wait()
	close(r.out)
}
