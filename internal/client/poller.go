package client

import (
	"context"
	"sync"
	"time"
)

// Poller runs a task at a fixed interval, starting immediately, until its
// context is cancelled or Stop is called. Runs never overlap.
type Poller struct {
	Interval time.Duration
	Task     func(ctx context.Context) error
	// OnError receives task errors. Nil drops them.
	OnError func(error)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller creates a poller for task.
func NewPoller(interval time.Duration, task func(ctx context.Context) error) *Poller {
	return &Poller{Interval: interval, Task: task}
}

// Start launches the polling goroutine. Calling Start on a running poller is
// a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done != nil {
		select {
		case <-p.done:
			// stopped by its parent context
			p.cancel()
		default:
			return
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(p.Interval)
		defer ticker.Stop()

		for {
			p.run(ctx)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func (p *Poller) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := p.Task(ctx); err != nil && p.OnError != nil && ctx.Err() == nil {
		p.OnError(err)
	}
}

// Stop cancels the poller and waits for an in-flight run to finish. The
// poller may be started again afterwards.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the polling goroutine is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}
