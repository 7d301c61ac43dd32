// Package poll runs periodic refresh loops for dashboard data. Each poller
// owns one goroutine; a fetch error is logged and the loop keeps its cadence.
package poll

import (
	"context"
	"log"
	"sync"
	"time"
)

// Func performs one refresh pass.
type Func func(ctx context.Context) error

// Poller invokes a Func immediately on start and then on a fixed interval
// until stopped. Refresh triggers an out-of-band pass without disturbing the
// ticker.
type Poller struct {
	name     string
	interval time.Duration
	fn       Func
	logger   *log.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	kick    chan struct{}
	done    chan struct{}
	running bool
}

// New creates a poller. The name appears in log lines.
func New(name string, interval time.Duration, fn Func, logger *log.Logger) *Poller {
	return &Poller{
		name:     name,
		interval: interval,
		fn:       fn,
		logger:   logger,
	}
}

// Start launches the loop. Starting a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.kick = make(chan struct{}, 1)
	p.done = make(chan struct{})
	p.running = true
	go p.loop(ctx, p.kick, p.done)
}

func (p *Poller) loop(ctx context.Context, kick chan struct{}, done chan struct{}) {
	defer close(done)

	p.runOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runOnce(ctx)
		case <-kick:
			p.runOnce(ctx)
		}
	}
}

func (p *Poller) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := p.fn(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Printf("[WARN] %s poll failed: %v", p.name, err)
	}
}

// Refresh requests an immediate pass. No-op when the poller is not running
// or a request is already pending.
func (p *Poller) Refresh() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Stop cancels the loop and waits for the in-flight pass, if any, to return.
// No passes run after Stop returns.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.running = false
	p.mu.Unlock()

	cancel()
	<-done
}
