// Package autoflush publishes pending greenblue writes in the background.
//
// A Publisher flushes on a fixed interval, when the pending log grows past a
// threshold, or both. Flushes are capped by a token bucket so a hot writer
// cannot keep readers' buffers permanently draining.
package autoflush

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/unkn0wn-root/greenblue"
)

// Flusher is the part of greenblue.Cache a Publisher drives.
type Flusher interface {
	Flush(ctx context.Context) error
	Status(ctx context.Context) greenblue.Status
}

var ErrNoTrigger = errors.New("autoflush: neither Interval nor Threshold set")

type Config struct {
	// Interval flushes periodically when > 0.
	Interval time.Duration
	// Threshold flushes once Status().Pending reaches it when > 0.
	Threshold int
	// Poll is how often Threshold is checked. Default 10ms.
	Poll time.Duration

	// MaxRate caps flushes per second; 0 means unlimited.
	MaxRate rate.Limit
	Burst   int // default 1

	// ErrCannotSwitch is retried up to Retries times, RetryDelay apart.
	Retries    int           // default 3
	RetryDelay time.Duration // default 5ms

	Logger greenblue.Logger
}

type Publisher struct {
	f   Flusher
	cfg Config
	lim *rate.Limiter
	log greenblue.Logger

	nudge  chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	flushes  atomic.Uint64
	failures atomic.Uint64
	fatal    atomic.Pointer[error]
}

// New validates cfg and starts the publishing loop.
func New(f Flusher, cfg Config) (*Publisher, error) {
	if cfg.Interval <= 0 && cfg.Threshold <= 0 {
		return nil, ErrNoTrigger
	}
	if cfg.Poll <= 0 {
		cfg.Poll = 10 * time.Millisecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.Retries <= 0 {
		cfg.Retries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 5 * time.Millisecond
	}
	lim := rate.NewLimiter(rate.Inf, 0)
	if cfg.MaxRate > 0 {
		lim = rate.NewLimiter(cfg.MaxRate, cfg.Burst)
	}
	log := cfg.Logger
	if log == nil {
		log = greenblue.NopLogger{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Publisher{
		f:      f,
		cfg:    cfg,
		lim:    lim,
		log:    log,
		nudge:  make(chan struct{}, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go p.loop(ctx)
	return p, nil
}

// Nudge asks for a threshold check now instead of at the next poll.
func (p *Publisher) Nudge() {
	select {
	case p.nudge <- struct{}{}:
	default:
	}
}

// Flushes reports completed flushes.
func (p *Publisher) Flushes() uint64 { return p.flushes.Load() }

// Failures reports flush attempts that gave up.
func (p *Publisher) Failures() uint64 { return p.failures.Load() }

// Err returns the error that stopped the loop, if any.
func (p *Publisher) Err() error {
	if e := p.fatal.Load(); e != nil {
		return *e
	}
	return nil
}

// Done is closed when the loop exits.
func (p *Publisher) Done() <-chan struct{} { return p.done }

// Close stops the loop and waits for an in-progress flush, or for ctx.
func (p *Publisher) Close(ctx context.Context) error {
	p.once.Do(p.cancel)
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Publisher) loop(ctx context.Context) {
	defer close(p.done)

	var tick, poll <-chan time.Time
	if p.cfg.Interval > 0 {
		t := time.NewTicker(p.cfg.Interval)
		defer t.Stop()
		tick = t.C
	}
	if p.cfg.Threshold > 0 {
		t := time.NewTicker(p.cfg.Poll)
		defer t.Stop()
		poll = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
		case <-poll:
			if !p.due(ctx) {
				continue
			}
		case <-p.nudge:
			if !p.due(ctx) {
				continue
			}
		}
		if err := p.publish(ctx); err != nil {
			if errors.Is(err, greenblue.ErrCannotWrite) {
				p.fatal.Store(&err)
				p.log.Error("autoflush stopped", greenblue.Fields{"err": err})
				return
			}
		}
	}
}

func (p *Publisher) due(ctx context.Context) bool {
	return p.cfg.Threshold > 0 && p.f.Status(ctx).Pending >= p.cfg.Threshold
}

func (p *Publisher) publish(ctx context.Context) error {
	if err := p.lim.Wait(ctx); err != nil {
		return nil // closing
	}
	var err error
	for attempt := 0; attempt <= p.cfg.Retries; attempt++ {
		err = p.f.Flush(ctx)
		if err == nil {
			p.flushes.Add(1)
			return nil
		}
		if !errors.Is(err, greenblue.ErrCannotSwitch) {
			break
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(p.cfg.RetryDelay):
		}
	}
	if ctx.Err() != nil {
		return nil
	}
	p.failures.Add(1)
	// a drain timeout leaves the flush unsettled; the next trigger resumes it
	p.log.Warn("autoflush attempt failed", greenblue.Fields{"err": err})
	return fmt.Errorf("autoflush: %w", err)
}
