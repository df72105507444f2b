package ratelimiter

import (
	"fmt"
	"sync"
	"time"
)

// Config defines the bucket shape shared by every key.
type Config struct {
	Capacity       int           `env:"RATE_LIMIT_CAPACITY" envDefault:"10"`
	RefillRate     int           `env:"RATE_LIMIT_REFILL_RATE" envDefault:"1"`
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" envDefault:"6s"`
}

func (c Config) validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	}
	if c.RefillRate <= 0 {
		return fmt.Errorf("%w: refill rate must be positive, got %d", ErrInvalidConfig, c.RefillRate)
	}
	if c.RefillInterval <= 0 {
		return fmt.Errorf("%w: refill interval must be positive, got %v", ErrInvalidConfig, c.RefillInterval)
	}
	return nil
}

// Result is the outcome of one Allow call.
type Result struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Allowed reports whether the request fit in the bucket.
func (r Result) Allowed() bool { return r.Remaining >= 0 }

// RetryAfter is the wait until the next refill, or 0 when allowed.
func (r Result) RetryAfter(now time.Time) time.Duration {
	if r.Allowed() || !r.ResetAt.After(now) {
		return 0
	}
	return r.ResetAt.Sub(now)
}

type bucket struct {
	tokens     int
	lastRefill time.Time
	lastAccess time.Time
}

// Limiter keeps one token bucket per key.
type Limiter struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	idleTTL   time.Duration
	sweepStop chan struct{}
	closeOnce sync.Once
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// WithSweepInterval sets how often idle buckets are removed. Zero disables
// the background sweep.
func WithSweepInterval(d time.Duration) Option {
	return func(l *Limiter) { l.idleTTL = d }
}

// New validates cfg and returns a Limiter.
func New(cfg Config, opts ...Option) (*Limiter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	l := &Limiter{
		cfg:       cfg,
		now:       time.Now,
		buckets:   make(map[string]*bucket),
		idleTTL:   5 * time.Minute,
		sweepStop: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.idleTTL > 0 {
		go l.sweepLoop()
	}
	return l, nil
}

// Allow takes one token from the bucket for key.
func (l *Limiter) Allow(key string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.cfg.Capacity, lastRefill: now}
		l.buckets[key] = b
	}

	// Bound the interval count so a long idle period cannot overflow.
	maxIntervals := int64(l.cfg.Capacity/l.cfg.RefillRate + 1)
	intervals := int(min(int64(now.Sub(b.lastRefill)/l.cfg.RefillInterval), maxIntervals))
	if intervals > 0 {
		b.tokens = min(b.tokens+intervals*l.cfg.RefillRate, l.cfg.Capacity)
		if b.tokens == l.cfg.Capacity {
			b.lastRefill = now
		} else {
			// Keep the elapsed part of the current interval.
			b.lastRefill = b.lastRefill.Add(time.Duration(intervals) * l.cfg.RefillInterval)
		}
	}

	// A rejected request does not dig the bucket deeper than -1.
	if b.tokens > 0 {
		b.tokens--
	} else {
		b.tokens = -1
	}
	b.lastAccess = now

	res := Result{
		Limit:     l.cfg.Capacity,
		Remaining: b.tokens,
		ResetAt:   b.lastRefill.Add(l.cfg.RefillInterval),
	}
	if b.tokens < 0 {
		b.tokens = 0
	}
	return res
}

// Reset forgets the bucket for key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	delete(l.buckets, key)
	l.mu.Unlock()
}

// Close stops the background sweep. Safe to call more than once.
func (l *Limiter) Close() {
	l.closeOnce.Do(func() { close(l.sweepStop) })
}

func (l *Limiter) sweepLoop() {
	ticker := time.NewTicker(l.idleTTL)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.sweepStop:
			return
		}
	}
}

// sweep drops buckets idle for longer than the sweep interval.
func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, b := range l.buckets {
		if now.Sub(b.lastAccess) > l.idleTTL {
			delete(l.buckets, key)
		}
	}
}
