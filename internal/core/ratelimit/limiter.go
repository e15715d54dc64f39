package ratelimit

import (
	"context"
	"sync"
	"time"

	"fulfillment-tracker/internal/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultCleanupPeriod = time.Minute
	defaultClientTTL     = 5 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per client IP.
type Limiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	limit    rate.Limit
	burst    int

	cleanupPeriod time.Duration
	clientTTL     time.Duration
	now           func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithCleanup overrides how often idle visitors are swept and how long they live.
func WithCleanup(period, ttl time.Duration) Option {
	return func(l *Limiter) {
		l.cleanupPeriod = period
		l.clientTTL = ttl
	}
}

// WithClock replaces the wall clock used for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New starts a Limiter allowing perSecond requests per client with the given burst.
// The background sweep stops when ctx is cancelled or Shutdown is called.
func New(ctx context.Context, perSecond float64, burst int, opts ...Option) *Limiter {
	l := &Limiter{
		visitors:      make(map[string]*visitor),
		limit:         rate.Limit(perSecond),
		burst:         burst,
		cleanupPeriod: defaultCleanupPeriod,
		clientTTL:     defaultClientTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.ctx, l.cancel = context.WithCancel(ctx)
	go l.cleanupLoop()
	return l
}

// Handler returns the Fiber middleware. Rejected requests get 429 with a Retry-After hint.
func (l *Limiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		if !l.Allow(ip) {
			logger.Get().Warn("Rate limit exceeded",
				zap.String("ip", ip),
				zap.String("path", c.Path()),
			)
			c.Set(fiber.HeaderRetryAfter, "1")
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "too many requests",
			})
		}
		return c.Next()
	}
}

// Allow reports whether key may proceed now.
func (l *Limiter) Allow(key string) bool {
	return l.visitor(key).AllowN(l.now(), 1)
}

func (l *Limiter) visitor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = l.now()
	return v.limiter
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.ctx.Done():
			return
		}
	}
}

func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.clientTTL)
	for key, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, key)
		}
	}
}

// Len returns the number of tracked clients.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// Shutdown stops the background sweep.
func (l *Limiter) Shutdown() {
	l.cancel()
}
