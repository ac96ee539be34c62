package crawler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/prensa-rd/newscrawler/internal/sites"
)

// maxThrottleDelay caps how far the adaptive throttle may widen the
// inter-request delay for a struggling domain.
const maxThrottleDelay = 10 * time.Second

// DomainLimiter enforces the per-domain politeness policy: a concurrency
// cap, a token-bucket inter-request delay, and an adaptive throttle that
// widens the delay when responses are slow or failing and narrows it back
// toward the configured baseline when the domain is healthy.
type DomainLimiter struct {
	mu      sync.Mutex
	domains map[string]*domainState
}

type domainState struct {
	slots    chan struct{}
	limiter  *rate.Limiter
	throttle *autoThrottle
}

// NewDomainLimiter returns an empty limiter; per-domain state materializes
// on first acquisition using that profile's politeness block.
func NewDomainLimiter() *DomainLimiter {
	return &DomainLimiter{domains: make(map[string]*domainState)}
}

// Acquire blocks until the domain has a free concurrency slot and the rate
// limiter releases a token. The returned release function must be called
// exactly once with the observed latency and outcome; it frees the slot and
// feeds the adaptive throttle.
func (l *DomainLimiter) Acquire(
	ctx context.Context,
	host string,
	pol sites.Politeness,
) (func(latency time.Duration, ok bool), error) {
	state := l.state(host, pol)

	select {
	case state.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("politeness slot wait: %w", ctx.Err())
	}

	if err := state.limiter.Wait(ctx); err != nil {
		<-state.slots
		return nil, fmt.Errorf("politeness rate wait: %w", err)
	}

	release := func(latency time.Duration, ok bool) {
		delay := state.throttle.Observe(latency, ok)
		state.limiter.SetLimit(limitFor(delay))
		<-state.slots
	}
	return release, nil
}

func (l *DomainLimiter) state(host string, pol sites.Politeness) *domainState {
	l.mu.Lock()
	defer l.mu.Unlock()
	if state, ok := l.domains[host]; ok {
		return state
	}

	concurrency := pol.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	state := &domainState{
		slots:    make(chan struct{}, concurrency),
		limiter:  rate.NewLimiter(limitFor(pol.Delay), 1),
		throttle: newAutoThrottle(pol.Delay, pol.ThrottleTarget),
	}
	l.domains[host] = state
	return state
}

func limitFor(delay time.Duration) rate.Limit {
	if delay <= 0 {
		return rate.Inf
	}
	return rate.Every(delay)
}

// autoThrottle adjusts the inter-request delay from observed latencies,
// steering toward the configured target concurrency: the next delay is the
// average of the current delay and latency/target, clamped between the
// profile baseline and maxThrottleDelay. Failed responses never narrow the
// delay.
type autoThrottle struct {
	mu     sync.Mutex
	base   time.Duration
	target float64
	delay  time.Duration
}

func newAutoThrottle(base time.Duration, target float64) *autoThrottle {
	if target <= 0 {
		target = 1.0
	}
	return &autoThrottle{base: base, target: target, delay: base}
}

// Observe feeds one response observation and returns the updated delay.
func (t *autoThrottle) Observe(latency time.Duration, ok bool) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	targetDelay := time.Duration(float64(latency) / t.target)
	next := (t.delay + targetDelay) / 2
	if next < t.base {
		next = t.base
	}
	if next > maxThrottleDelay {
		next = maxThrottleDelay
	}
	if !ok && next < t.delay {
		next = t.delay
	}
	t.delay = next
	return next
}

// Delay returns the current adaptive delay.
func (t *autoThrottle) Delay() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.delay
}
