package relay

import (
	"errors"
	"sync"
	"time"
)

// ErrBreakerOpen is returned without attempting a send while the breaker
// rejects calls.
var ErrBreakerOpen = errors.New("relay: circuit breaker open")

// BreakerState is the state of a Breaker.
type BreakerState int32

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures a Breaker.
type BreakerConfig struct {
	// FailureRateThreshold in (0, 1]: the breaker opens once the failure
	// share over Window reaches it.
	FailureRateThreshold float64
	// MinRequests is the number of calls Window must hold before the rate
	// is evaluated.
	MinRequests int
	Window      time.Duration
	// OpenTimeout is how long the breaker stays open before trial calls.
	OpenTimeout time.Duration
	// HalfOpenMaxRequests trial calls must all succeed to close again.
	HalfOpenMaxRequests int
}

const windowBuckets = 10

type bucket struct {
	epoch     int64
	successes int
	failures  int
}

// Breaker is a failure-rate circuit breaker over a sliding window of
// windowBuckets time buckets. It is safe for concurrent use.
type Breaker struct {
	cfg   BreakerConfig
	now   func() time.Time
	width time.Duration

	mu               sync.Mutex
	state            BreakerState
	openedAt         time.Time
	buckets          [windowBuckets]bucket
	halfOpenInFlight int
	halfOpenPassed   int

	onStateChange func(from, to BreakerState)
}

// NewBreaker creates a closed breaker.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.MinRequests < 1 {
		cfg.MinRequests = 1
	}
	if cfg.HalfOpenMaxRequests < 1 {
		cfg.HalfOpenMaxRequests = 1
	}
	width := cfg.Window / windowBuckets
	if width <= 0 {
		width = time.Second
	}
	return &Breaker{cfg: cfg, now: time.Now, width: width}
}

// State returns the current state, moving open to half-open if the
// cool-down has elapsed.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maybeHalfOpen(b.now())
	return b.state
}

// Execute runs fn if the breaker admits a call and records its outcome.
// Returns ErrBreakerOpen without calling fn otherwise.
func (b *Breaker) Execute(fn func() error) error {
	if err := b.allow(); err != nil {
		return err
	}
	err := fn()
	b.record(err == nil)
	return err
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.maybeHalfOpen(b.now())
	switch b.state {
	case BreakerOpen:
		return ErrBreakerOpen
	case BreakerHalfOpen:
		if b.halfOpenInFlight+b.halfOpenPassed >= b.cfg.HalfOpenMaxRequests {
			return ErrBreakerOpen
		}
		b.halfOpenInFlight++
	}
	return nil
}

func (b *Breaker) record(ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	switch b.state {
	case BreakerHalfOpen:
		b.halfOpenInFlight--
		if !ok {
			b.trip(now)
			return
		}
		b.halfOpenPassed++
		if b.halfOpenPassed >= b.cfg.HalfOpenMaxRequests {
			b.buckets = [windowBuckets]bucket{}
			b.setState(BreakerClosed)
		}
	case BreakerClosed:
		bk := b.bucketAt(now)
		if ok {
			bk.successes++
			return
		}
		bk.failures++
		if b.failureRateExceeded(now) {
			b.trip(now)
		}
	}
	// Outcomes of calls admitted before the breaker opened are ignored.
}

func (b *Breaker) failureRateExceeded(now time.Time) bool {
	cur := b.epoch(now)
	var total, failed int
	for _, bk := range b.buckets {
		if cur-bk.epoch >= windowBuckets {
			continue
		}
		total += bk.successes + bk.failures
		failed += bk.failures
	}
	if total < b.cfg.MinRequests {
		return false
	}
	return float64(failed)/float64(total) >= b.cfg.FailureRateThreshold
}

func (b *Breaker) trip(now time.Time) {
	b.openedAt = now
	b.halfOpenInFlight = 0
	b.halfOpenPassed = 0
	b.setState(BreakerOpen)
}

func (b *Breaker) maybeHalfOpen(now time.Time) {
	if b.state == BreakerOpen && now.Sub(b.openedAt) >= b.cfg.OpenTimeout {
		b.halfOpenInFlight = 0
		b.halfOpenPassed = 0
		b.setState(BreakerHalfOpen)
	}
}

func (b *Breaker) setState(to BreakerState) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	if b.onStateChange != nil {
		b.onStateChange(from, to)
	}
}

func (b *Breaker) epoch(now time.Time) int64 {
	return now.UnixNano() / int64(b.width)
}

func (b *Breaker) bucketAt(now time.Time) *bucket {
	e := b.epoch(now)
	bk := &b.buckets[e%windowBuckets]
	if bk.epoch != e {
		*bk = bucket{epoch: e}
	}
	return bk
}
