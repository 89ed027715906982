package identity

import (
	"errors"
	"sync"
	"time"
)

// ErrProviderUnavailable is returned when the breaker is open and calls to
// the identity provider are being short-circuited.
var ErrProviderUnavailable = errors.New("identity provider temporarily unavailable")

type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

// breaker is a minimal circuit breaker guarding identity-provider calls.
// After maxFailures consecutive failures it fails fast for resetTimeout, then
// lets a single probe through.
type breaker struct {
	maxFailures  int
	resetTimeout time.Duration

	mu          sync.Mutex
	state       breakerState
	failures    int
	lastFailure time.Time
	probing     bool
}

func newBreaker(maxFailures int, resetTimeout time.Duration) *breaker {
	return &breaker{maxFailures: maxFailures, resetTimeout: resetTimeout}
}

func (b *breaker) call(fn func() error) error {
	b.mu.Lock()
	if b.state == stateOpen {
		if time.Since(b.lastFailure) <= b.resetTimeout {
			b.mu.Unlock()
			return ErrProviderUnavailable
		}
		b.state = stateHalfOpen
		b.probing = false
	}
	if b.state == stateHalfOpen {
		if b.probing {
			b.mu.Unlock()
			return ErrProviderUnavailable
		}
		b.probing = true
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.failures++
		b.lastFailure = time.Now()
		if b.state == stateHalfOpen || b.failures >= b.maxFailures {
			b.state = stateOpen
		}
		return err
	}
	b.state = stateClosed
	b.failures = 0
	b.probing = false
	return nil
}
