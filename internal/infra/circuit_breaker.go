package infra

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// BreakerState is the position of a CircuitBreaker.
type BreakerState int

const (
	BreakerClosed   BreakerState = iota // calls pass through
	BreakerOpen                         // calls fail with ErrCircuitOpen
	BreakerHalfOpen                     // trial calls decide whether to close again
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

var ErrCircuitOpen = errors.New("circuit breaker is open")

type BreakerConfig struct {
	Name             string
	FailureThreshold int           // consecutive failures that open the breaker
	SuccessThreshold int           // consecutive half-open successes that close it
	OpenTimeout      time.Duration // time spent open before trying again
}

// DefaultBreakerConfig suits an outbound SMTP relay.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{Name: name, FailureThreshold: 5, SuccessThreshold: 2, OpenTimeout: time.Minute}
}

// CircuitBreaker guards calls to an unreliable dependency. It is safe for
// concurrent use.
type CircuitBreaker struct {
	cfg BreakerConfig
	now func() time.Time

	mu        sync.Mutex
	state     BreakerState
	failures  int
	successes int
	openedAt  time.Time
}

func NewCircuitBreaker(cfg BreakerConfig) *CircuitBreaker {
	def := DefaultBreakerConfig(cfg.Name)
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	return &CircuitBreaker{cfg: cfg, now: time.Now, state: BreakerClosed}
}

// State reports the current state, moving open to half-open once the open
// timeout has elapsed.
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.refresh()
	return cb.state
}

// Execute runs fn unless the breaker is open.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if cb.State() == BreakerOpen {
		return ErrCircuitOpen
	}
	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.recordFailure()
	} else {
		cb.recordSuccess()
	}
	return err
}

// refresh must be called with mu held.
func (cb *CircuitBreaker) refresh() {
	if cb.state == BreakerOpen && cb.now().Sub(cb.openedAt) >= cb.cfg.OpenTimeout {
		cb.transition(BreakerHalfOpen)
	}
}

func (cb *CircuitBreaker) recordFailure() {
	switch cb.state {
	case BreakerClosed:
		cb.failures++
		if cb.failures >= cb.cfg.FailureThreshold {
			cb.transition(BreakerOpen)
		}
	case BreakerHalfOpen:
		cb.transition(BreakerOpen)
	}
}

func (cb *CircuitBreaker) recordSuccess() {
	switch cb.state {
	case BreakerClosed:
		cb.failures = 0
	case BreakerHalfOpen:
		cb.successes++
		if cb.successes >= cb.cfg.SuccessThreshold {
			cb.transition(BreakerClosed)
		}
	}
}

func (cb *CircuitBreaker) transition(to BreakerState) {
	from := cb.state
	cb.state = to
	cb.failures = 0
	cb.successes = 0
	if to == BreakerOpen {
		cb.openedAt = cb.now()
	}
	log.Warn().Str("breaker", cb.cfg.Name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
}
