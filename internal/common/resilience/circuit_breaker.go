package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/AlibekovAA/authd/internal/common/clock"
	commonerrors "github.com/AlibekovAA/authd/internal/common/errors"
	"github.com/AlibekovAA/authd/internal/common/logger"
	"github.com/AlibekovAA/authd/internal/observability/metrics"
)

type breakerState int

// Values match the circuit_breaker_state gauge.
const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

var stateNames = map[breakerState]string{
	stateClosed:   "closed",
	stateOpen:     "open",
	stateHalfOpen: "half-open",
}

// CircuitBreaker opens after Threshold consecutive failures and rejects
// calls for ResetAfter. It then lets a single probe through: success closes
// the circuit, failure opens it again.
type CircuitBreaker struct {
	mu       sync.Mutex
	state    breakerState
	failures int32
	openedAt time.Time
	probing  bool

	threshold  int32
	timeout    time.Duration
	resetAfter time.Duration
	name       string
	isFailure  func(error) bool
	clock      clock.Clock
	log        *logger.Logger
}

type CircuitBreakerConfig struct {
	Threshold  int32
	Timeout    time.Duration
	ResetAfter time.Duration
	Name       string
	// IsFailure decides whether an error returned by the wrapped call counts
	// against the breaker. Nil counts every error.
	IsFailure func(error) bool
	Clock     clock.Clock
	Logger    *logger.Logger
}

func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	cb := &CircuitBreaker{
		threshold:  config.Threshold,
		timeout:    config.Timeout,
		resetAfter: config.ResetAfter,
		name:       config.Name,
		isFailure:  config.IsFailure,
		clock:      config.Clock,
		log:        config.Logger,
	}
	if cb.threshold <= 0 {
		cb.threshold = 1
	}
	if cb.isFailure == nil {
		cb.isFailure = func(error) bool { return true }
	}
	if cb.clock == nil {
		cb.clock = clock.NewRealClock()
	}
	cb.publishState()
	return cb
}

// IsOpen reports whether a call made now would be rejected.
func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.expireLocked()
	return cb.state == stateOpen || (cb.state == stateHalfOpen && cb.probing)
}

func (cb *CircuitBreaker) Call(ctx context.Context, fn func(context.Context) error) error {
	probe, ok := cb.acquire()
	if !ok {
		if cb.log != nil {
			cb.log.Warnf("circuit breaker [%s]: circuit is open, rejecting request", cb.name)
		}
		return commonerrors.ErrCircuitOpen
	}

	callCtx := ctx
	if cb.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, cb.timeout)
		defer cancel()
	}

	err := fn(callCtx)
	if err != nil && ctx.Err() != nil {
		// The caller gave up; only the breaker's own timeout counts.
		cb.release(probe)
		return err
	}
	cb.record(err, probe)
	return err
}

func (cb *CircuitBreaker) release(probe bool) {
	if !probe {
		return
	}
	cb.mu.Lock()
	cb.probing = false
	cb.mu.Unlock()
}

func (cb *CircuitBreaker) acquire() (probe bool, ok bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.expireLocked()
	switch cb.state {
	case stateClosed:
		return false, true
	case stateHalfOpen:
		if cb.probing {
			return false, false
		}
		cb.probing = true
		return true, true
	default:
		return false, false
	}
}

func (cb *CircuitBreaker) record(err error, probe bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if probe {
		cb.probing = false
	}

	if err == nil || !cb.isFailure(err) {
		if err == nil {
			cb.failures = 0
		}
		if cb.state == stateHalfOpen {
			cb.failures = 0
			cb.transitionLocked(stateClosed)
		}
		return
	}

	cb.failures++
	if cb.name != "" {
		metrics.CircuitBreakerFailures.WithLabelValues(cb.name).Inc()
	}
	if cb.log != nil {
		cb.log.Warnf("circuit breaker [%s]: failure recorded (%d/%d): %v", cb.name, cb.failures, cb.threshold, err)
	}

	if cb.state == stateHalfOpen || cb.failures >= cb.threshold {
		cb.openedAt = cb.clock.Now()
		cb.transitionLocked(stateOpen)
	}
}

func (cb *CircuitBreaker) expireLocked() {
	if cb.state == stateOpen && cb.clock.Since(cb.openedAt) > cb.resetAfter {
		cb.transitionLocked(stateHalfOpen)
	}
}

func (cb *CircuitBreaker) transitionLocked(next breakerState) {
	if cb.state == next {
		return
	}
	if cb.log != nil {
		cb.log.Infof("circuit breaker [%s]: %s -> %s", cb.name, stateNames[cb.state], stateNames[next])
	}
	cb.state = next
	cb.publishState()
}

func (cb *CircuitBreaker) publishState() {
	if cb.name != "" {
		metrics.CircuitBreakerState.WithLabelValues(cb.name).Set(float64(cb.state))
	}
}
