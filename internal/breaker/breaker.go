// Package breaker implements a circuit breaker that isolates the
// orchestrator from degraded external dependencies.
//
// One Breaker instance guards one dependency (the workflow engine, the
// identity directory). While the circuit is open, calls fail fast without
// touching the dependency; after a cooldown a probe call is let through and
// the circuit closes again once enough probes succeed. The breaker never
// retries on its own.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"
)

// State is the position of the circuit.
type State int32

// Circuit states.
const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

// String returns the state name for logs and metrics.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config holds the tuning knobs for one breaker.
type Config struct {
	// Name identifies the protected dependency in logs and metrics.
	Name string

	// FailureThreshold is the number of consecutive failures that opens
	// the circuit.
	FailureThreshold int

	// ResetTimeout is the cooldown after opening before a probe call is
	// allowed through.
	ResetTimeout time.Duration

	// CallTimeout is the per-call deadline. A call that does not complete
	// in time counts as a failure.
	CallTimeout time.Duration
}

// OpenError is returned when a call is rejected because the circuit is open.
// The wrapped operation was not invoked.
type OpenError struct {
	Name       string
	RetryAfter time.Duration
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("circuit breaker %q is open, retry in %s", e.Name, e.RetryAfter.Round(time.Millisecond))
}

// IsOpen reports whether err is a fast-fail rejection from an open circuit.
func IsOpen(err error) bool {
	var oe *OpenError
	return errors.As(err, &oe)
}

// benignError marks an operation error that is a legitimate negative result
// (for example a directory lookup miss) rather than a dependency failure.
type benignError struct {
	err error
}

func (e *benignError) Error() string { return e.err.Error() }
func (e *benignError) Unwrap() error { return e.err }

// Benign wraps err so the breaker does not count it toward failure
// accounting. The error still propagates to the caller unchanged in meaning.
func Benign(err error) error {
	if err == nil {
		return nil
	}
	return &benignError{err: err}
}

// IsBenign reports whether err was marked with Benign.
func IsBenign(err error) bool {
	var be *benignError
	return errors.As(err, &be)
}

// Snapshot is a point-in-time view of a breaker for operator endpoints.
type Snapshot struct {
	Name                string
	State               State
	ConsecutiveFailures int
	HalfOpenSuccesses   int
	RequestCount        int64
	LastFailureTime     time.Time
	NextAttemptAt       time.Time
}

// Breaker guards calls to a single dependency. It is safe for concurrent use.
type Breaker struct {
	cfg     Config
	log     logr.Logger
	metrics *metrics

	mu                  sync.Mutex
	state               State
	consecutiveFailures int
	halfOpenSuccesses   int
	requestCount        int64
	lastFailureTime     time.Time
	nextAttemptAt       time.Time
}

// New creates a closed breaker. Invalid thresholds and timeouts fall back to
// conservative defaults rather than failing construction.
func New(cfg Config, log logr.Logger) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 10 * time.Second
	}
	return &Breaker{
		cfg:   cfg,
		log:   log.WithName("breaker").WithValues("dependency", cfg.Name),
		state: StateClosed,
	}
}

// Name returns the dependency name this breaker guards.
func (b *Breaker) Name() string { return b.cfg.Name }

// Execute runs op if the circuit allows it. op receives a context bounded by
// the configured call timeout; a call that outlives the timeout is treated
// as a failure even if op ignores the context.
func (b *Breaker) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	if err := b.allow(); err != nil {
		return err
	}

	callCtx, cancel := context.WithTimeout(ctx, b.cfg.CallTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- op(callCtx) }()

	var err error
	select {
	case err = <-done:
	case <-callCtx.Done():
		err = fmt.Errorf("call to %s timed out after %s: %w", b.cfg.Name, b.cfg.CallTimeout, callCtx.Err())
	}

	if err == nil || IsBenign(err) {
		b.recordSuccess()
	} else {
		b.recordFailure()
	}
	return err
}

// successThreshold is the number of half-open successes needed to close the
// circuit: ceil(FailureThreshold / 2).
func (b *Breaker) successThreshold() int {
	return (b.cfg.FailureThreshold + 1) / 2
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.requestCount++

	switch b.state {
	case StateClosed, StateHalfOpen:
		return nil
	case StateOpen:
		now := time.Now()
		if now.Before(b.nextAttemptAt) {
			b.observeReject()
			return &OpenError{Name: b.cfg.Name, RetryAfter: b.nextAttemptAt.Sub(now)}
		}
		b.transitionTo(StateHalfOpen)
		return nil
	default:
		return fmt.Errorf("circuit breaker %q in unknown state", b.cfg.Name)
	}
}

func (b *Breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures = 0

	if b.state == StateHalfOpen {
		b.halfOpenSuccesses++
		if b.halfOpenSuccesses >= b.successThreshold() {
			b.transitionTo(StateClosed)
		}
	}
}

func (b *Breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures++
	b.lastFailureTime = time.Now()
	b.observeFailure()

	switch b.state {
	case StateClosed:
		if b.consecutiveFailures >= b.cfg.FailureThreshold {
			b.nextAttemptAt = time.Now().Add(b.cfg.ResetTimeout)
			b.transitionTo(StateOpen)
		}
	case StateHalfOpen:
		// A single probe failure reopens the circuit for a full cooldown.
		b.nextAttemptAt = time.Now().Add(b.cfg.ResetTimeout)
		b.transitionTo(StateOpen)
	case StateOpen:
	}
}

// transitionTo moves the breaker to a new state. Callers must hold b.mu.
func (b *Breaker) transitionTo(next State) {
	if b.state == next {
		return
	}
	prev := b.state
	b.state = next

	switch next {
	case StateClosed:
		b.consecutiveFailures = 0
		b.halfOpenSuccesses = 0
		b.nextAttemptAt = time.Time{}
	case StateHalfOpen:
		b.halfOpenSuccesses = 0
	case StateOpen:
	}

	b.log.Info("circuit breaker state transition",
		"from", prev.String(),
		"to", next.String(),
		"consecutiveFailures", b.consecutiveFailures,
	)
	b.observeState(next)
	if next == StateOpen {
		b.observeOpen()
	}
}

// Reset closes the circuit and clears all counters. Operator action.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.transitionTo(StateClosed)
	b.consecutiveFailures = 0
	b.halfOpenSuccesses = 0
	b.lastFailureTime = time.Time{}
	b.nextAttemptAt = time.Time{}
}

// ForceOpen opens the circuit for a full reset window. Operator action,
// useful while a dependency undergoes maintenance.
func (b *Breaker) ForceOpen() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextAttemptAt = time.Now().Add(b.cfg.ResetTimeout)
	b.transitionTo(StateOpen)
}

// Snapshot returns the current counters for health endpoints.
func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Snapshot{
		Name:                b.cfg.Name,
		State:               b.state,
		ConsecutiveFailures: b.consecutiveFailures,
		HalfOpenSuccesses:   b.halfOpenSuccesses,
		RequestCount:        b.requestCount,
		LastFailureTime:     b.lastFailureTime,
		NextAttemptAt:       b.nextAttemptAt,
	}
}

func (b *Breaker) observeState(s State) {
	if b.metrics != nil {
		b.metrics.state.WithLabelValues(b.cfg.Name).Set(float64(s))
	}
}

func (b *Breaker) observeOpen() {
	if b.metrics != nil {
		b.metrics.opens.WithLabelValues(b.cfg.Name).Inc()
	}
}

func (b *Breaker) observeFailure() {
	if b.metrics != nil {
		b.metrics.failures.WithLabelValues(b.cfg.Name).Inc()
	}
}

func (b *Breaker) observeReject() {
	if b.metrics != nil {
		b.metrics.rejects.WithLabelValues(b.cfg.Name).Inc()
	}
}
