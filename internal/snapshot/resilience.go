package snapshot

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// CircuitBreakerState represents the state of the circuit breaker.
type CircuitBreakerState int

const (
	// CircuitClosed allows loads to pass through.
	CircuitClosed CircuitBreakerState = iota

	// CircuitOpen rejects loads immediately.
	CircuitOpen

	// CircuitHalfOpen allows a test load to check if the database has recovered.
	CircuitHalfOpen
)

func (s CircuitBreakerState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig holds configuration for the circuit breaker.
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive failures before opening the circuit.
	MaxFailures int

	// ResetTimeout is how long to wait before attempting a reset (half-open state).
	ResetTimeout time.Duration

	// HalfOpenMaxCalls is the number of calls allowed in half-open state.
	HalfOpenMaxCalls int
}

// DefaultCircuitBreakerConfig returns the default circuit breaker configuration.
func DefaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		MaxFailures:      5,
		ResetTimeout:     30 * time.Second,
		HalfOpenMaxCalls: 3,
	}
}

// CircuitBreaker guards the snapshot loader against a failing database.
type CircuitBreaker struct {
	mu              sync.Mutex
	state           CircuitBreakerState
	failureCount    int
	successCount    int
	lastFailureTime time.Time
	config          *CircuitBreakerConfig
	logger          *zerolog.Logger
	name            string
}

// NewCircuitBreaker creates a new circuit breaker.
func NewCircuitBreaker(name string, config *CircuitBreakerConfig, logger *zerolog.Logger) *CircuitBreaker {
	if config == nil {
		config = DefaultCircuitBreakerConfig()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &CircuitBreaker{
		state:  CircuitClosed,
		config: config,
		logger: logger,
		name:   name,
	}
}

// Allow returns true if the load should be attempted.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return true

	case CircuitOpen:
		if time.Since(cb.lastFailureTime) >= cb.config.ResetTimeout {
			cb.state = CircuitHalfOpen
			cb.logger.Info().
				Str("circuit_breaker", cb.name).
				Msg("Circuit breaker transitioning to half-open")
			return true
		}
		return false

	case CircuitHalfOpen:
		return cb.successCount < cb.config.HalfOpenMaxCalls

	default:
		return false
	}
}

// RecordSuccess records a successful load.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		cb.failureCount = 0

	case CircuitHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.config.HalfOpenMaxCalls {
			cb.state = CircuitClosed
			cb.successCount = 0
			cb.failureCount = 0
			cb.logger.Info().
				Str("circuit_breaker", cb.name).
				Msg("Circuit breaker closing after successful recovery")
		}
	}
}

// RecordFailure records a failed load.
func (cb *CircuitBreaker) RecordFailure(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	cb.lastFailureTime = time.Now()

	cb.logger.Error().
		Err(err).
		Str("circuit_breaker", cb.name).
		Int("failure_count", cb.failureCount).
		Msg("Circuit breaker recording failure")

	switch cb.state {
	case CircuitClosed:
		if cb.failureCount >= cb.config.MaxFailures {
			cb.state = CircuitOpen
			cb.logger.Warn().
				Str("circuit_breaker", cb.name).
				Int("failure_count", cb.failureCount).
				Dur("reset_timeout", cb.config.ResetTimeout).
				Msg("Circuit breaker opening after max failures")
		}

	case CircuitHalfOpen:
		// Any failure in half-open immediately re-opens the circuit.
		cb.state = CircuitOpen
		cb.successCount = 0
		cb.logger.Warn().
			Str("circuit_breaker", cb.name).
			Msg("Circuit breaker re-opening after failure in half-open state")
	}
}

// State returns the current state of the circuit breaker.
func (cb *CircuitBreaker) State() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset resets the circuit breaker to closed state.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = CircuitClosed
	cb.failureCount = 0
	cb.successCount = 0
	cb.logger.Info().
		Str("circuit_breaker", cb.name).
		Msg("Circuit breaker manually reset to closed state")
}

// WarmupGate blocks reads until the first snapshot load has completed.
type WarmupGate struct {
	mu       sync.RWMutex
	ready    bool
	warmedCh chan struct{}
	logger   *zerolog.Logger
}

// NewWarmupGate creates a new warmup gate.
func NewWarmupGate(logger *zerolog.Logger) *WarmupGate {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &WarmupGate{
		warmedCh: make(chan struct{}),
		logger:   logger,
	}
}

// Wait blocks until warmup is complete or the context is cancelled.
// Returns false if the context was cancelled first.
func (wg *WarmupGate) Wait(ctx context.Context) bool {
	wg.mu.RLock()
	ready := wg.ready
	wg.mu.RUnlock()

	if ready {
		return true
	}

	select {
	case <-wg.warmedCh:
		return true
	case <-ctx.Done():
		wg.logger.Warn().Msg("Warmup gate: context cancelled while waiting for warmup")
		return false
	}
}

// Ready marks the warmup as complete.
func (wg *WarmupGate) Ready() {
	wg.mu.Lock()
	defer wg.mu.Unlock()

	if !wg.ready {
		wg.ready = true
		close(wg.warmedCh)
		wg.logger.Info().Msg("Warmup gate: warmup complete, allowing requests")
	}
}

// IsReady returns whether warmup is complete without blocking.
func (wg *WarmupGate) IsReady() bool {
	wg.mu.RLock()
	defer wg.mu.RUnlock()
	return wg.ready
}
