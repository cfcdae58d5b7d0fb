// Package circuitbreaker protects calls to external services: after enough
// failures the circuit opens and calls fail fast until a probe succeeds.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pool-reporter/internal/logging"
)

// State represents the circuit breaker state.
type State string

const (
	// StateClosed allows requests through.
	StateClosed State = "closed"
	// StateOpen blocks requests until the timeout elapses.
	StateOpen State = "open"
	// StateHalfOpen admits a limited number of probe requests.
	StateHalfOpen State = "half_open"
)

// ErrCircuitOpen is returned while the circuit is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// ErrTooManyRequests is returned when the half-open probe budget is spent.
var ErrTooManyRequests = errors.New("too many requests in half-open state")

// Config configures a circuit breaker.
type Config struct {
	Name             string
	MaxFailures      int
	FailureThreshold float64
	Timeout          time.Duration
	HalfOpenMaxCalls int
}

// DefaultConfig returns a default configuration: open after 10 failures or a
// 50% failure rate, probe again after 30 seconds.
func DefaultConfig(name string) *Config {
	return &Config{
		Name:             name,
		MaxFailures:      10,
		FailureThreshold: 0.5,
		Timeout:          30 * time.Second,
		HalfOpenMaxCalls: 3,
	}
}

// CircuitBreaker tracks failures against one downstream dependency.
type CircuitBreaker struct {
	name             string
	maxFailures      int
	failureThreshold float64
	timeout          time.Duration
	halfOpenMaxCalls int
	logger           *logging.Logger

	mu               sync.Mutex
	state            State
	failures         int
	successes        int
	totalCalls       int
	consecutiveFails int
	lastStateChange  time.Time
}

// New creates a circuit breaker.
func New(config *Config, logger *logging.Logger) *CircuitBreaker {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &CircuitBreaker{
		name:             config.Name,
		maxFailures:      config.MaxFailures,
		failureThreshold: config.FailureThreshold,
		timeout:          config.Timeout,
		halfOpenMaxCalls: config.HalfOpenMaxCalls,
		logger:           logger.WithField("circuitBreaker", config.Name),
		state:            StateClosed,
		lastStateChange:  time.Now(),
	}
}

// Execute runs fn under circuit breaker protection.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}
	err := fn()
	cb.afterRequest(err)
	return err
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if time.Since(cb.lastStateChange) > cb.timeout {
			cb.setState(StateHalfOpen)
			cb.logger.Info("Circuit breaker transitioning to half-open")
			return nil
		}
		return ErrCircuitOpen
	case StateHalfOpen:
		if cb.totalCalls >= cb.halfOpenMaxCalls {
			return ErrTooManyRequests
		}
	}
	return nil
}

func (cb *CircuitBreaker) afterRequest(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.totalCalls++
	if err != nil {
		cb.onFailure()
	} else {
		cb.onSuccess()
	}
}

func (cb *CircuitBreaker) onSuccess() {
	cb.successes++
	cb.consecutiveFails = 0

	if cb.state == StateHalfOpen && cb.successes >= cb.halfOpenMaxCalls {
		cb.setState(StateClosed)
		cb.resetCounters()
		cb.logger.Info("Circuit breaker closed after successful recovery")
	}
}

func (cb *CircuitBreaker) onFailure() {
	cb.failures++
	cb.consecutiveFails++

	switch cb.state {
	case StateClosed:
		if cb.shouldOpen() {
			cb.setState(StateOpen)
			cb.logger.WithFields(map[string]interface{}{
				"failures":    cb.failures,
				"totalCalls":  cb.totalCalls,
				"failureRate": cb.failureRate(),
			}).Warn("Circuit breaker opened")
		}
	case StateHalfOpen:
		// Any failure during probing reopens the circuit.
		cb.setState(StateOpen)
		cb.logger.Warn("Circuit breaker reopened after failed probe")
	}
}

func (cb *CircuitBreaker) shouldOpen() bool {
	if cb.totalCalls < cb.maxFailures {
		return false
	}
	return cb.failureRate() >= cb.failureThreshold || cb.consecutiveFails >= cb.maxFailures
}

func (cb *CircuitBreaker) failureRate() float64 {
	if cb.totalCalls == 0 {
		return 0
	}
	return float64(cb.failures) / float64(cb.totalCalls)
}

func (cb *CircuitBreaker) setState(state State) {
	cb.state = state
	cb.lastStateChange = time.Now()
}

func (cb *CircuitBreaker) resetCounters() {
	cb.failures = 0
	cb.successes = 0
	cb.totalCalls = 0
	cb.consecutiveFails = 0
}

// GetState returns the current state.
func (cb *CircuitBreaker) GetState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset manually closes the circuit and clears its counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.setState(StateClosed)
	cb.resetCounters()
}
