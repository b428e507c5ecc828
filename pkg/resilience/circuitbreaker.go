package resilience

import (
	"errors"
	"sync"
	"time"

	"dataset-feedback/backend/pkg/logger"
)

// ErrCircuitOpen is returned when the breaker short-circuits a call.
var ErrCircuitOpen = errors.New("circuit open")

// State is the current state of a circuit breaker.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

// CircuitBreaker guards calls to an external dependency. After
// FailureThreshold consecutive failures the circuit opens and calls fail
// fast until RetryTimeout elapses; a half-open probe then decides whether
// to close again.
type CircuitBreaker struct {
	name             string
	failureThreshold uint
	successThreshold uint
	retryTimeout     time.Duration
	log              *logger.Logger

	mu              sync.RWMutex
	state           State
	failureCount    uint
	successCount    uint
	nextAttemptTime time.Time
}

// Config holds circuit breaker settings.
type Config struct {
	Name             string
	FailureThreshold uint
	SuccessThreshold uint
	RetryTimeout     time.Duration
}

// DefaultConfig returns the settings used for the moral check service.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		RetryTimeout:     60 * time.Second,
	}
}

func NewCircuitBreaker(config Config, log *logger.Logger) *CircuitBreaker {
	return &CircuitBreaker{
		name:             config.Name,
		state:            StateClosed,
		failureThreshold: config.FailureThreshold,
		successThreshold: config.SuccessThreshold,
		retryTimeout:     config.RetryTimeout,
		log:              log,
	}
}

// Execute runs fn through the breaker.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.allowRequest() {
		cb.log.Warn("Circuit breaker preventing request",
			"name", cb.name,
			"state", string(cb.State()),
		)
		return ErrCircuitOpen
	}

	if err := fn(); err != nil {
		cb.recordFailure()
		return err
	}
	cb.recordSuccess()
	return nil
}

func (cb *CircuitBreaker) allowRequest() bool {
	cb.mu.RLock()
	state := cb.state
	nextAttemptTime := cb.nextAttemptTime
	cb.mu.RUnlock()

	switch state {
	case StateClosed:
		return true

	case StateOpen:
		if time.Now().After(nextAttemptTime) {
			cb.mu.Lock()
			defer cb.mu.Unlock()
			if cb.state == StateOpen && time.Now().After(cb.nextAttemptTime) {
				cb.state = StateHalfOpen
				cb.successCount = 0
				cb.log.Info("Circuit breaker half-open", "name", cb.name)
				return true
			}
		}
		return false

	case StateHalfOpen:
		cb.mu.RLock()
		defer cb.mu.RUnlock()
		return cb.successCount < cb.successThreshold
	}

	return false
}

func (cb *CircuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failureCount = 0
	case StateHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.successThreshold {
			cb.state = StateClosed
			cb.failureCount = 0
			cb.successCount = 0
			cb.log.Info("Circuit breaker closed", "name", cb.name)
		}
	}
}

func (cb *CircuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failureCount++
		if cb.failureCount >= cb.failureThreshold {
			cb.open()
		}
	case StateHalfOpen:
		cb.open()
	}
}

func (cb *CircuitBreaker) open() {
	cb.state = StateOpen
	cb.nextAttemptTime = time.Now().Add(cb.retryTimeout)
	cb.log.Info("Circuit breaker opened",
		"name", cb.name,
		"failures", cb.failureCount,
		"nextAttempt", cb.nextAttemptTime.Format(time.RFC3339),
	)
}

// State returns the current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}
