package session

import "sync"

// DefaultMaxAttempts bounds consecutive failed recognition attempts within
// one capture cycle.
const DefaultMaxAttempts = 3

// RetryBudget counts failed recognition attempts within one capture cycle.
// It resets on an accepted recognition or once the budget is exhausted and
// acknowledged.
type RetryBudget struct {
	mu          sync.Mutex
	count       int
	maxAttempts int
}

// NewRetryBudget creates a budget. Non-positive limits fall back to
// DefaultMaxAttempts.
func NewRetryBudget(maxAttempts int) *RetryBudget {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &RetryBudget{maxAttempts: maxAttempts}
}

// Attempt registers one attempt and reports whether it was permitted. An
// exhausted budget never permits further attempts until Reset.
func (r *RetryBudget) Attempt() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count >= r.maxAttempts {
		return false
	}
	r.count++
	return true
}

// Exhausted reports whether the budget is used up.
func (r *RetryBudget) Exhausted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count >= r.maxAttempts
}

// Count returns the number of attempts registered so far.
func (r *RetryBudget) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Reset clears the attempt counter, called on an accepted recognition or
// after exhaustion has been handled.
func (r *RetryBudget) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count = 0
}
