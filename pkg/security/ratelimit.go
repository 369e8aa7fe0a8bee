package security

import (
	"sync"
	"time"
)

// RateLimiter enforces a sliding-window request limit per identity.
// It protects the write path from abuse: callers check Allow before
// performing rate-limited work.
//
// Thread-safe for concurrent use.
type RateLimiter struct {
	maxRequests int
	window      time.Duration
	mu          sync.Mutex
	requests    map[string][]time.Time
}

// NewRateLimiter creates a limiter allowing maxRequests per identity
// within the sliding window.
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
		requests:    make(map[string][]time.Time),
	}
}

// Allow reports whether a request by id is within the limit, recording
// it if so.
func (l *RateLimiter) Allow(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	recent := l.prune(id, now)

	if len(recent) < l.maxRequests {
		l.requests[id] = append(recent, now)
		return true
	}

	l.requests[id] = recent
	return false
}

// RetryAfter returns how long id must wait before the next request is
// allowed. Zero means a request would be allowed now.
func (l *RateLimiter) RetryAfter(id string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	recent := l.prune(id, now)
	l.requests[id] = recent

	if len(recent) < l.maxRequests {
		return 0
	}

	oldest := recent[0]
	wait := l.window - now.Sub(oldest)
	if wait < 0 {
		return 0
	}
	return wait
}

// Reset clears the recorded requests for id.
func (l *RateLimiter) Reset(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.requests, id)
}

// Stats returns the number of identities with recent requests and the
// total recent request count.
func (l *RateLimiter) Stats() (activeIDs, totalRequests int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for id := range l.requests {
		recent := l.prune(id, now)
		if len(recent) == 0 {
			delete(l.requests, id)
			continue
		}
		l.requests[id] = recent
		activeIDs++
		totalRequests += len(recent)
	}
	return activeIDs, totalRequests
}

// prune returns the requests for id still inside the window. Timestamps
// are appended in order, so the slice stays sorted and the first entry
// is always the oldest.
func (l *RateLimiter) prune(id string, now time.Time) []time.Time {
	recent := l.requests[id]
	cut := 0
	for cut < len(recent) && now.Sub(recent[cut]) >= l.window {
		cut++
	}
	return recent[cut:]
}

// Operation classes understood by the MultiRateLimiter.
const (
	OpMigration = "migration"
	OpFileOps   = "file_ops"
	OpAnalysis  = "analysis"
	OpAPICalls  = "api_calls"
)

// MultiRateLimiter bundles one limiter per operation class with the
// default limits for each.
type MultiRateLimiter struct {
	limiters map[string]*RateLimiter
}

// NewMultiRateLimiter creates limiters for every known operation class.
func NewMultiRateLimiter() *MultiRateLimiter {
	return &MultiRateLimiter{
		limiters: map[string]*RateLimiter{
			OpMigration: NewRateLimiter(10, time.Hour),
			OpFileOps:   NewRateLimiter(100, time.Minute),
			OpAPICalls:  NewRateLimiter(1000, time.Hour),
			OpAnalysis:  NewRateLimiter(50, time.Hour),
		},
	}
}

// Allow checks the limiter for the operation class. Unknown operations
// are not rate limited.
func (m *MultiRateLimiter) Allow(operation, id string) bool {
	limiter, ok := m.limiters[operation]
	if !ok {
		return true
	}
	return limiter.Allow(id)
}

// RetryAfter returns the wait time for the operation class, or zero for
// unknown operations.
func (m *MultiRateLimiter) RetryAfter(operation, id string) time.Duration {
	limiter, ok := m.limiters[operation]
	if !ok {
		return 0
	}
	return limiter.RetryAfter(id)
}
