package worker

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter implements per-session rate limiting, keyed by patient ID.
// Batch replays of long transcripts use it to keep one patient's turns
// from monopolizing the model extractor.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a new rate limiter
func NewLimiter(turnsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(turnsPerSecond),
		defaultBurst: burst,
	}
}

// Wait waits for rate limit clearance for the given patient session
func (l *Limiter) Wait(ctx context.Context, patientID string) error {
	return l.getLimiter(patientID).Wait(ctx)
}

// Allow checks if a turn is allowed without waiting
func (l *Limiter) Allow(patientID string) bool {
	return l.getLimiter(patientID).Allow()
}

// getLimiter returns the rate limiter for a patient session
func (l *Limiter) getLimiter(patientID string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[patientID]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[patientID]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[patientID] = limiter

	return limiter
}
