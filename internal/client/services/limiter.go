package services

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterTTL = 30 * time.Minute

// AttemptLimiter throttles password guessing per username. Only a wrong
// password spends a token; unknown usernames and successful logins are never
// charged, and a successful login forgets the username.
type AttemptLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	entries map[string]*limBucket
	now     func() time.Time
}

type limBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewAttemptLimiter allows burst failed attempts, refilled one per interval.
// A non-positive burst disables throttling.
func NewAttemptLimiter(interval time.Duration, burst int) *AttemptLimiter {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &AttemptLimiter{
		limit:   limit,
		burst:   burst,
		ttl:     limiterTTL,
		entries: make(map[string]*limBucket),
		now:     time.Now,
	}
}

func (m *AttemptLimiter) disabled() bool {
	return m == nil || m.burst <= 0
}

// blocked reports whether key has no failed attempts left. It spends nothing.
func (m *AttemptLimiter) blocked(key string) bool {
	if m.disabled() {
		return false
	}
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	b := m.entries[key]
	if b == nil {
		return false
	}
	return b.lim.TokensAt(now) < 1
}

// fail charges one failed attempt to key.
func (m *AttemptLimiter) fail(key string) {
	if m.disabled() {
		return
	}
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range m.entries {
		if now.Sub(v.lastSeen) > m.ttl {
			delete(m.entries, k)
		}
	}

	b := m.entries[key]
	if b == nil {
		b = &limBucket{lim: rate.NewLimiter(m.limit, m.burst)}
		m.entries[key] = b
	}
	b.lastSeen = now
	b.lim.AllowN(now, 1)
}

func (m *AttemptLimiter) reset(key string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

func (m *AttemptLimiter) len() int {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
