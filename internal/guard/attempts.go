package guard

import (
	"context"
	"sync"
	"time"
)

// AttemptLog remembers when a submission was last dispatched for a key.
type AttemptLog interface {
	LastAttempt(ctx context.Context, key string) (time.Time, bool, error)
	RecordAttempt(ctx context.Context, key string, at time.Time, ttl time.Duration) error
}

// MemoryAttemptLog keeps attempts in process memory.
type MemoryAttemptLog struct {
	mu       sync.RWMutex
	attempts map[string]time.Time
}

func NewMemoryAttemptLog() *MemoryAttemptLog {
	return &MemoryAttemptLog{attempts: make(map[string]time.Time)}
}

func (m *MemoryAttemptLog) LastAttempt(_ context.Context, key string) (time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	at, ok := m.attempts[key]
	return at, ok, nil
}

// RecordAttempt ignores ttl; entries are overwritten by the next attempt.
func (m *MemoryAttemptLog) RecordAttempt(_ context.Context, key string, at time.Time, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[key] = at
	return nil
}

// Forget drops the entry for key.
func (m *MemoryAttemptLog) Forget(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.attempts, key)
}
