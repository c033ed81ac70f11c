package utils

import (
	"sync"
	"time"
)

// Lazy loads a value on first use and keeps it for the lifetime of the
// process. A failed load is not remembered past retryAfter, so a transient
// failure does not poison every later caller.
type Lazy[T any] struct {
	load       func() (T, error)
	retryAfter time.Duration
	now        func() time.Time

	mu       sync.Mutex
	loaded   bool
	value    T
	err      error
	failedAt time.Time
}

func NewLazy[T any](load func() (T, error), retryAfter time.Duration) *Lazy[T] {
	return &Lazy[T]{load: load, retryAfter: retryAfter, now: time.Now}
}

// Get returns the loaded value, loading it when no attempt is fresh enough.
func (l *Lazy[T]) Get() (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.loaded {
		return l.value, nil
	}
	if l.err != nil && l.now().Sub(l.failedAt) < l.retryAfter {
		return l.value, l.err
	}

	value, err := l.load()
	if err != nil {
		l.err = err
		l.failedAt = l.now()
		return value, err
	}

	l.value, l.loaded, l.err = value, true, nil
	return value, nil
}

// Forget drops a remembered failure so the next Get loads again. A loaded
// value is kept.
func (l *Lazy[T]) Forget() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = nil
}

// Peek returns the value only when a load already succeeded.
func (l *Lazy[T]) Peek() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value, l.loaded
}
