// Package ratelimit implements a per-client sliding-window admission check
// for the chat endpoint. It is a pure gate: no queueing, no blocking.
package ratelimit

import (
	"sync"
	"time"
)

const defaultBucket = "default"

type bucket struct {
	hits     []time.Time
	lastSeen time.Time
}

// Limiter caps each client at maxHits requests per trailing window.
// Timestamps older than the window are pruned lazily on every check, and
// buckets idle for ten windows are swept so the map does not grow without
// bound across distinct clients.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	window  time.Duration
	maxHits int
	now     func() time.Time

	stop chan struct{}
	once sync.Once
}

func New(window time.Duration, maxHits int) *Limiter {
	if window <= 0 {
		window = time.Minute
	}
	if maxHits <= 0 {
		maxHits = 10
	}
	return &Limiter{
		buckets: make(map[string]*bucket),
		window:  window,
		maxHits: maxHits,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
}

// SetClock overrides the time source. Test hook.
func (l *Limiter) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

// Allow reports whether clientID may issue a request right now and, if so,
// records it. An empty clientID shares the default bucket.
func (l *Limiter) Allow(clientID string) bool {
	if clientID == "" {
		clientID = defaultBucket
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[clientID]
	if !ok {
		b = &bucket{}
		l.buckets[clientID] = b
	}
	b.lastSeen = now

	cutoff := now.Add(-l.window)
	kept := b.hits[:0]
	for _, t := range b.hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	b.hits = kept

	if len(b.hits) >= l.maxHits {
		return false
	}
	b.hits = append(b.hits, now)
	return true
}

// StartSweeper evicts stale buckets in the background until Stop is called.
func (l *Limiter) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		interval = l.window
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.Sweep()
			case <-l.stop:
				return
			}
		}
	}()
}

// Sweep drops buckets that have been idle for ten windows.
func (l *Limiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-10 * l.window)
	for id, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, id)
		}
	}
}

// Len returns the live bucket count. Test hook.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}
