// Package token maps opaque short-lived tokens to originating URLs so a
// follow-up action can reference an earlier request without resending it.
package token

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meryload/loadbot/internal/domain"
)

type entry struct {
	token    string
	url      string
	issuedAt time.Time
}

// Registry is a bounded, expiring token store. Tokens are single-use:
// a successful Resolve consumes the entry.
type Registry struct {
	mu       sync.Mutex
	entries  map[string]*entry
	queue    []*entry // issue order, oldest first; may hold consumed entries
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// New creates a registry holding at most capacity live tokens, each valid
// for ttl after issue. Capacities below 1 are clamped to 1.
func New(capacity int, ttl time.Duration) *Registry {
	if capacity < 1 {
		capacity = 1
	}
	return &Registry{
		entries:  make(map[string]*entry),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Issue stores the URL under a fresh random token and returns the token.
// Expired entries are pruned first; if the registry is still full, the
// oldest live entry is evicted.
func (r *Registry) Issue(url string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prune()
	for len(r.entries) >= r.capacity {
		if !r.evictOldest() {
			break
		}
	}

	e := &entry{token: uuid.New().String(), url: url, issuedAt: r.now()}
	r.entries[e.token] = e
	r.queue = append(r.queue, e)
	return e.token
}

// Resolve returns the URL behind a token and consumes the entry. Unknown,
// expired, or already-used tokens yield domain.ErrTokenNotFound.
func (r *Registry) Resolve(token string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prune()
	e, ok := r.entries[token]
	if !ok {
		return "", domain.ErrTokenNotFound
	}
	delete(r.entries, token)
	return e.url, nil
}

// Len returns the number of live tokens.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune()
	return len(r.entries)
}

// live reports whether a queued entry still backs a map entry. An entry
// consumed by Resolve stays in the queue until it ages out.
func (r *Registry) live(e *entry) bool {
	cur, ok := r.entries[e.token]
	return ok && cur == e
}

// prune drops expired and consumed entries from the queue head. Caller
// holds the lock.
func (r *Registry) prune() {
	cutoff := r.now().Add(-r.ttl)
	for len(r.queue) > 0 {
		e := r.queue[0]
		if r.live(e) && !e.issuedAt.Before(cutoff) {
			return
		}
		r.queue = r.queue[1:]
		if r.live(e) {
			delete(r.entries, e.token)
		}
	}
}

// evictOldest removes the oldest live entry, reporting whether one was
// found. Caller holds the lock.
func (r *Registry) evictOldest() bool {
	for len(r.queue) > 0 {
		e := r.queue[0]
		r.queue = r.queue[1:]
		if r.live(e) {
			delete(r.entries, e.token)
			return true
		}
	}
	return false
}
