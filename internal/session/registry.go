// Package session holds the process-wide device connection. The registry is
// a single slot: connecting replaces whatever was there, and deletion is
// guarded so the backend's close primitive runs at most once no matter how
// many callers race on it.
package session

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/mj1618/mobile-cli/internal/driver"
)

// Session is one live connection to a device or app instance.
type Session struct {
	ID       string
	Platform string
	Driver   *driver.Instance
}

// Registry owns the active session slot.
type Registry struct {
	mu       sync.Mutex
	active   *Session
	deleting atomic.Bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Set stores the session, replacing any previous one. The previous session's
// backend is not closed; the caller decides its fate.
func (r *Registry) Set(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = s
}

// Get returns the active session, or nil when the slot is empty.
func (r *Registry) Get() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Delete closes the active session's backend and clears the slot. The
// deletion flag admits one closer at a time: a concurrent Delete while one
// is in flight returns false immediately and never issues a second close.
// The flag releases on every path, including a failing close. On close
// failure the slot is kept so the caller can retry, and the error carries
// the backend's message. Deleting an empty slot returns false.
func (r *Registry) Delete(ctx context.Context) (bool, error) {
	if !r.deleting.CompareAndSwap(false, true) {
		return false, nil
	}
	defer r.deleting.Store(false)

	r.mu.Lock()
	s := r.active
	r.mu.Unlock()
	if s == nil {
		return false, nil
	}

	if err := s.Driver.Close(ctx); err != nil {
		return false, err
	}

	r.mu.Lock()
	// Only clear the slot if no new session replaced it during the close.
	if r.active == s {
		r.active = nil
	}
	r.mu.Unlock()
	return true, nil
}
