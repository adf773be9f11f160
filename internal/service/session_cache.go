package service

import (
	"sync"
	"time"

	"github.com/tvsaude/auth-service/models"
)

// SessionCache is an in-memory mirror of the hot subset of active sessions,
// keyed by session token. It holds value copies: the persistent store
// remains the source of truth, and a cache miss always falls through to it.
//
// The cache is an injected dependency, not a package global, so tests can
// construct isolated instances and assert on eviction directly. All methods
// are safe for concurrent use.
type SessionCache struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

// NewSessionCache constructs an empty cache.
func NewSessionCache() *SessionCache {
	return &SessionCache{
		sessions: make(map[string]models.Session),
	}
}

// Get returns the cached copy for the token, if present.
func (c *SessionCache) Get(token string) (models.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	session, ok := c.sessions[token]
	return session, ok
}

// Put stores a copy of the session under its token.
func (c *SessionCache) Put(session models.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sessions[session.Token] = session
}

// Delete removes the token from the cache. Deleting an absent token is a
// no-op.
func (c *SessionCache) Delete(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.sessions, token)
}

// DeleteUser removes every cached session owned by the user. Called when a
// password reset revokes the user's sessions.
func (c *SessionCache) DeleteUser(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for token, session := range c.sessions {
		if session.UserID == userID {
			delete(c.sessions, token)
		}
	}
}

// EvictExpired removes every cached session whose lifetime has elapsed at
// now and returns the number of evictions. Called by the background sweeper.
func (c *SessionCache) EvictExpired(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for token, session := range c.sessions {
		if session.Expired(now) {
			delete(c.sessions, token)
			evicted++
		}
	}

	return evicted
}

// Len returns the number of cached sessions.
func (c *SessionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.sessions)
}
