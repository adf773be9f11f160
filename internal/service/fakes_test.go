package service

import (
	"context"
	"sync"
	"time"

	"github.com/tvsaude/auth-service/internal/store"
	"github.com/tvsaude/auth-service/models"
)

// In-memory repositories mirroring the SQLite-backed ones closely enough
// for service-level tests: same sentinel errors, same active/expiry
// filtering, same soft-delete semantics. A shared failAll switch simulates
// a lost database connection.

type memUserRepository struct {
	mu      sync.Mutex
	nextID  int64
	users   map[int64]models.User
	failAll bool
}

func newMemUserRepository() *memUserRepository {
	return &memUserRepository{nextID: 1, users: map[int64]models.User{}}
}

func (r *memUserRepository) CreateUser(_ context.Context, user models.User) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return models.User{}, errDatabaseGone
	}
	for _, existing := range r.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return models.User{}, store.ErrIdentityAlreadyExists
		}
	}
	user.UserID = r.nextID
	r.nextID++
	user.Active = true
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.UserID] = user
	return user, nil
}

func (r *memUserRepository) FindUserByUsername(_ context.Context, username string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return models.User{}, errDatabaseGone
	}
	for _, user := range r.users {
		if user.Username == username && user.Active {
			return user, nil
		}
	}
	return models.User{}, store.ErrUserNotFound
}

func (r *memUserRepository) FindUserByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return models.User{}, errDatabaseGone
	}
	for _, user := range r.users {
		if user.Email == email && user.Active {
			return user, nil
		}
	}
	return models.User{}, store.ErrUserNotFound
}

func (r *memUserRepository) FindUserByID(_ context.Context, userID int64) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return models.User{}, errDatabaseGone
	}
	user, ok := r.users[userID]
	if !ok {
		return models.User{}, store.ErrUserNotFound
	}
	return user, nil
}

func (r *memUserRepository) mutate(userID int64, fn func(*models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errDatabaseGone
	}
	user, ok := r.users[userID]
	if !ok {
		return store.ErrUserNotFound
	}
	fn(&user)
	user.UpdatedAt = time.Now()
	r.users[userID] = user
	return nil
}

func (r *memUserRepository) UpdatePassword(_ context.Context, userID int64, passwordHash string) error {
	return r.mutate(userID, func(u *models.User) { u.PasswordHash = passwordHash })
}

func (r *memUserRepository) IncrementFailedAttempts(_ context.Context, userID int64) error {
	return r.mutate(userID, func(u *models.User) { u.FailedAttempts++ })
}

func (r *memUserRepository) ResetFailedAttempts(_ context.Context, userID int64) error {
	return r.mutate(userID, func(u *models.User) {
		u.FailedAttempts = 0
		u.LockedUntil = time.Time{}
	})
}

func (r *memUserRepository) SetLockout(_ context.Context, userID int64, until time.Time) error {
	return r.mutate(userID, func(u *models.User) { u.LockedUntil = until })
}

func (r *memUserRepository) UpdateLastLogin(_ context.Context, userID int64, at time.Time) error {
	return r.mutate(userID, func(u *models.User) { u.LastLoginAt = at })
}

func (r *memUserRepository) SetTwoFactorSecret(_ context.Context, userID int64, secret string) error {
	return r.mutate(userID, func(u *models.User) {
		u.TwoFactorSecret = secret
		u.TwoFactorEnabled = false
	})
}

func (r *memUserRepository) EnableTwoFactor(_ context.Context, userID int64) error {
	return r.mutate(userID, func(u *models.User) { u.TwoFactorEnabled = true })
}

func (r *memUserRepository) DeactivateUser(_ context.Context, userID int64) error {
	return r.mutate(userID, func(u *models.User) { u.Active = false })
}

func (r *memUserRepository) CountActiveByLevel(_ context.Context, level models.PermissionLevel) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return 0, errDatabaseGone
	}
	var count int64
	for _, user := range r.users {
		if user.Active && user.Level == level {
			count++
		}
	}
	return count, nil
}

type memSessionRepository struct {
	mu       sync.Mutex
	nextID   int64
	sessions map[string]models.Session
	failAll  bool
}

func newMemSessionRepository() *memSessionRepository {
	return &memSessionRepository{nextID: 1, sessions: map[string]models.Session{}}
}

func (r *memSessionRepository) CreateSession(_ context.Context, session models.Session) (models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return models.Session{}, errDatabaseGone
	}
	session.SessionID = r.nextID
	r.nextID++
	session.Active = true
	r.sessions[session.Token] = session
	return session, nil
}

func (r *memSessionRepository) FindActiveSession(_ context.Context, token string, now time.Time) (models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return models.Session{}, errDatabaseGone
	}
	session, ok := r.sessions[token]
	if !ok || !session.Active || session.Expired(now) {
		return models.Session{}, store.ErrSessionNotFound
	}
	return session, nil
}

func (r *memSessionRepository) TouchSession(_ context.Context, token string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errDatabaseGone
	}
	if session, ok := r.sessions[token]; ok {
		session.LastActivityAt = at
		r.sessions[token] = session
	}
	return nil
}

func (r *memSessionRepository) InvalidateSession(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errDatabaseGone
	}
	if session, ok := r.sessions[token]; ok {
		session.Active = false
		r.sessions[token] = session
	}
	return nil
}

func (r *memSessionRepository) InvalidateUserSessions(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errDatabaseGone
	}
	for token, session := range r.sessions {
		if session.UserID == userID {
			session.Active = false
			r.sessions[token] = session
		}
	}
	return nil
}

func (r *memSessionRepository) ExpireSessions(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return 0, errDatabaseGone
	}
	var expired int64
	for token, session := range r.sessions {
		if session.Active && session.Expired(now) {
			session.Active = false
			r.sessions[token] = session
			expired++
		}
	}
	return expired, nil
}

type memAuditRepository struct {
	mu      sync.Mutex
	nextID  int64
	events  []models.AuditEvent
	failAll bool
}

func newMemAuditRepository() *memAuditRepository {
	return &memAuditRepository{nextID: 1}
}

func (r *memAuditRepository) AppendEvent(_ context.Context, event models.AuditEvent) (models.AuditEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return models.AuditEvent{}, errDatabaseGone
	}
	event.EventID = r.nextID
	r.nextID++
	r.events = append(r.events, event)
	return event, nil
}

func (r *memAuditRepository) ListEvents(_ context.Context, filter models.AuditFilter) ([]models.AuditEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, errDatabaseGone
	}
	var matched []models.AuditEvent
	for _, event := range r.events {
		if filter.UserID != 0 && event.UserID != filter.UserID {
			continue
		}
		if filter.Action != "" && event.Action != filter.Action {
			continue
		}
		if filter.Success != nil && event.Success != *filter.Success {
			continue
		}
		matched = append(matched, event)
	}
	return matched, nil
}

// byAction returns the recorded events carrying the given action name.
func (r *memAuditRepository) byAction(action string) []models.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []models.AuditEvent
	for _, event := range r.events {
		if event.Action == action {
			matched = append(matched, event)
		}
	}
	return matched
}

func (r *memAuditRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type memResetTokenRepository struct {
	mu      sync.Mutex
	nextID  int64
	tokens  map[string]models.PasswordResetToken
	failAll bool
}

func newMemResetTokenRepository() *memResetTokenRepository {
	return &memResetTokenRepository{nextID: 1, tokens: map[string]models.PasswordResetToken{}}
}

func (r *memResetTokenRepository) CreateResetToken(_ context.Context, token models.PasswordResetToken) (models.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return models.PasswordResetToken{}, errDatabaseGone
	}
	token.TokenID = r.nextID
	r.nextID++
	r.tokens[token.Token] = token
	return token, nil
}

func (r *memResetTokenRepository) FindResetToken(_ context.Context, token string) (models.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return models.PasswordResetToken{}, errDatabaseGone
	}
	found, ok := r.tokens[token]
	if !ok {
		return models.PasswordResetToken{}, store.ErrResetTokenNotFound
	}
	return found, nil
}

func (r *memResetTokenRepository) MarkResetTokenUsed(_ context.Context, tokenID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errDatabaseGone
	}
	for value, token := range r.tokens {
		if token.TokenID == tokenID {
			token.Used = true
			r.tokens[value] = token
		}
	}
	return nil
}
