// Package session tracks whether an operator is signed in and persists the
// login between runs. List views gate their fetching on its Status.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/thesavant42/adminboard/internal/db"
	"github.com/thesavant42/adminboard/internal/models"
)

// Status is the authentication state
type Status int

const (
	Unauthenticated Status = iota
	Authenticated
)

func (s Status) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// ErrMissingCredentials is returned by Login for a blank username or password.
var ErrMissingCredentials = errors.New("username and password are required")

// Authenticator performs the remote login and carries the bearer token
type Authenticator interface {
	Login(ctx context.Context, username, password string, expiresInMins int) (*models.AuthUser, error)
	SetToken(token string)
}

// Store persists the session. *db.DB implements it.
type Store interface {
	SaveSession(s models.Session) error
	LoadSession() (*models.Session, error)
	DeleteSession() error
	RecordSessionEvent(kind, username string, at time.Time) error
}

// Manager owns the current session. It is safe for concurrent use; the API
// client's unauthorized hook calls Expire from request goroutines.
type Manager struct {
	auth   Authenticator
	store  Store
	ttl    time.Duration
	logger *log.Logger
	now    func() time.Time

	pub     sync.Mutex // serializes notifications
	endMu   sync.Mutex // serializes Logout and Expire
	mu      sync.Mutex
	current *models.Session
	subs    map[int]func(Status)
	nextSub int
}

// NewManager returns a signed-out manager. store may be nil for a session
// that lives only as long as the process. ttl <= 0 means no expiry.
func NewManager(auth Authenticator, store Store, ttl time.Duration, logger *log.Logger) *Manager {
	return &Manager{
		auth:   auth,
		store:  store,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
		subs:   make(map[int]func(Status)),
	}
}

// Status returns the current authentication state
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusLocked()
}

func (m *Manager) statusLocked() Status {
	if m.current == nil {
		return Unauthenticated
	}
	return Authenticated
}

// Current returns the signed-in session
func (m *Manager) Current() (models.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return models.Session{}, false
	}
	return *m.current, true
}

// Subscribe calls fn with the current status and then on every change.
// The returned function unsubscribes.
func (m *Manager) Subscribe(fn func(Status)) func() {
	m.pub.Lock()
	defer m.pub.Unlock()

	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	status := m.statusLocked()
	m.mu.Unlock()

	fn(status)

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// Restore loads a persisted session. Expired sessions are discarded.
// It reports whether the manager is now authenticated.
func (m *Manager) Restore() (bool, error) {
	if m.store == nil {
		return false, nil
	}
	s, err := m.store.LoadSession()
	if err != nil {
		return false, fmt.Errorf("failed to restore session: %w", err)
	}
	if s == nil || s.Token == "" {
		return false, nil
	}
	if s.Expired(m.now()) {
		if m.logger != nil {
			m.logger.Info("stored session expired", "user", s.User.Username, "expires_at", s.ExpiresAt)
		}
		if err := m.store.DeleteSession(); err != nil {
			return false, err
		}
		m.record(db.EventExpired, s.User.Username)
		return false, nil
	}

	m.install(s)
	if m.logger != nil {
		m.logger.Info("session restored", "user", s.User.Username)
	}
	return true, nil
}

// Login authenticates against the service and persists the new session
func (m *Manager) Login(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrMissingCredentials
	}

	user, err := m.auth.Login(ctx, username, password, int(m.ttl/time.Minute))
	if err != nil {
		if m.logger != nil {
			m.logger.Warn("login failed", "user", username, "error", err)
		}
		return err
	}

	now := m.now()
	s := &models.Session{
		User:      *user,
		Token:     user.BearerToken(),
		CreatedAt: now,
	}
	if m.ttl > 0 {
		s.ExpiresAt = now.Add(m.ttl)
	}

	if m.store != nil {
		if err := m.store.SaveSession(*s); err != nil {
			return err
		}
	}
	m.record(db.EventLogin, user.Username)
	m.install(s)

	if m.logger != nil {
		m.logger.Info("logged in", "user", user.Username)
	}
	return nil
}

// Logout ends the session and forgets the stored credentials
func (m *Manager) Logout() error {
	return m.end(db.EventLogout)
}

// Expire ends the session because the service rejected its token.
// It is a no-op when nobody is signed in.
func (m *Manager) Expire() {
	if err := m.end(db.EventExpired); err != nil && m.logger != nil {
		m.logger.Error("failed to clear expired session", "error", err)
	}
}

func (m *Manager) end(kind string) error {
	m.endMu.Lock()
	defer m.endMu.Unlock()

	m.mu.Lock()
	s := m.current
	m.mu.Unlock()
	if s == nil {
		return nil
	}

	if m.store != nil {
		if err := m.store.DeleteSession(); err != nil {
			return err
		}
	}
	m.record(kind, s.User.Username)
	m.install(nil)

	if m.logger != nil {
		m.logger.Info("session ended", "user", s.User.Username, "reason", kind)
	}
	return nil
}

// install swaps the current session and notifies subscribers on a change.
func (m *Manager) install(s *models.Session) {
	m.pub.Lock()
	defer m.pub.Unlock()

	m.mu.Lock()
	before := m.statusLocked()
	m.current = s
	after := m.statusLocked()
	subs := make([]func(Status), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	token := ""
	if s != nil {
		token = s.Token
	}
	m.auth.SetToken(token)

	if before == after {
		return
	}
	for _, fn := range subs {
		fn(after)
	}
}

func (m *Manager) record(kind, username string) {
	if m.store == nil {
		return
	}
	if err := m.store.RecordSessionEvent(kind, username, m.now()); err != nil && m.logger != nil {
		m.logger.Warn("failed to record session event", "kind", kind, "error", err)
	}
}
