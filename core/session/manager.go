package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmtshikala/academia/core"
)

var (
	ErrNotAuthenticated = errors.New("sesión no autenticada")
)

type (
	// Verifier is the authentication collaborator: it exchanges credentials
	// or a stored token for the authenticated principal.
	Verifier interface {
		Login(ctx context.Context, correo, password string) (Principal, string, error)
		Verify(ctx context.Context, token string) (Principal, error)
		Logout(ctx context.Context, token string) error
	}

	// TokenStore persists the single opaque access token under a fixed key.
	TokenStore interface {
		Load() (string, error)
		Save(token string) error
		Clear() error
	}

	// Manager owns the session state machine:
	// Unauthenticated -> (restore/login) -> Verifying -> Authenticated,
	// with periodic re-verification while Authenticated. There is one Manager
	// per running client; all components read snapshots via Current().
	Manager struct {
		verifier Verifier
		store    TokenStore
		logger   core.Logger
		interval time.Duration

		mu          sync.RWMutex
		sess        Session
		cancelWatch context.CancelFunc
	}
)

func NewManager(verifier Verifier, store TokenStore, logger core.Logger, verifyInterval time.Duration) *Manager {
	return &Manager{
		verifier: verifier,
		store:    store,
		logger:   logger,
		interval: verifyInterval,
	}
}

// Current returns a snapshot of the session. Callers must not hold onto it
// across logins/logouts; re-read at every check.
func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess
}

// Start attempts a silent session restore from the stored token.
// With no stored token the session stays Unauthenticated; otherwise it goes
// through Verifying and lands on Authenticated or Unauthenticated.
func (m *Manager) Start(ctx context.Context) {
	token, err := m.store.Load()
	if err != nil {
		m.logger.Warn("session: loading stored token", err)
	}
	if token == "" {
		m.setUnauthenticated(false)
		return
	}

	m.mu.Lock()
	m.sess = Session{State: Verifying}
	m.mu.Unlock()

	principal, err := m.verifier.Verify(ctx, token)
	if err != nil {
		m.logger.Info("session: stored token rejected", err)
		m.setUnauthenticated(true)
		return
	}
	m.setAuthenticated(ctx, principal, token)
}

// Login exchanges credentials for a token and transitions to Authenticated.
func (m *Manager) Login(ctx context.Context, correo, password string) error {
	principal, token, err := m.verifier.Login(ctx, correo, password)
	if err != nil {
		return err
	}
	if err := m.store.Save(token); err != nil {
		m.logger.Warn("session: persisting token", err)
	}
	m.setAuthenticated(ctx, principal, token)
	return nil
}

// Logout transitions to Unauthenticated and removes the stored token.
// The server-side logout is best-effort.
func (m *Manager) Logout(ctx context.Context) {
	if sess := m.Current(); sess.Authenticated() {
		if err := m.verifier.Logout(ctx, sess.Token); err != nil {
			m.logger.Warn("session: server-side logout", err)
		}
	}
	m.setUnauthenticated(true)
}

// UpdateProfile merges updated principal fields into the authenticated
// session. The session stays Authenticated.
func (m *Manager) UpdateProfile(p Principal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess.State != Authenticated {
		return ErrNotAuthenticated
	}

	merged := *m.sess.Principal
	if p.Name != "" {
		merged.Name = p.Name
	}
	if p.Email != "" {
		merged.Email = p.Email
	}
	if p.Roles != nil {
		merged.Roles = p.Roles
	}
	m.sess.Principal = &merged
	return nil
}

// Stop tears the session watch down without clearing the stored token, so the
// next Start can silently restore.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopWatchLocked()
}

func (m *Manager) setAuthenticated(ctx context.Context, p Principal, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopWatchLocked()
	m.sess = Session{State: Authenticated, Principal: &p, Token: token}

	// re-verification watch; scoped to a context cancelled on any transition
	// out of Authenticated so no timer outlives the session
	if m.interval > 0 {
		watchCtx, cancel := context.WithCancel(ctx)
		m.cancelWatch = cancel
		go m.watch(watchCtx, token)
	}
}

func (m *Manager) setUnauthenticated(clearToken bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopWatchLocked()
	m.sess = Session{State: Unauthenticated}
	if clearToken {
		if err := m.store.Clear(); err != nil {
			m.logger.Warn("session: clearing stored token", err)
		}
	}
}

func (m *Manager) stopWatchLocked() {
	if m.cancelWatch != nil {
		m.cancelWatch()
		m.cancelWatch = nil
	}
}

// watch periodically re-verifies the session token; a failed verification
// forces a logout.
func (m *Manager) watch(ctx context.Context, token string) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			principal, err := m.verifier.Verify(ctx, token)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				m.logger.Info("session: re-verification failed, forcing logout", err)
				m.setUnauthenticated(true)
				return
			}
			if uErr := m.UpdateProfile(principal); uErr != nil {
				return // session changed from under us
			}
		}
	}
}
