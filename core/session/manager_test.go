package session

import (
	"context"
	"errors"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmtshikala/academia/core"
	"github.com/dmtshikala/academia/core/access"
)

type fakeVerifier struct {
	mu        sync.Mutex
	principal Principal
	token     string
	loginErr  error
	verifyErr error

	verifyCalls int
	logoutCalls int
}

func (f *fakeVerifier) Login(_ context.Context, correo, password string) (Principal, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loginErr != nil {
		return Principal{}, "", f.loginErr
	}
	return f.principal, f.token, nil
}

func (f *fakeVerifier) Verify(_ context.Context, token string) (Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyCalls++
	if f.verifyErr != nil {
		return Principal{}, f.verifyErr
	}
	if token != f.token {
		return Principal{}, errors.New("token desconocido")
	}
	return f.principal, nil
}

func (f *fakeVerifier) Logout(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	return nil
}

func (f *fakeVerifier) failVerifications(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyErr = err
}

type memTokenStore struct {
	mu    sync.Mutex
	token string
}

func (s *memTokenStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *memTokenStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *memTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

var testLogger = core.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))

func newTestManager(verifier *fakeVerifier, store *memTokenStore, interval time.Duration) *Manager {
	return NewManager(verifier, store, testLogger, interval)
}

func docente() Principal {
	return Principal{ID: "u1", Name: "Ana Mamani", Email: "ana@academia.edu", Roles: []string{access.RoleTeacher}}
}

func TestManager_Start_noStoredToken(t *testing.T) {
	m := newTestManager(&fakeVerifier{}, &memTokenStore{}, 0)
	m.Start(context.Background())

	sess := m.Current()
	assert.Equal(t, Unauthenticated, sess.State)
	assert.Nil(t, sess.Principal)
	assert.Empty(t, sess.Token)
}

func TestManager_Start_restoresStoredToken(t *testing.T) {
	verifier := &fakeVerifier{principal: docente(), token: "tok-1"}
	store := &memTokenStore{token: "tok-1"}
	m := newTestManager(verifier, store, 0)

	m.Start(context.Background())

	sess := m.Current()
	require.Equal(t, Authenticated, sess.State)
	require.NotNil(t, sess.Principal)
	assert.Equal(t, "ana@academia.edu", sess.Principal.Email)
	assert.Equal(t, "tok-1", sess.Token)
	assert.True(t, sess.HasRole(access.RoleTeacher))
}

func TestManager_Start_rejectedTokenIsCleared(t *testing.T) {
	verifier := &fakeVerifier{principal: docente(), token: "tok-1"}
	store := &memTokenStore{token: "stale"}
	m := newTestManager(verifier, store, 0)

	m.Start(context.Background())

	assert.Equal(t, Unauthenticated, m.Current().State)
	stored, _ := store.Load()
	assert.Empty(t, stored, "rejected token must be removed from the store")
}

func TestManager_LoginLogout(t *testing.T) {
	verifier := &fakeVerifier{principal: docente(), token: "tok-9"}
	store := &memTokenStore{}
	m := newTestManager(verifier, store, 0)
	ctx := context.Background()

	require.NoError(t, m.Login(ctx, "ana@academia.edu", "S3cret!pwd"))
	sess := m.Current()
	assert.Equal(t, Authenticated, sess.State)
	stored, _ := store.Load()
	assert.Equal(t, "tok-9", stored)

	m.Logout(ctx)
	sess = m.Current()
	assert.Equal(t, Unauthenticated, sess.State)
	assert.Nil(t, sess.Principal, "invariant: unauthenticated implies nil principal")
	assert.Empty(t, sess.Token)
	stored, _ = store.Load()
	assert.Empty(t, stored)
	assert.Equal(t, 1, verifier.logoutCalls)
}

func TestManager_Login_failure(t *testing.T) {
	verifier := &fakeVerifier{loginErr: errors.New("credenciales inválidas")}
	m := newTestManager(verifier, &memTokenStore{}, 0)

	err := m.Login(context.Background(), "ana@academia.edu", "nope")
	assert.Error(t, err)
	assert.Equal(t, Unauthenticated, m.Current().State)
}

func TestManager_UpdateProfile(t *testing.T) {
	verifier := &fakeVerifier{principal: docente(), token: "tok-1"}
	m := newTestManager(verifier, &memTokenStore{}, 0)
	ctx := context.Background()

	assert.Equal(t, ErrNotAuthenticated, m.UpdateProfile(Principal{Name: "X"}))

	require.NoError(t, m.Login(ctx, "ana@academia.edu", "S3cret!pwd"))
	require.NoError(t, m.UpdateProfile(Principal{Name: "Ana Quispe"}))

	sess := m.Current()
	assert.Equal(t, Authenticated, sess.State)
	assert.Equal(t, "Ana Quispe", sess.Principal.Name)
	assert.Equal(t, "ana@academia.edu", sess.Principal.Email, "unset fields keep their value")
}

func TestManager_periodicReverificationFailureForcesLogout(t *testing.T) {
	verifier := &fakeVerifier{principal: docente(), token: "tok-1"}
	store := &memTokenStore{}
	m := newTestManager(verifier, store, 10*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, m.Login(ctx, "ana@academia.edu", "S3cret!pwd"))
	verifier.failVerifications(errors.New("token expirado"))

	assert.Eventually(t, func() bool {
		return m.Current().State == Unauthenticated
	}, time.Second, 5*time.Millisecond)

	stored, _ := store.Load()
	assert.Empty(t, stored, "forced logout clears the stored token")
}

func TestManager_watchStopsOnLogout(t *testing.T) {
	verifier := &fakeVerifier{principal: docente(), token: "tok-1"}
	m := newTestManager(verifier, &memTokenStore{}, 10*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, m.Login(ctx, "ana@academia.edu", "S3cret!pwd"))
	m.Logout(ctx)

	verifier.mu.Lock()
	calls := verifier.verifyCalls
	verifier.mu.Unlock()

	time.Sleep(50 * time.Millisecond)

	verifier.mu.Lock()
	defer verifier.mu.Unlock()
	assert.Equal(t, calls, verifier.verifyCalls, "no re-verification after logout")
}

func TestSession_Access(t *testing.T) {
	sess := Session{State: Verifying}
	assert.True(t, sess.Access().Loading)

	p := docente()
	sess = Session{State: Authenticated, Principal: &p, Token: "t"}
	state := sess.Access()
	assert.True(t, state.Authenticated)
	assert.Equal(t, []string{access.RoleTeacher}, state.Roles)
}
