package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/gatekeeper/internal/domain/auth"
	fakes "github.com/target/gatekeeper/internal/mocks/auth"
	"github.com/target/gatekeeper/internal/ports"
)

// mockSessionStore is a test helper for testing session store errors.
type mockSessionStore struct {
	saveFunc   func(context.Context, domainauth.Session) error
	getFunc    func(context.Context, string) (domainauth.Session, error)
	deleteFunc func(context.Context, string) error
}

func (m *mockSessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, sess)
	}
	return nil
}

func (m *mockSessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return domainauth.Session{}, nil
}

func (m *mockSessionStore) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func newAuthService(sessions ports.SessionStore) (*AuthService, *fakes.FakeAuthProvider, *fakes.EventRecorder) {
	provider := fakes.NewFakeAuthProvider(testEmail)
	events := &fakes.EventRecorder{}
	svc := NewAuthService(AuthServiceOptions{
		Provider:  provider,
		Sessions:  sessions,
		Roles:     fakes.StaticRoleMapper{AdminGroup: "admins", UserGroup: "users"},
		Listeners: []ports.SessionListener{events},
	})
	return svc, provider, events
}

func validLogin() CompleteLoginInput {
	return CompleteLoginInput{Code: "code", State: "state-1", Nonce: "nonce-1"}
}

func TestAuthService_BeginLogin(t *testing.T) {
	svc, _, _ := newAuthService(fakes.NewMemorySessionStore())

	res, err := svc.BeginLogin(context.Background(), "http://localhost:8080/auth/callback")
	require.NoError(t, err)
	assert.Equal(t, "https://idp.test/authorize", res.AuthURL)
	assert.Equal(t, "state-1", res.State)
	assert.Equal(t, "nonce-1", res.Nonce)

	_, err = svc.BeginLogin(context.Background(), "")
	require.ErrorContains(t, err, "redirect URL is required")
}

func TestAuthService_CompleteLogin_PersistsAndPublishes(t *testing.T) {
	sessions := fakes.NewMemorySessionStore()
	svc, _, events := newAuthService(sessions)

	res, err := svc.CompleteLogin(context.Background(), validLogin())
	require.NoError(t, err)

	sess := res.Session
	assert.Equal(t, testEmail, sess.Email)
	assert.Equal(t, domainauth.RoleUser, sess.Role)
	_, parseErr := uuid.Parse(sess.ID)
	require.NoError(t, parseErr)

	stored, err := sessions.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess, stored)

	got := events.Events()
	require.Len(t, got, 1)
	assert.Equal(t, domainauth.SessionSignedIn, got[0].Kind)
	assert.Equal(t, sess, got[0].Session)
}

func TestAuthService_CompleteLogin_AdminRole(t *testing.T) {
	svc, provider, _ := newAuthService(fakes.NewMemorySessionStore())
	provider.Identity.Groups = []string{"users", "admins"}

	res, err := svc.CompleteLogin(context.Background(), validLogin())
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleAdmin, res.Session.Role)
}

func TestAuthService_CompleteLogin_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input CompleteLoginInput
		want  string
	}{
		{"missing code", CompleteLoginInput{State: "s", Nonce: "n"}, "authorization code is required"},
		{"missing state", CompleteLoginInput{Code: "c", Nonce: "n"}, "state parameter is required"},
		{"missing nonce", CompleteLoginInput{Code: "c", State: "s"}, "nonce parameter is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, events := newAuthService(fakes.NewMemorySessionStore())
			_, err := svc.CompleteLogin(context.Background(), tt.input)
			require.ErrorContains(t, err, tt.want)
			assert.Empty(t, events.Events())
		})
	}
}

func TestAuthService_CompleteLogin_ExchangeError(t *testing.T) {
	svc, provider, events := newAuthService(fakes.NewMemorySessionStore())
	provider.ExchangeFunc = func(context.Context, ports.ExchangeInput) (domainauth.Identity, error) {
		return domainauth.Identity{}, errors.New("invalid grant")
	}

	_, err := svc.CompleteLogin(context.Background(), validLogin())
	require.ErrorContains(t, err, "exchange authorization code")
	assert.Empty(t, events.Events())
}

func TestAuthService_CompleteLogin_SessionSaveError(t *testing.T) {
	svc, _, events := newAuthService(&mockSessionStore{
		saveFunc: func(context.Context, domainauth.Session) error { return errors.New("redis down") },
	})

	_, err := svc.CompleteLogin(context.Background(), validLogin())
	require.ErrorContains(t, err, "save session")
	assert.Empty(t, events.Events(), "no sign-in is announced when the session was not saved")
}

func TestAuthService_Subscribe(t *testing.T) {
	svc, _, _ := newAuthService(fakes.NewMemorySessionStore())
	late := &fakes.EventRecorder{}
	svc.Subscribe(late)
	svc.Subscribe(nil)

	_, err := svc.CompleteLogin(context.Background(), validLogin())
	require.NoError(t, err)
	assert.Len(t, late.Events(), 1)
}

func TestAuthService_GetSession(t *testing.T) {
	sessions := fakes.NewMemorySessionStore()
	svc, _, _ := newAuthService(sessions)
	ctx := context.Background()

	live := domainauth.Session{ID: "live", Email: testEmail, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, sessions.Save(ctx, live))

	got, err := svc.GetSession(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, live, *got)

	_, err = svc.GetSession(ctx, "")
	require.ErrorContains(t, err, "session ID is required")

	_, err = svc.GetSession(ctx, "missing")
	require.ErrorContains(t, err, "get session")
}

func TestAuthService_GetSession_ExpiredIsDeletedAndPublished(t *testing.T) {
	sessions := fakes.NewMemorySessionStore()
	svc, _, events := newAuthService(sessions)
	ctx := context.Background()

	expired := domainauth.Session{ID: "old", Email: testEmail, ExpiresAt: time.Now().Add(-time.Minute)}
	require.NoError(t, sessions.Save(ctx, expired))

	_, err := svc.GetSession(ctx, "old")
	require.ErrorIs(t, err, errSessionExpired)
	assert.Zero(t, sessions.Len())

	got := events.Events()
	require.Len(t, got, 1)
	assert.Equal(t, domainauth.SessionSignedOut, got[0].Kind)
	assert.Equal(t, "old", got[0].Session.ID)
}

func TestAuthService_GetSession_ExpiredDeleteError(t *testing.T) {
	svc, _, _ := newAuthService(&mockSessionStore{
		getFunc: func(context.Context, string) (domainauth.Session, error) {
			return domainauth.Session{ID: "old", ExpiresAt: time.Now().Add(-time.Minute)}, nil
		},
		deleteFunc: func(context.Context, string) error { return errors.New("redis down") },
	})

	_, err := svc.GetSession(context.Background(), "old")
	require.ErrorIs(t, err, errSessionExpired)
	require.ErrorContains(t, err, "delete session")
}

func TestAuthService_Logout(t *testing.T) {
	sessions := fakes.NewMemorySessionStore()
	svc, _, events := newAuthService(sessions)
	ctx := context.Background()

	require.NoError(t, sessions.Save(ctx, domainauth.Session{ID: "s1", Email: testEmail}))
	require.NoError(t, svc.Logout(ctx, "s1"))
	assert.Zero(t, sessions.Len())

	got := events.Events()
	require.Len(t, got, 1)
	assert.Equal(t, domainauth.SessionSignedOut, got[0].Kind)
	assert.Equal(t, testEmail, got[0].Session.Email)

	require.NoError(t, svc.Logout(ctx, ""))
	assert.Len(t, events.Events(), 1, "an empty session id is a no-op")
}

func TestAuthService_Logout_DeleteError(t *testing.T) {
	svc, _, events := newAuthService(&mockSessionStore{
		deleteFunc: func(context.Context, string) error { return errors.New("redis down") },
	})

	require.ErrorContains(t, svc.Logout(context.Background(), "s1"), "delete session")
	assert.Empty(t, events.Events())
}

func TestGenerateSessionID(t *testing.T) {
	a, b := generateSessionID(), generateSessionID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}
