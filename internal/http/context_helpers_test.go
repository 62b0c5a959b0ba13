package httpx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/gatekeeper/internal/domain/auth"
)

func TestGetUserSessionFromContext(t *testing.T) {
	s, ok := GetUserSessionFromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, s)

	sess := &domainauth.Session{ID: "abc", Role: domainauth.RoleUser}
	ctx := SetSessionInContext(context.Background(), sess)
	s, ok = GetUserSessionFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, sess, s)

	assert.Equal(t, context.Background(), SetSessionInContext(context.Background(), nil))
}

func TestIsGuestUser(t *testing.T) {
	assert.True(t, IsGuestUser(context.Background()))

	guest := &domainauth.Session{ID: "g", Role: domainauth.RoleGuest}
	assert.True(t, IsGuestUser(SetSessionInContext(context.Background(), guest)))

	user := &domainauth.Session{ID: "u", Role: domainauth.RoleUser}
	assert.False(t, IsGuestUser(SetSessionInContext(context.Background(), user)))
}

func TestGateIdentity(t *testing.T) {
	assert.Nil(t, GateIdentity(context.Background()))

	sess := &domainauth.Session{ID: "s1", Email: "alice@example.com"}
	id := GateIdentity(SetSessionInContext(context.Background(), sess))
	require.NotNil(t, id)
	assert.Equal(t, "s1", id.SessionID)
	assert.Equal(t, "alice@example.com", id.Email)
}
