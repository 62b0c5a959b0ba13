package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/gatekeeper/internal/domain/auth"
	"github.com/target/gatekeeper/internal/testutil"
)

func TestSessionStore_SaveAndGet(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	session := testutil.NewSession("test-session-1", "user@example.com").Build()
	require.NoError(t, store.Save(ctx, session))

	retrieved, err := store.Get(ctx, "test-session-1")
	require.NoError(t, err)
	assert.Equal(t, session.ID, retrieved.ID)
	assert.Equal(t, session.UserID, retrieved.UserID)
	assert.Equal(t, session.Email, retrieved.Email)
	assert.Equal(t, session.Role, retrieved.Role)
	assert.WithinDuration(t, session.ExpiresAt, retrieved.ExpiresAt, time.Second)
}

func TestSessionStore_GetNonExistent(t *testing.T) {
	store := NewSessionStore(testutil.SetupTestRedis(t))

	_, err := store.Get(context.Background(), "non-existent")
	assert.Equal(t, ErrNotFound, err)
}

func TestSessionStore_Delete(t *testing.T) {
	store := NewSessionStore(testutil.SetupTestRedis(t))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testutil.NewSession("test-session-delete", "user@example.com").Build()))
	_, err := store.Get(ctx, "test-session-delete")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "test-session-delete"))

	_, err = store.Get(ctx, "test-session-delete")
	assert.Equal(t, ErrNotFound, err)
	assert.NoError(t, store.Delete(ctx, ""))
}

func TestSessionStore_TTLExpiration(t *testing.T) {
	client, srv := testutil.SetupMiniRedis(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	session := testutil.NewSession("test-session-ttl", "user@example.com").Build()
	session.ExpiresAt = time.Now().Add(time.Minute)
	require.NoError(t, store.Save(ctx, session))
	assert.True(t, srv.Exists("session:test-session-ttl"))

	srv.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "test-session-ttl")
	assert.Equal(t, ErrNotFound, err)
}

func TestSessionStore_GetDeletesStaleEntry(t *testing.T) {
	client, srv := testutil.SetupMiniRedis(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	session := testutil.NewSession("stale", "user@example.com").Build()
	require.NoError(t, store.Save(ctx, session))

	store.now = func() time.Time { return session.ExpiresAt.Add(time.Second) }

	_, err := store.Get(ctx, "stale")
	assert.Equal(t, ErrNotFound, err)
	assert.False(t, srv.Exists("session:stale"))
}

func TestSessionStore_CustomPrefix(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewSessionStoreWithPrefix(client, "test-prefix:")
	ctx := context.Background()

	session := testutil.NewSession("prefix-test", "user@example.com").Build()
	require.NoError(t, store.Save(ctx, session))

	assert.Equal(t, int64(1), client.Exists(ctx, "test-prefix:prefix-test").Val())

	retrieved, err := store.Get(ctx, "prefix-test")
	require.NoError(t, err)
	assert.Equal(t, session.ID, retrieved.ID)
}

func TestSessionStore_SaveRejectsInvalid(t *testing.T) {
	store := NewSessionStore(testutil.SetupTestRedis(t))
	ctx := context.Background()

	tests := []struct {
		name    string
		session domainauth.Session
		wantErr string
	}{
		{
			name:    "empty id",
			session: testutil.NewSession("", "user@example.com").Build(),
			wantErr: "session ID cannot be empty",
		},
		{
			name:    "already expired",
			session: testutil.NewSession("expired-session", "user@example.com").Expired().Build(),
			wantErr: "session is expired",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Save(ctx, tt.session)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSessionStore_GetEmptyID(t *testing.T) {
	store := NewSessionStore(testutil.SetupTestRedis(t))

	_, err := store.Get(context.Background(), "")
	assert.Equal(t, ErrNotFound, err)
}
