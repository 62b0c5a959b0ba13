package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainaccess "github.com/target/gatekeeper/internal/domain/access"
	domainauth "github.com/target/gatekeeper/internal/domain/auth"
	"github.com/target/gatekeeper/internal/mocks"
	"github.com/target/gatekeeper/internal/ports"
)

type triggerCall struct {
	id  *domainaccess.Identity
	nav ports.Navigator
}

type fakeTrigger struct {
	calls []triggerCall
}

func (f *fakeTrigger) Trigger(_ context.Context, id *domainaccess.Identity, nav ports.Navigator) {
	f.calls = append(f.calls, triggerCall{id: id, nav: nav})
}

func TestSessionWatcher_SignedInTriggersGate(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	pending := mocks.NewMockPendingRedirectStore(ctrl)
	trigger := &fakeTrigger{}
	verdicts := NewVerdictCache(10, time.Minute, nil, nil)
	verdicts.Remember("sess-1", testEmail)

	w := NewSessionWatcher(SessionWatcherOptions{Gate: trigger, Pending: pending, Verdicts: verdicts})
	w.OnSessionEvent(context.Background(), domainauth.SessionEvent{
		Kind:    domainauth.SessionSignedIn,
		Session: domainauth.Session{ID: "sess-1", Email: testEmail},
	})

	require.Len(t, trigger.calls, 1)
	assert.Equal(t, &domainaccess.Identity{SessionID: "sess-1", Email: testEmail}, trigger.calls[0].id)
	assert.False(t, verdicts.Allowed("sess-1", testEmail), "a new sign-in resets the cached verdict")

	// The navigator handed to the gate parks redirects for the session.
	pending.EXPECT().Set(gomock.Any(), "sess-1", "/").Return(nil)
	require.NoError(t, trigger.calls[0].nav.Navigate(context.Background(), "/"))
}

func TestSessionWatcher_SignedInWithoutSessionIsIgnored(t *testing.T) {
	t.Parallel()
	trigger := &fakeTrigger{}
	w := NewSessionWatcher(SessionWatcherOptions{Gate: trigger})

	w.OnSessionEvent(context.Background(), domainauth.SessionEvent{Kind: domainauth.SessionSignedIn})
	assert.Empty(t, trigger.calls)
}

func TestSessionWatcher_NoPendingStoreMeansNoNavigator(t *testing.T) {
	t.Parallel()
	trigger := &fakeTrigger{}
	w := NewSessionWatcher(SessionWatcherOptions{Gate: trigger})

	w.OnSessionEvent(context.Background(), domainauth.SessionEvent{
		Kind:    domainauth.SessionSignedIn,
		Session: domainauth.Session{ID: "sess-1", Email: testEmail},
	})
	require.Len(t, trigger.calls, 1)
	assert.Nil(t, trigger.calls[0].nav)
}

func TestSessionWatcher_SignedOutClearsState(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	pending := mocks.NewMockPendingRedirectStore(ctrl)
	verdicts := NewVerdictCache(10, time.Minute, nil, nil)
	verdicts.Remember("sess-1", testEmail)

	pending.EXPECT().Clear(gomock.Any(), "sess-1").Return(errors.New("redis down"))

	w := NewSessionWatcher(SessionWatcherOptions{Gate: &fakeTrigger{}, Pending: pending, Verdicts: verdicts})
	w.OnSessionEvent(context.Background(), domainauth.SessionEvent{
		Kind:    domainauth.SessionSignedOut,
		Session: domainauth.Session{ID: "sess-1"},
	})

	assert.Zero(t, verdicts.Len())
}

func TestSessionNavigator_WrapsStoreErrors(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	pending := mocks.NewMockPendingRedirectStore(ctrl)
	pending.EXPECT().Set(gomock.Any(), "sess-1", "/").Return(errors.New("redis down"))

	nav := &SessionNavigator{SessionID: "sess-1", Pending: pending}
	err := nav.Navigate(context.Background(), "/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "park redirect")
}

func TestSessionWatcher_EndToEndWithGate(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockRecordStore(ctrl)
	pending := mocks.NewMockPendingRedirectStore(ctrl)

	gate := NewAuthorizationGate(GateOptions{Records: store})
	w := NewSessionWatcher(SessionWatcherOptions{Gate: gate, Pending: pending})

	store.EXPECT().Get(gomock.Any(), testEmail).Return(domainaccess.Record{}, false, nil)
	store.EXPECT().Put(gomock.Any(), testEmail, gomock.Any()).Return(nil)
	pending.EXPECT().Set(gomock.Any(), "sess-1", "/").Return(nil)

	w.OnSessionEvent(context.Background(), domainauth.SessionEvent{
		Kind:    domainauth.SessionSignedIn,
		Session: domainauth.Session{ID: "sess-1", Email: testEmail},
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, gate.Wait(ctx))
}
