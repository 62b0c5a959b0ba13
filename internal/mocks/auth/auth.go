package auth

// Package auth contains hand-written test doubles for the auth and navigation ports.
// They are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	domainauth "github.com/target/gatekeeper/internal/domain/auth"
	"github.com/target/gatekeeper/internal/ports"
)

var (
	_ ports.AuthProvider    = (*FakeAuthProvider)(nil)
	_ ports.SessionStore    = (*MemorySessionStore)(nil)
	_ ports.RoleMapper      = (*StaticRoleMapper)(nil)
	_ ports.Navigator       = (*RecordingNavigator)(nil)
	_ ports.SessionListener = (*EventRecorder)(nil)
)

// FakeAuthProvider simulates an IdP with deterministic state/nonce values.
// Exchange returns Identity unless ExchangeFunc is set.
type FakeAuthProvider struct {
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	AuthURL  string
	Identity domainauth.Identity

	mu    sync.Mutex
	calls int
}

// NewFakeAuthProvider returns a provider that signs everyone in as email.
func NewFakeAuthProvider(email string) *FakeAuthProvider {
	return &FakeAuthProvider{
		AuthURL: "https://idp.test/authorize",
		Identity: domainauth.Identity{
			UserID:    "fake-user",
			FirstName: "Fake",
			LastName:  "User",
			Email:     email,
			Groups:    []string{"users"},
		},
	}
}

func (f *FakeAuthProvider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()

	return f.AuthURL, fmt.Sprintf("state-%d", n), fmt.Sprintf("nonce-%d", n), nil
}

func (f *FakeAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if f.ExchangeFunc != nil {
		return f.ExchangeFunc(ctx, in)
	}
	if in.Code == "" {
		return domainauth.Identity{}, errors.New("missing code")
	}
	id := f.Identity
	id.ExpiresAt = time.Now().Add(time.Hour)
	return id, nil
}

// MemorySessionStore is an in-memory, concurrency-safe session store for unit tests.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	if !ok || id == "" {
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len reports how many sessions are stored.
func (m *MemorySessionStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }

// ErrNotFound is returned by fakes when an entity is not present.
var ErrNotFound error = notFoundError{}

// StaticRoleMapper maps groups by exact membership; admin wins over user.
type StaticRoleMapper struct {
	AdminGroup string
	UserGroup  string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	switch {
	case m.AdminGroup != "" && slices.Contains(groups, m.AdminGroup):
		return domainauth.RoleAdmin
	case m.UserGroup != "" && slices.Contains(groups, m.UserGroup):
		return domainauth.RoleUser
	default:
		return domainauth.RoleGuest
	}
}

// RecordingNavigator remembers every path it was asked to navigate to.
type RecordingNavigator struct {
	Err error

	mu    sync.Mutex
	paths []string
}

func (n *RecordingNavigator) Navigate(_ context.Context, path string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
	return n.Err
}

// Paths returns a copy of the recorded navigation targets.
func (n *RecordingNavigator) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.paths)
}

// EventRecorder collects session events.
type EventRecorder struct {
	mu     sync.Mutex
	events []domainauth.SessionEvent
}

func (r *EventRecorder) OnSessionEvent(_ context.Context, ev domainauth.SessionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events.
func (r *EventRecorder) Events() []domainauth.SessionEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}
