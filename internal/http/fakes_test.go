package httpx

import (
	"context"
	"errors"
	"sync"
	"time"

	domainauth "github.com/target/gatekeeper/internal/domain/auth"
	"github.com/target/gatekeeper/internal/service"
)

// fakeAuthService is a test double for AuthServiceInterface keyed by session ID.
type fakeAuthService struct {
	mu        sync.Mutex
	sessions  map[string]*domainauth.Session
	loggedOut []string

	beginErr    error
	completeErr error
	completed   *service.CompleteLoginInput
}

func newFakeAuthService(sessions ...*domainauth.Session) *fakeAuthService {
	f := &fakeAuthService{sessions: make(map[string]*domainauth.Session)}
	for _, s := range sessions {
		f.sessions[s.ID] = s
	}
	return f
}

func (f *fakeAuthService) BeginLogin(_ context.Context, redirectURL string) (*service.BeginLoginResult, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return &service.BeginLoginResult{
		AuthURL: "https://idp.example.com/authorize?redirect=" + redirectURL,
		State:   "state-123",
		Nonce:   "nonce-456",
	}, nil
}

func (f *fakeAuthService) CompleteLogin(_ context.Context, in service.CompleteLoginInput) (*service.CompleteLoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = &in
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	s := domainauth.Session{
		ID:        "new-session",
		UserID:    "u-1",
		Email:     "new@example.com",
		Role:      domainauth.RoleUser,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	f.sessions[s.ID] = &s
	return &service.CompleteLoginResult{Session: s}, nil
}

func (f *fakeAuthService) GetSession(_ context.Context, sessionID string) (*domainauth.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[sessionID]; ok {
		return s, nil
	}
	return nil, errors.New("session not found")
}

func (f *fakeAuthService) Logout(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, sessionID)
	f.loggedOut = append(f.loggedOut, sessionID)
	return nil
}

// countingSink records Count calls by metric name.
type countingSink struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newCountingSink() *countingSink { return &countingSink{counts: make(map[string]int64)} }

func (s *countingSink) Count(name string, value int64, _ map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[name] += value
}

func (s *countingSink) Gauge(string, float64, map[string]string)        {}
func (s *countingSink) Timing(string, time.Duration, map[string]string) {}

func (s *countingSink) get(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[name]
}
