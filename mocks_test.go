package auth_test

import (
	"context"
	"sync"

	auth "github.com/goliatone/go-member-auth"
	"github.com/stretchr/testify/mock"
)

// MockIdentityProvider implements auth.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock

	mu        sync.Mutex
	observers []func(auth.Session)
}

func (m *MockIdentityProvider) CreateAccount(ctx context.Context, email, password string) (auth.Session, error) {
	args := m.Called(ctx, email, password)
	session, _ := args.Get(0).(auth.Session)
	return session, args.Error(1)
}

func (m *MockIdentityProvider) SignIn(ctx context.Context, email, password string) (auth.Session, error) {
	args := m.Called(ctx, email, password)
	session, _ := args.Get(0).(auth.Session)
	return session, args.Error(1)
}

func (m *MockIdentityProvider) SignOut(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockIdentityProvider) SendVerificationEmail(ctx context.Context, session auth.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

// ObserveState records the callback so tests can fire state changes
// manually; no expectation needed.
func (m *MockIdentityProvider) ObserveState(fn func(auth.Session)) {
	m.mu.Lock()
	m.observers = append(m.observers, fn)
	m.mu.Unlock()

	fn(nil)
}

// FireStateChange notifies every observer, standing in for the provider's
// own state-change notification.
func (m *MockIdentityProvider) FireStateChange(session auth.Session) {
	m.mu.Lock()
	observers := append([]func(auth.Session){}, m.observers...)
	m.mu.Unlock()

	for _, fn := range observers {
		fn(session)
	}
}

// MockProfileStore implements auth.ProfileStore
type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) WriteAt(ctx context.Context, path string, value any) error {
	args := m.Called(ctx, path, value)
	return args.Error(0)
}

func (m *MockProfileStore) AppendAt(ctx context.Context, pathPrefix string, value any) (string, error) {
	args := m.Called(ctx, pathPrefix, value)
	return args.String(0), args.Error(1)
}

// fakeSession implements auth.Session
type fakeSession struct {
	id       string
	email    string
	verified bool
}

func (s *fakeSession) UserID() string      { return s.id }
func (s *fakeSession) Email() string       { return s.email }
func (s *fakeSession) EmailVerified() bool { return s.verified }

// eventCollector is an ActivitySink capturing every recorded event.
type eventCollector struct {
	mu     sync.Mutex
	events []auth.ActivityEvent
}

func (c *eventCollector) Record(_ context.Context, event auth.ActivityEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *eventCollector) Events() []auth.ActivityEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]auth.ActivityEvent{}, c.events...)
}

// quietLogger drops everything; tests assert on behavior, not log lines.
type quietLogger struct{}

func (quietLogger) Debug(string, ...any) {}
func (quietLogger) Info(string, ...any)  {}
func (quietLogger) Warn(string, ...any)  {}
func (quietLogger) Error(string, ...any) {}

func boolPtr(b bool) *bool { return &b }
