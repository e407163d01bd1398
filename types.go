package auth

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Session holds the attributes of a provider-issued auth session.
// The application never owns one; it only holds transient references
// delivered by the provider on sign-in/sign-up and through ObserveState.
type Session interface {
	UserID() string
	Email() string
	EmailVerified() bool
}

// IdentityProvider is the capability set of the remote identity service.
// Account records, password hashes, and session persistence all live on
// the provider's side; we only drive its flows.
type IdentityProvider interface {
	CreateAccount(ctx context.Context, email, password string) (Session, error)
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context) error
	SendVerificationEmail(ctx context.Context, session Session) error
	// ObserveState registers a callback that fires immediately with the
	// current session (nil when signed out) and again on every change.
	ObserveState(fn func(Session))
}

// ProfileStore is the capability set of the remote tree-structured store
// that holds application data (profiles, notifications, referral tracking).
type ProfileStore interface {
	WriteAt(ctx context.Context, path string, value any) error
	// AppendAt writes value under a generated unique child key of
	// pathPrefix and returns that key.
	AppendAt(ctx context.Context, pathPrefix string, value any) (string, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
