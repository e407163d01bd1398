// Package memory provides in-memory implementations of the identity
// provider and profile store capabilities. They mirror the client-side
// semantics of the real provider SDK (a single tracked session, observers
// notified on every change) and exist for tests and examples.
package memory

import (
	"context"
	"fmt"
	"sync"

	auth "github.com/goliatone/go-member-auth"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type account struct {
	id           string
	email        string
	passwordHash string
	verified     bool
}

// Provider is an in-memory auth.IdentityProvider.
type Provider struct {
	mu        sync.Mutex
	cost      int
	accounts  map[string]*account
	current   auth.Session
	observers []func(auth.Session)

	// VerificationEmailErr, when set, makes SendVerificationEmail fail.
	VerificationEmailErr error
}

var _ auth.IdentityProvider = (*Provider)(nil)

// ProviderOption customizes provider construction.
type ProviderOption func(*Provider)

// WithBcryptCost overrides the hashing cost. Tests want bcrypt.MinCost.
func WithBcryptCost(cost int) ProviderOption {
	return func(p *Provider) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			p.cost = cost
		}
	}
}

func NewProvider(opts ...ProviderOption) *Provider {
	p := &Provider{
		cost:     bcrypt.DefaultCost,
		accounts: map[string]*account{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	return p
}

func (p *Provider) CreateAccount(ctx context.Context, email, password string) (auth.Session, error) {
	p.mu.Lock()

	if _, exists := p.accounts[email]; exists {
		p.mu.Unlock()
		return nil, auth.NewProviderError(auth.ProviderCodeEmailInUse, "email already in use")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		p.mu.Unlock()
		return nil, auth.NewProviderError(auth.ProviderCodeWeakPassword, err.Error())
	}

	acc := &account{
		id:           uuid.NewString(),
		email:        email,
		passwordHash: string(hash),
	}
	p.accounts[email] = acc

	session := sessionFor(acc)
	p.current = session
	observers := append([]func(auth.Session){}, p.observers...)
	p.mu.Unlock()

	notify(observers, session)
	return session, nil
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (auth.Session, error) {
	p.mu.Lock()

	acc, exists := p.accounts[email]
	if !exists {
		p.mu.Unlock()
		return nil, auth.NewProviderError(auth.ProviderCodeInvalidCredential, "no account for email")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.passwordHash), []byte(password)); err != nil {
		p.mu.Unlock()
		return nil, auth.NewProviderError(auth.ProviderCodeInvalidCredential, "password mismatch")
	}

	session := sessionFor(acc)
	p.current = session
	observers := append([]func(auth.Session){}, p.observers...)
	p.mu.Unlock()

	notify(observers, session)
	return session, nil
}

func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	p.current = nil
	observers := append([]func(auth.Session){}, p.observers...)
	p.mu.Unlock()

	notify(observers, nil)
	return nil
}

func (p *Provider) SendVerificationEmail(ctx context.Context, session auth.Session) error {
	if session == nil {
		return auth.NewProviderError(auth.ProviderCodeInvalidCredential, "no active session")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.accounts[session.Email()]; !exists {
		return auth.NewProviderError(auth.ProviderCodeInvalidCredential, "no account for session")
	}

	return p.VerificationEmailErr
}

// ObserveState fires immediately with the current session, then on every
// sign-in/out.
func (p *Provider) ObserveState(fn func(auth.Session)) {
	p.mu.Lock()
	p.observers = append(p.observers, fn)
	current := p.current
	p.mu.Unlock()

	fn(current)
}

// CurrentSession returns the tracked session, nil when signed out.
func (p *Provider) CurrentSession() auth.Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Verify flips the verified flag on an account, simulating the user
// following the emailed verification link.
func (p *Provider) Verify(email string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	acc, exists := p.accounts[email]
	if !exists {
		return fmt.Errorf("no account for %q", email)
	}

	acc.verified = true
	return nil
}

func sessionFor(acc *account) auth.Session {
	return &auth.SessionObject{
		UID:          acc.id,
		EmailAddress: acc.email,
		Verified:     acc.verified,
	}
}

func notify(observers []func(auth.Session), session auth.Session) {
	for _, fn := range observers {
		fn(session)
	}
}
