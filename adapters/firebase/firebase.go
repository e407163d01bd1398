// Package firebase implements the identity provider and profile store
// capabilities over the Firebase REST surface: the identity toolkit for
// accounts and sessions, the realtime database JSON API for tree writes.
//
// State observation is in-process, matching the client SDK's semantics:
// the adapter tracks the session it issued and notifies observers on every
// change. Nothing is persisted locally.
package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	auth "github.com/goliatone/go-member-auth"
)

// Client speaks to the identity toolkit and the realtime database.
type Client struct {
	cfg  Config
	http *http.Client

	mu        sync.Mutex
	session   *session
	observers []func(auth.Session)
}

var _ auth.IdentityProvider = (*Client)(nil)
var _ auth.ProfileStore = (*Client)(nil)

// Option customizes client construction.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (useful for tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// session is the provider-issued handle we track client-side.
type session struct {
	uid       string
	email     string
	verified  bool
	idToken   string
	expiresAt time.Time
}

var _ auth.Session = (*session)(nil)

func (s *session) UserID() string      { return s.uid }
func (s *session) Email() string       { return s.email }
func (s *session) EmailVerified() bool { return s.verified }

type signUpResponse struct {
	IDToken string `json:"idToken"`
	LocalID string `json:"localId"`
	Email   string `json:"email"`
}

type lookupResponse struct {
	Users []struct {
		LocalID       string `json:"localId"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"emailVerified"`
	} `json:"users"`
}

func (c *Client) CreateAccount(ctx context.Context, email, password string) (auth.Session, error) {
	var resp signUpResponse
	err := c.postIdentity(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}

	s := &session{
		uid:       resp.LocalID,
		email:     resp.Email,
		verified:  false,
		idToken:   resp.IDToken,
		expiresAt: tokenExpiry(resp.IDToken),
	}

	c.setSession(s)
	return s, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (auth.Session, error) {
	var resp signUpResponse
	err := c.postIdentity(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}

	// The sign-in payload does not carry the verified flag; look it up.
	var lookup lookupResponse
	err = c.postIdentity(ctx, "accounts:lookup", map[string]any{
		"idToken": resp.IDToken,
	}, &lookup)
	if err != nil {
		return nil, err
	}

	verified := false
	if len(lookup.Users) > 0 {
		verified = lookup.Users[0].EmailVerified
	}

	s := &session{
		uid:       resp.LocalID,
		email:     resp.Email,
		verified:  verified,
		idToken:   resp.IDToken,
		expiresAt: tokenExpiry(resp.IDToken),
	}

	c.setSession(s)
	return s, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	c.setSession(nil)
	return nil
}

func (c *Client) SendVerificationEmail(ctx context.Context, sess auth.Session) error {
	token := c.tokenFor(sess)
	if token == "" {
		return auth.NewProviderError(auth.ProviderCodeInvalidCredential, "no token for session")
	}

	return c.postIdentity(ctx, "accounts:sendOobCode", map[string]any{
		"requestType": "VERIFY_EMAIL",
		"idToken":     token,
	}, nil)
}

// ObserveState fires immediately with the current session, then on every
// change the adapter itself performs.
func (c *Client) ObserveState(fn func(auth.Session)) {
	c.mu.Lock()
	c.observers = append(c.observers, fn)
	current := c.currentLocked()
	c.mu.Unlock()

	fn(current)
}

func (c *Client) setSession(s *session) {
	c.mu.Lock()
	c.session = s
	observers := append([]func(auth.Session){}, c.observers...)
	current := c.currentLocked()
	c.mu.Unlock()

	for _, fn := range observers {
		fn(current)
	}
}

func (c *Client) currentLocked() auth.Session {
	if c.session == nil {
		return nil
	}
	return c.session
}

func (c *Client) tokenFor(sess auth.Session) string {
	if s, ok := sess.(*session); ok {
		return usableToken(s)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil && sess != nil && c.session.uid == sess.UserID() {
		return usableToken(c.session)
	}
	return ""
}

// usableToken returns the session's ID token, or "" once it has expired.
func usableToken(s *session) string {
	if !s.expiresAt.IsZero() && time.Now().After(s.expiresAt) {
		return ""
	}
	return s.idToken
}

// tokenExpiry peeks at the provider-issued ID token's exp claim. The token
// is trusted as-is (the provider signed it); no verification happens here.
func tokenExpiry(idToken string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return time.Time{}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}

	return exp.Time
}

type identityError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) postIdentity(ctx context.Context, action string, payload any, out any) error {
	endpoint := fmt.Sprintf("%s/%s?key=%s", c.cfg.IdentityEndpoint, action, c.cfg.APIKey)

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return auth.NewProviderError(auth.ProviderCodeNetworkFailure, err.Error())
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return auth.NewProviderError(auth.ProviderCodeNetworkFailure, err.Error())
	}

	if resp.StatusCode >= 400 {
		var ie identityError
		_ = json.Unmarshal(data, &ie)
		code := ie.Error.Message
		if code == "" {
			// Some failures (proxies, outages) carry no toolkit payload.
			code = fmt.Sprintf("HTTP_%d", resp.StatusCode)
		}
		return classifyIdentityCode(code)
	}

	if out == nil {
		return nil
	}

	return json.Unmarshal(data, out)
}

// classifyIdentityCode translates the identity toolkit's error vocabulary
// into the provider codes the rest of the library classifies on.
func classifyIdentityCode(code string) error {
	switch {
	case code == "EMAIL_EXISTS":
		return auth.NewProviderError(auth.ProviderCodeEmailInUse, code)
	case code == "INVALID_EMAIL" || code == "MISSING_EMAIL":
		return auth.NewProviderError(auth.ProviderCodeInvalidEmail, code)
	case strings.HasPrefix(code, "WEAK_PASSWORD"):
		return auth.NewProviderError(auth.ProviderCodeWeakPassword, code)
	case code == "EMAIL_NOT_FOUND" || code == "INVALID_PASSWORD" || code == "INVALID_LOGIN_CREDENTIALS":
		return auth.NewProviderError(auth.ProviderCodeInvalidCredential, code)
	case code == "USER_DISABLED":
		return auth.NewProviderError(auth.ProviderCodeUserDisabled, code)
	case strings.HasPrefix(code, "TOO_MANY_ATTEMPTS"):
		return auth.NewProviderError(auth.ProviderCodeTooManyRequests, code)
	case code == "OPERATION_NOT_ALLOWED":
		return auth.NewProviderError(auth.ProviderCodeOperationForbidden, code)
	default:
		return auth.NewProviderError(code, "")
	}
}
