package auth

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

// LoginMessage carries the raw login form input.
type LoginMessage struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	OnResponse func(resp *LoginResponse)
}

func (m LoginMessage) Type() string { return "membership.login" }

// Validate rejects empty credentials before any provider call.
func (m LoginMessage) Validate() error {
	if err := validation.Validate(strings.TrimSpace(m.Email), validation.Required); err != nil {
		return ErrMissingRequiredField.WithMetadata(map[string]any{"field": "email"})
	}

	if err := validation.Validate(m.Password, validation.Required); err != nil {
		return ErrMissingRequiredField.WithMetadata(map[string]any{"field": "password"})
	}

	return nil
}

// LoginResponse reports a successful login and where to land next.
type LoginResponse struct {
	Success    bool
	UserID     string
	RedirectTo string
}

// LoginHandler drives the sign-in flow: uniform credential errors, the
// verified-flag gate, and the best-effort lastLogin write.
type LoginHandler struct {
	provider     IdentityProvider
	store        ProfileStore
	logger       Logger
	activitySink ActivitySink
	now          func() time.Time
}

func NewLoginHandler(provider IdentityProvider, store ProfileStore) *LoginHandler {
	return &LoginHandler{
		provider:     provider,
		store:        store,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
		now:          time.Now,
	}
}

func (h *LoginHandler) WithLogger(logger Logger) *LoginHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithActivitySink configures an ActivitySink for emitting login events.
func (h *LoginHandler) WithActivitySink(sink ActivitySink) *LoginHandler {
	h.activitySink = normalizeActivitySink(sink)
	return h
}

// WithClock injects a custom clock (useful for tests).
func (h *LoginHandler) WithClock(clock func() time.Time) *LoginHandler {
	if clock != nil {
		h.now = clock
	}
	return h
}

func (h *LoginHandler) Execute(ctx context.Context, event LoginMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during login",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *LoginHandler) execute(ctx context.Context, event LoginMessage) error {
	if err := event.Validate(); err != nil {
		return err
	}

	email := strings.TrimSpace(event.Email)

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	session, err := h.provider.SignIn(ctx, email, event.Password)
	if err != nil {
		// Uniform failure: never disclose which of email/password was wrong.
		h.logger.Error("login sign-in failed", "error", err)
		h.emitEvent(ctx, ActivityEventLoginFailure, "", map[string]any{
			"email": email,
		})
		return ErrInvalidCredentials
	}

	if !session.EmailVerified() {
		// The session must never be left active for an unverified account.
		if err := h.provider.SignOut(ctx); err != nil {
			h.logger.Error("login sign-out of unverified session failed", "error", err)
		}
		h.emitEvent(ctx, ActivityEventLoginFailure, session.UserID(), map[string]any{
			"email":  email,
			"reason": "email_not_verified",
		})
		return ErrEmailNotVerified
	}

	uid := session.UserID()

	bestEffortWrite(ctx, h.logger, "login lastLogin write", "",
		func(ctx context.Context) error {
			return h.store.WriteAt(ctx, LastLoginPath(uid), h.now().UnixMilli())
		})

	h.emitEvent(WithSessionContext(ctx, session), ActivityEventLoginSuccess, uid, map[string]any{
		"email": email,
	})

	if event.OnResponse != nil {
		event.OnResponse(&LoginResponse{
			Success:    true,
			UserID:     uid,
			RedirectTo: DashboardPage,
		})
	}

	return nil
}

func (h *LoginHandler) emitEvent(ctx context.Context, eventType ActivityEventType, userID string, metadata map[string]any) {
	sink := normalizeActivitySink(h.activitySink)
	event := ActivityEvent{
		EventType:  eventType,
		UserID:     userID,
		Metadata:   metadata,
		OccurredAt: h.now(),
	}

	if err := sink.Record(ctx, event); err != nil {
		h.logger.Warn("login activity sink record error: %v", err)
	}
}
