package auth

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

// SignupMessage carries the raw signup form input. Terms is nil when the
// form does not render a terms checkbox; when present it must be accepted.
type SignupMessage struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Background string `json:"background"`
	LinkedIn   string `json:"linkedin"`
	Referral   string `json:"referral"`
	Terms      *bool  `json:"terms"`
	OnResponse func(resp *SignupResponse)
}

func (m SignupMessage) Type() string { return "membership.signup" }

// Validate applies the local rules in fixed order, first failure wins.
// No remote call happens until all of them pass.
func (m SignupMessage) Validate() error {
	name := strings.TrimSpace(m.Name)
	email := strings.TrimSpace(m.Email)

	if err := validation.Validate(name, validation.Required); err != nil {
		return ErrMissingRequiredField.WithMetadata(map[string]any{"field": "name"})
	}

	if err := validation.Validate(email, validation.Required); err != nil {
		return ErrMissingRequiredField.WithMetadata(map[string]any{"field": "email"})
	}

	if err := validation.Validate(m.Password, validation.Required); err != nil {
		return ErrMissingRequiredField.WithMetadata(map[string]any{"field": "password"})
	}

	if err := validation.Validate(m.Password, validation.Length(6, 0)); err != nil {
		return ErrWeakPassword.WithMetadata(map[string]any{"min_length": 6})
	}

	if m.Terms != nil && !*m.Terms {
		return ErrTermsNotAccepted
	}

	return nil
}

// SignupResponse reports the outcome of a signup run. Warnings list the
// best-effort steps that failed; they never flip Success to false.
type SignupResponse struct {
	Success      bool
	UserID       string
	Email        string
	ReferralCode string
	RedirectTo   string
	Warnings     []string
}

// SignupHandler orchestrates the ordered side effects of account creation.
// Account creation is the only fatal step; everything after it leaves a
// usable-but-degraded account that can be repaired on a later login, so
// downstream failures degrade to warnings instead of aborting.
type SignupHandler struct {
	provider     IdentityProvider
	store        ProfileStore
	guard        *RouteGuard
	logger       Logger
	activitySink ActivitySink
	now          func() time.Time
	running      atomic.Bool
}

// NewSignupHandler wires a signup sequencer. The guard may be nil when no
// route guard is attached (e.g. headless tests).
func NewSignupHandler(provider IdentityProvider, store ProfileStore, guard *RouteGuard) *SignupHandler {
	return &SignupHandler{
		provider:     provider,
		store:        store,
		guard:        guard,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
		now:          time.Now,
	}
}

func (h *SignupHandler) WithLogger(logger Logger) *SignupHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithActivitySink configures an ActivitySink for emitting signup events.
func (h *SignupHandler) WithActivitySink(sink ActivitySink) *SignupHandler {
	h.activitySink = normalizeActivitySink(sink)
	return h
}

// WithClock injects a custom clock (useful for tests).
func (h *SignupHandler) WithClock(clock func() time.Time) *SignupHandler {
	if clock != nil {
		h.now = clock
	}
	return h
}

func (h *SignupHandler) Execute(ctx context.Context, event SignupMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during signup",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *SignupHandler) execute(ctx context.Context, event SignupMessage) error {
	if !h.running.CompareAndSwap(false, true) {
		return goerrors.New("signup already in progress", goerrors.CategoryConflict).
			WithCode(goerrors.CodeConflict)
	}
	defer h.running.Store(false)

	if err := event.Validate(); err != nil {
		return err
	}

	name := strings.TrimSpace(event.Name)
	email := strings.TrimSpace(event.Email)
	referredBy := strings.TrimSpace(event.Referral)

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	// Hold the guard for the whole run: the freshly created session must
	// not bounce the user off the register page before step 7 signs out.
	release := h.beginSignup()
	defer release()

	session, err := h.provider.CreateAccount(ctx, email, event.Password)
	if err != nil {
		classified := ClassifyProviderError(err)
		h.logger.Error("signup account creation failed", "error", classified)
		h.emitEvent(ctx, ActivityEventSignupFailure, "", map[string]any{
			"email": email,
			"error": classified.Error(),
		})
		return classified
	}

	var warnings []string

	if err := h.provider.SendVerificationEmail(ctx, session); err != nil {
		h.logger.Warn("signup verification email failed", "error", err)
		warnings = append(warnings, "Verification email could not be sent. You can request another one from the login page.")
	}

	uid := session.UserID()
	referralCode := DeriveReferralCode(uid)
	now := h.now()

	profile := NewUserProfile(name, email, event.Background, event.LinkedIn, referralCode, referredBy, now)
	if w := bestEffortWrite(ctx, h.logger, "signup profile write",
		"Your profile could not be saved yet. You can complete it after logging in.",
		func(ctx context.Context) error {
			return h.store.WriteAt(ctx, UserProfilePath(uid), profile)
		}); w != "" {
		warnings = append(warnings, w)
	}

	welcome := &NotificationRecord{
		Message: WelcomeMessage,
		Read:    false,
		Time:    now.UnixMilli(),
		Type:    NotificationTypeWelcome,
	}
	if w := bestEffortWrite(ctx, h.logger, "signup welcome notification",
		"Your welcome notification could not be delivered.",
		func(ctx context.Context) error {
			_, err := h.store.AppendAt(ctx, NotificationsPath(uid), welcome)
			return err
		}); w != "" {
		warnings = append(warnings, w)
	}

	if referredBy != "" {
		tracking := &ReferralTrackingRecord{
			ReferrerCode:   referredBy,
			ReferredUserID: uid,
			Timestamp:      now.UnixMilli(),
		}
		if w := bestEffortWrite(ctx, h.logger, "signup referral tracking",
			"Your referral could not be recorded.",
			func(ctx context.Context) error {
				_, err := h.store.AppendAt(ctx, ReferralTrackingPath, tracking)
				return err
			}); w != "" {
			warnings = append(warnings, w)
		}
	}

	// Unconditional: the user must re-authenticate after verifying their
	// email, even when steps 4-6 degraded.
	if err := h.provider.SignOut(ctx); err != nil {
		h.logger.Warn("signup forced sign-out failed", "error", err)
	}

	h.emitEvent(WithSessionContext(ctx, session), ActivityEventSignupSuccess, uid, map[string]any{
		"email":         email,
		"referral_code": referralCode,
		"warnings":      len(warnings),
	})

	if event.OnResponse != nil {
		event.OnResponse(&SignupResponse{
			Success:      true,
			UserID:       uid,
			Email:        email,
			ReferralCode: referralCode,
			RedirectTo:   SignupSuccessRedirect(email),
			Warnings:     warnings,
		})
	}

	return nil
}

func (h *SignupHandler) beginSignup() func() {
	if h.guard == nil {
		return func() {}
	}
	return h.guard.BeginSignup()
}

func (h *SignupHandler) emitEvent(ctx context.Context, eventType ActivityEventType, userID string, metadata map[string]any) {
	sink := normalizeActivitySink(h.activitySink)
	event := ActivityEvent{
		EventType:  eventType,
		UserID:     userID,
		Metadata:   metadata,
		OccurredAt: h.now(),
	}

	if err := sink.Record(ctx, event); err != nil {
		h.logger.Warn("signup activity sink record error: %v", err)
	}
}
