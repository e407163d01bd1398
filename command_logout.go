package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// LogoutMessage requests the current session be terminated.
type LogoutMessage struct {
	OnResponse func(resp *LogoutResponse)
}

func (m LogoutMessage) Type() string { return "membership.logout" }

// LogoutResponse reports where to land after sign-out.
type LogoutResponse struct {
	Success    bool
	RedirectTo string
}

// LogoutHandler terminates the provider session and hands back the
// post-logout redirect target.
type LogoutHandler struct {
	provider     IdentityProvider
	logger       Logger
	activitySink ActivitySink
	now          func() time.Time
}

func NewLogoutHandler(provider IdentityProvider) *LogoutHandler {
	return &LogoutHandler{
		provider:     provider,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
		now:          time.Now,
	}
}

func (h *LogoutHandler) WithLogger(logger Logger) *LogoutHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithActivitySink configures an ActivitySink for emitting logout events.
func (h *LogoutHandler) WithActivitySink(sink ActivitySink) *LogoutHandler {
	h.activitySink = normalizeActivitySink(sink)
	return h
}

func (h *LogoutHandler) Execute(ctx context.Context, event LogoutMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during logout",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *LogoutHandler) execute(ctx context.Context, event LogoutMessage) error {
	if err := h.provider.SignOut(ctx); err != nil {
		h.logger.Error("logout sign-out failed", "error", err)
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to sign out")
	}

	sink := normalizeActivitySink(h.activitySink)
	if err := sink.Record(ctx, ActivityEvent{
		EventType:  ActivityEventLogout,
		OccurredAt: h.now(),
	}); err != nil {
		h.logger.Warn("logout activity sink record error: %v", err)
	}

	if event.OnResponse != nil {
		event.OnResponse(&LogoutResponse{
			Success:    true,
			RedirectTo: LogoutRedirect(),
		})
	}

	return nil
}
