package auth

import (
	"context"
	"sync"
	"time"
)

// SessionState is the guard-relevant classification of the current session.
type SessionState string

const (
	StateUnauthenticated         SessionState = "unauthenticated"
	StateAuthenticatedUnverified SessionState = "authenticated_unverified"
	StateAuthenticatedVerified   SessionState = "authenticated_verified"
)

// AccessClass categorizes a page by who may visit it.
type AccessClass string

const (
	// AccessProtected pages require a verified session.
	AccessProtected AccessClass = "protected"
	// AccessAuthOnly pages are only for anonymous visitors (login, register).
	AccessAuthOnly AccessClass = "auth_only"
	// AccessPublic pages are open to everyone.
	AccessPublic AccessClass = "public"
)

// ClassifySession maps a provider session reference to a guard state.
func ClassifySession(session Session) SessionState {
	if session == nil {
		return StateUnauthenticated
	}
	if !session.EmailVerified() {
		return StateAuthenticatedUnverified
	}
	return StateAuthenticatedVerified
}

// GuardDecision is the outcome of evaluating the policy table for one
// state-change notification. A zero decision is a no-op.
type GuardDecision struct {
	Redirect string
	Warning  string
}

// IsNoop reports whether the guard decided to leave the page alone.
func (d GuardDecision) IsNoop() bool {
	return d.Redirect == ""
}

// RouteGuardOption customizes guard construction.
type RouteGuardOption func(*RouteGuard)

// WithGuardLogger overrides the logger used for suppressed events and warnings.
func WithGuardLogger(logger Logger) RouteGuardOption {
	return func(g *RouteGuard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithGuardClock injects a custom clock (useful for tests).
func WithGuardClock(clock func() time.Time) RouteGuardOption {
	return func(g *RouteGuard) {
		if clock != nil {
			g.now = clock
		}
	}
}

// WithGuardActivitySink sets the ActivitySink used to publish redirect events.
func WithGuardActivitySink(sink ActivitySink) RouteGuardOption {
	return func(g *RouteGuard) {
		g.activitySink = normalizeActivitySink(sink)
	}
}

// WithPageClass registers or overrides the access class of a single page.
func WithPageClass(page string, class AccessClass) RouteGuardOption {
	return func(g *RouteGuard) {
		g.pages[page] = class
	}
}

// WithProtectedPages marks pages as requiring a verified session.
func WithProtectedPages(pages ...string) RouteGuardOption {
	return func(g *RouteGuard) {
		for _, page := range pages {
			g.pages[page] = AccessProtected
		}
	}
}

// WithAuthOnlyPages marks pages as reserved for anonymous visitors.
func WithAuthOnlyPages(pages ...string) RouteGuardOption {
	return func(g *RouteGuard) {
		for _, page := range pages {
			g.pages[page] = AccessAuthOnly
		}
	}
}

// NewRouteGuard returns a guard seeded with the default page registry:
// dashboard and profile are protected, login and register are auth-only,
// everything else is public.
func NewRouteGuard(opts ...RouteGuardOption) *RouteGuard {
	g := &RouteGuard{
		pages: map[string]AccessClass{
			DashboardPage: AccessProtected,
			ProfilePage:   AccessProtected,
			LoginPage:     AccessAuthOnly,
			RegisterPage:  AccessAuthOnly,
		},
		now:          time.Now,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g
}

// RouteGuard reconciles session state against the current page's access
// class on every provider state-change notification.
type RouteGuard struct {
	mu           sync.Mutex
	suppressions int
	pages        map[string]AccessClass
	now          func() time.Time
	logger       Logger
	activitySink ActivitySink
}

// PageClass returns the access class of a page. Unregistered pages are public.
func (g *RouteGuard) PageClass(page string) AccessClass {
	if class, ok := g.pages[page]; ok {
		return class
	}
	return AccessPublic
}

// BeginSignup suppresses guard reactions until the returned release func
// runs. The signup sequencer holds this for its whole run so the
// intermediate signed-in-but-unverified window never triggers a redirect.
// Release is idempotent and must run on every exit path.
func (g *RouteGuard) BeginSignup() func() {
	g.mu.Lock()
	g.suppressions++
	g.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			g.suppressions--
			g.mu.Unlock()
		})
	}
}

// Suppressed reports whether a signup run currently holds the guard.
func (g *RouteGuard) Suppressed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.suppressions > 0
}

// Evaluate applies the policy table to a session/page pair. It is pure
// policy: suppression is handled by Handle.
//
//	state                    protected page        auth-only page
//	unauthenticated          redirect to login     no-op
//	authenticated unverified warn + login          no-op
//	authenticated verified   no-op                 redirect to dashboard
func (g *RouteGuard) Evaluate(session Session, page string) GuardDecision {
	class := g.PageClass(page)

	switch ClassifySession(session) {
	case StateUnauthenticated:
		if class == AccessProtected {
			return GuardDecision{Redirect: LoginRedirect(page)}
		}
	case StateAuthenticatedUnverified:
		if class == AccessProtected {
			return GuardDecision{
				Redirect: LoginRedirect(page),
				Warning:  HumanizeError(ErrEmailNotVerified),
			}
		}
	case StateAuthenticatedVerified:
		if class == AccessAuthOnly {
			return GuardDecision{Redirect: DashboardPage}
		}
	}

	return GuardDecision{}
}

// Handle evaluates one state-change notification, honoring suppression and
// emitting activity for redirects.
func (g *RouteGuard) Handle(ctx context.Context, session Session, page string) GuardDecision {
	if g.Suppressed() {
		g.logger.Debug("route guard suppressed during signup", "page", page)
		return GuardDecision{}
	}

	decision := g.Evaluate(session, page)
	if decision.Warning != "" {
		g.logger.Warn("route guard: %s", decision.Warning)
	}

	if decision.IsNoop() {
		return decision
	}

	userID := ""
	if session != nil {
		userID = session.UserID()
	}

	g.recordActivity(WithSessionContext(ctx, session), ActivityEvent{
		EventType: ActivityEventGuardRedirect,
		UserID:    userID,
		Page:      page,
		Metadata: map[string]any{
			"state":  string(ClassifySession(session)),
			"class":  string(g.PageClass(page)),
			"target": decision.Redirect,
		},
	})

	return decision
}

// Bind attaches the guard to the provider's state-change notifications.
// currentPage resolves the page the user is on when a notification fires;
// navigate performs the redirect the policy table calls for.
func (g *RouteGuard) Bind(provider IdentityProvider, currentPage func() string, navigate func(target string)) {
	provider.ObserveState(func(session Session) {
		decision := g.Handle(context.Background(), session, currentPage())
		if !decision.IsNoop() {
			navigate(decision.Redirect)
		}
	})
}

func (g *RouteGuard) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = g.now()
	}

	sink := normalizeActivitySink(g.activitySink)
	if err := sink.Record(ctx, event); err != nil {
		g.logger.Warn("route guard activity sink error: %v", err)
	}
}
