// Package auth implements the client-side membership authentication flow
// (signup, login, logout, route guarding) on top of an injected identity
// provider and a tree-structured profile store.
//
// Signup sequencing:
//   - SignupHandler drives the ordered side effects of account creation:
//     provider account, verification email, profile tree, welcome
//     notification, referral tracking, and the forced sign-out that keeps
//     unverified accounts out of an active session. Account creation is the
//     only fatal step; every downstream write is best-effort and degrades to
//     a warning, because a partial profile is repairable and a stranded user
//     is not.
//
// Route guarding:
//   - RouteGuard reconciles the current session state against the current
//     page's access class on every provider state-change notification.
//     While a signup run is in flight the guard suppresses its reactions via
//     a scoped BeginSignup acquisition so the intermediate "account created
//     but not yet signed out" window cannot trigger a redirect.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by the command
//     handlers and the route guard to describe signup, login, logout, and
//     redirect events. Sinks run best-effort (errors are logged) so you can
//     forward to a database or queue without blocking authentication.
package auth
