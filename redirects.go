package auth

import (
	"net/url"
	"strings"
)

// Known page targets. Redirects are expressed as relative page paths the
// hosting shell navigates to; no server routing is involved.
const (
	LoginPage     = "login.html"
	RegisterPage  = "register.html"
	DashboardPage = "dashboard.html"
	ProfilePage   = "profile.html"
)

// SignupSuccessRedirect points at the login page pre-filled with the email
// the account was just created for. Parameter order matches what the login
// page's prefill script expects.
func SignupSuccessRedirect(email string) string {
	return LoginPage + "?signup=success&email=" + url.QueryEscape(email)
}

// LogoutRedirect points at the login page with the logout banner flag.
func LogoutRedirect() string {
	return LoginPage + "?logout=success"
}

// LoginRedirect points at the login page, carrying the originally
// requested page so it can be resumed after sign-in.
func LoginRedirect(fromPage string) string {
	if fromPage == "" {
		return LoginPage
	}
	q := url.Values{}
	q.Set("redirect", fromPage)
	return LoginPage + "?" + q.Encode()
}

// EmailFromRedirect recovers the pre-fill email from a signup-success
// redirect target. Returns "" when the target carries none.
func EmailFromRedirect(target string) string {
	idx := strings.Index(target, "?")
	if idx < 0 {
		return ""
	}
	q, err := url.ParseQuery(target[idx+1:])
	if err != nil {
		return ""
	}
	return q.Get("email")
}
