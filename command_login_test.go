package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	auth "github.com/goliatone/go-member-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLoginRejectsEmptyCredentialsLocally(t *testing.T) {
	tests := []struct {
		name    string
		message auth.LoginMessage
	}{
		{name: "missing email", message: auth.LoginMessage{Email: " ", Password: "abcdef"}},
		{name: "missing password", message: auth.LoginMessage{Email: "a@x.com", Password: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &MockIdentityProvider{}
			store := &MockProfileStore{}

			handler := auth.NewLoginHandler(provider, store).WithLogger(quietLogger{})

			err := handler.Execute(context.Background(), tt.message)
			require.Error(t, err)
			assert.ErrorIs(t, err, auth.ErrMissingRequiredField)
			provider.AssertNotCalled(t, "SignIn", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestLoginFailureIsUniform(t *testing.T) {
	// Whatever the provider reports, the caller sees InvalidCredentials so
	// the flow cannot be used for account enumeration.
	providerErrors := []error{
		auth.NewProviderError(auth.ProviderCodeInvalidCredential, "no such user"),
		auth.NewProviderError(auth.ProviderCodeNetworkFailure, "offline"),
		errors.New("unclassified provider explosion"),
	}

	for _, perr := range providerErrors {
		provider := &MockIdentityProvider{}
		store := &MockProfileStore{}

		provider.On("SignIn", mock.Anything, "a@x.com", "wrong").Return(nil, perr).Once()

		handler := auth.NewLoginHandler(provider, store).WithLogger(quietLogger{})

		err := handler.Execute(context.Background(), auth.LoginMessage{
			Email: "a@x.com", Password: "wrong",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		store.AssertNotCalled(t, "WriteAt", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestLoginUnverifiedAccountIsSignedOutImmediately(t *testing.T) {
	provider := &MockIdentityProvider{}
	store := &MockProfileStore{}
	session := &fakeSession{id: "abc123xyz", email: "a@x.com", verified: false}

	provider.On("SignIn", mock.Anything, "a@x.com", "abcdef").Return(session, nil).Once()
	provider.On("SignOut", mock.Anything).Return(nil).Once()

	handler := auth.NewLoginHandler(provider, store).WithLogger(quietLogger{})

	err := handler.Execute(context.Background(), auth.LoginMessage{
		Email: "a@x.com", Password: "abcdef",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrEmailNotVerified)

	// No lastLogin write for unverified accounts.
	store.AssertNotCalled(t, "WriteAt", mock.Anything, mock.Anything, mock.Anything)
	provider.AssertExpectations(t)
}

func TestLoginVerifiedWritesLastLoginAndRedirects(t *testing.T) {
	provider := &MockIdentityProvider{}
	store := &MockProfileStore{}
	session := &fakeSession{id: "abc123xyz", email: "a@x.com", verified: true}
	now := time.Date(2025, 3, 2, 8, 30, 0, 0, time.UTC)

	provider.On("SignIn", mock.Anything, "a@x.com", "abcdef").Return(session, nil).Once()
	store.On("WriteAt", mock.Anything, "users/abc123xyz/profile/lastLogin", now.UnixMilli()).
		Return(nil).Once()

	var resp *auth.LoginResponse
	handler := auth.NewLoginHandler(provider, store).
		WithLogger(quietLogger{}).
		WithClock(func() time.Time { return now })

	err := handler.Execute(context.Background(), auth.LoginMessage{
		Email: "a@x.com", Password: "abcdef",
		OnResponse: func(r *auth.LoginResponse) { resp = r },
	})
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.True(t, resp.Success)
	assert.Equal(t, "abc123xyz", resp.UserID)
	assert.Equal(t, auth.DashboardPage, resp.RedirectTo)

	store.AssertExpectations(t)
	provider.AssertNotCalled(t, "SignOut", mock.Anything)
}

func TestLoginLastLoginWriteFailureIsSwallowed(t *testing.T) {
	provider := &MockIdentityProvider{}
	store := &MockProfileStore{}
	session := &fakeSession{id: "abc123xyz", email: "a@x.com", verified: true}

	provider.On("SignIn", mock.Anything, "a@x.com", "abcdef").Return(session, nil).Once()
	store.On("WriteAt", mock.Anything, "users/abc123xyz/profile/lastLogin", mock.Anything).
		Return(errors.New("store down"))

	var resp *auth.LoginResponse
	handler := auth.NewLoginHandler(provider, store).WithLogger(quietLogger{})

	err := handler.Execute(context.Background(), auth.LoginMessage{
		Email: "a@x.com", Password: "abcdef",
		OnResponse: func(r *auth.LoginResponse) { resp = r },
	})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.True(t, resp.Success)
}

func TestLoginEmitsActivityEvents(t *testing.T) {
	provider := &MockIdentityProvider{}
	store := &MockProfileStore{}
	session := &fakeSession{id: "abc123xyz", email: "a@x.com", verified: true}
	sink := &eventCollector{}

	provider.On("SignIn", mock.Anything, "a@x.com", "abcdef").Return(session, nil).Once()
	store.On("WriteAt", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	handler := auth.NewLoginHandler(provider, store).
		WithLogger(quietLogger{}).
		WithActivitySink(sink)

	err := handler.Execute(context.Background(), auth.LoginMessage{
		Email: "a@x.com", Password: "abcdef",
	})
	require.NoError(t, err)

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, auth.ActivityEventLoginSuccess, events[0].EventType)
}
