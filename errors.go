package auth

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeMissingRequiredField = "MISSING_REQUIRED_FIELD"
	textCodeWeakPassword         = "WEAK_PASSWORD"
	textCodeTermsNotAccepted     = "TERMS_NOT_ACCEPTED"
	textCodeWeakPasswordRemote   = "WEAK_PASSWORD_REMOTE"
	textCodeEmailAlreadyInUse    = "EMAIL_ALREADY_IN_USE"
	textCodeInvalidEmail         = "INVALID_EMAIL"
	textCodeNetworkFailure       = "NETWORK_FAILURE"
	textCodeUnknownProvider      = "UNKNOWN_PROVIDER_ERROR"
	textCodeInvalidCredentials   = "INVALID_CREDENTIALS"
	textCodeEmailNotVerified     = "EMAIL_NOT_VERIFIED"
	textCodeStoreWriteFailure    = "STORE_WRITE_FAILURE"
)

// ErrMissingRequiredField is returned when name, email, or password is empty.
var ErrMissingRequiredField = goerrors.New("required field is missing", goerrors.CategoryValidation).
	WithTextCode(textCodeMissingRequiredField).
	WithCode(goerrors.CodeBadRequest)

// ErrWeakPassword is returned when the password fails the local length rule.
var ErrWeakPassword = goerrors.New("password is too weak", goerrors.CategoryValidation).
	WithTextCode(textCodeWeakPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrTermsNotAccepted is returned when a presented terms checkbox was left unchecked.
var ErrTermsNotAccepted = goerrors.New("terms of service not accepted", goerrors.CategoryValidation).
	WithTextCode(textCodeTermsNotAccepted).
	WithCode(goerrors.CodeBadRequest)

// ErrWeakPasswordRemote is the classified provider error for passwords the
// provider itself rejected.
var ErrWeakPasswordRemote = goerrors.New("password rejected by provider", goerrors.CategoryValidation).
	WithTextCode(textCodeWeakPasswordRemote).
	WithCode(goerrors.CodeBadRequest)

// ErrEmailAlreadyInUse is the classified provider error for duplicate accounts.
var ErrEmailAlreadyInUse = goerrors.New("email already registered", goerrors.CategoryConflict).
	WithTextCode(textCodeEmailAlreadyInUse).
	WithCode(goerrors.CodeConflict)

// ErrInvalidEmail is the classified provider error for malformed addresses.
var ErrInvalidEmail = goerrors.New("invalid email address", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidEmail).
	WithCode(goerrors.CodeBadRequest)

// ErrNetworkFailure is the classified provider error for transport failures.
var ErrNetworkFailure = goerrors.New("network request failed", goerrors.CategoryOperation).
	WithTextCode(textCodeNetworkFailure)

// ErrUnknownProvider covers provider error codes we do not recognize.
var ErrUnknownProvider = goerrors.New("identity provider error", goerrors.CategoryInternal).
	WithTextCode(textCodeUnknownProvider)

// ErrInvalidCredentials is the uniform login failure. It never discloses
// which of email/password was wrong.
var ErrInvalidCredentials = goerrors.New("invalid email or password", goerrors.CategoryAuth).
	WithTextCode(textCodeInvalidCredentials)

// ErrEmailNotVerified is returned when a sign-in succeeds but the account
// has not completed email verification.
var ErrEmailNotVerified = goerrors.New("email not verified", goerrors.CategoryAuth).
	WithTextCode(textCodeEmailNotVerified)

// ErrStoreWriteFailure wraps profile store failures. It is logged, never
// surfaced to the user.
var ErrStoreWriteFailure = goerrors.New("profile store write failed", goerrors.CategoryOperation).
	WithTextCode(textCodeStoreWriteFailure)

// Provider error codes in the identity provider's own vocabulary.
const (
	ProviderCodeEmailInUse         = "auth/email-already-in-use"
	ProviderCodeInvalidEmail       = "auth/invalid-email"
	ProviderCodeWeakPassword       = "auth/weak-password"
	ProviderCodeInvalidCredential  = "auth/invalid-credential"
	ProviderCodeNetworkFailure     = "auth/network-request-failed"
	ProviderCodeUserDisabled       = "auth/user-disabled"
	ProviderCodeTooManyRequests    = "auth/too-many-requests"
	ProviderCodeOperationForbidden = "auth/operation-not-allowed"
)

// ProviderError carries the raw error code reported by the identity
// provider. Adapters return these; ClassifyProviderError maps them into
// the local taxonomy before anything reaches a user.
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewProviderError builds a ProviderError from a provider code and message.
func NewProviderError(code, message string) *ProviderError {
	return &ProviderError{Code: code, Message: message}
}

// ClassifyProviderError maps a raw provider error into the local taxonomy.
// Unrecognized codes fall through to ErrUnknownProvider with the raw
// message preserved in metadata.
func ClassifyProviderError(err error) error {
	if err == nil {
		return nil
	}

	var perr *ProviderError
	if !errors.As(err, &perr) {
		return ErrUnknownProvider.WithMetadata(map[string]any{
			"raw": err.Error(),
		})
	}

	meta := map[string]any{"provider_code": perr.Code}

	switch perr.Code {
	case ProviderCodeEmailInUse:
		return ErrEmailAlreadyInUse.WithMetadata(meta)
	case ProviderCodeInvalidEmail:
		return ErrInvalidEmail.WithMetadata(meta)
	case ProviderCodeWeakPassword:
		return ErrWeakPasswordRemote.WithMetadata(meta)
	case ProviderCodeNetworkFailure:
		return ErrNetworkFailure.WithMetadata(meta)
	default:
		raw := perr.Message
		if raw == "" {
			raw = perr.Code
		}
		meta["raw"] = raw
		return ErrUnknownProvider.WithMetadata(meta)
	}
}

// humanMessages maps taxonomy text codes to the fixed strings shown to users.
var humanMessages = map[string]string{
	textCodeMissingRequiredField: "All required fields must be filled.",
	textCodeWeakPassword:         "Password must be at least 6 characters.",
	textCodeTermsNotAccepted:     "Please agree to the Terms of Service.",
	textCodeWeakPasswordRemote:   "Password too weak (min 6 characters).",
	textCodeEmailAlreadyInUse:    "This email is already registered.",
	textCodeInvalidEmail:         "Invalid email address.",
	textCodeNetworkFailure:       "Network error. Please try again.",
	textCodeInvalidCredentials:   "Invalid email or password.",
	textCodeEmailNotVerified:     "Please verify your email before logging in.",
}

// HumanizeError returns the user-facing message for an error. Recognized
// codes map to fixed copy; unrecognized provider errors surface the raw
// provider message, everything else falls back to the error's own message.
func HumanizeError(err error) string {
	if err == nil {
		return ""
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		if msg, ok := humanMessages[richErr.TextCode]; ok {
			return msg
		}
		if raw, ok := richErr.Metadata["raw"].(string); ok && raw != "" {
			return raw
		}
	}

	return err.Error()
}
