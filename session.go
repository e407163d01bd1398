package auth

var _ Session = &SessionObject{}

// SessionObject is a plain Session carrier for providers that do not
// need a richer type of their own.
type SessionObject struct {
	UID          string `json:"uid,omitempty"`
	EmailAddress string `json:"email,omitempty"`
	Verified     bool   `json:"email_verified,omitempty"`
}

func (s *SessionObject) UserID() string {
	return s.UID
}

func (s *SessionObject) Email() string {
	return s.EmailAddress
}

func (s *SessionObject) EmailVerified() bool {
	return s.Verified
}
