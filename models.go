package auth

import (
	"fmt"
	"time"
)

// MembershipLevel is the user's membership tier
type MembershipLevel = string

const (
	// MembershipFree is the tier every new signup starts on
	MembershipFree MembershipLevel = "Free"
	// MembershipPro is a paid tier (i.e. full downloads, event access)
	MembershipPro MembershipLevel = "Pro"
)

const (
	// MembershipStatusActive is the status assigned at signup
	MembershipStatusActive = "active"
	// MembershipStatusCancelled marks a membership the user ended
	MembershipStatusCancelled = "cancelled"
)

// NotificationTypeWelcome tags the notification appended at signup.
const NotificationTypeWelcome = "welcome"

// WelcomeMessage is the body of the signup notification.
const WelcomeMessage = "Welcome to Future Finance Leaders (FFL)! Please verify your email before logging in."

// ProfileSection holds the identity-adjacent fields of a user's tree.
type ProfileSection struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Background    string `json:"background,omitempty"`
	LinkedIn      string `json:"linkedin,omitempty"`
	CreatedAt     int64  `json:"createdAt"`
	EmailVerified bool   `json:"emailVerified"`
	LastLogin     *int64 `json:"lastLogin"`
}

// MembershipSection tracks the user's tier and standing.
type MembershipSection struct {
	Level    MembershipLevel `json:"level"`
	Status   string          `json:"status"`
	JoinedAt int64           `json:"joinedAt"`
}

// ReferralSection holds the user's own code and who referred them.
type ReferralSection struct {
	Code       string `json:"code"`
	ReferredBy string `json:"referredBy,omitempty"`
}

// ActivitySection carries engagement counters, zeroed at signup.
type ActivitySection struct {
	EventsAttended int `json:"eventsAttended"`
	Downloads      int `json:"downloads"`
}

// UserProfile is the full tree written at users/<uid> during signup.
type UserProfile struct {
	Profile    ProfileSection    `json:"profile"`
	Membership MembershipSection `json:"membership"`
	Referral   ReferralSection   `json:"referral"`
	Activity   ActivitySection   `json:"activity"`
}

// NotificationRecord is an append-only per-user list entry.
type NotificationRecord struct {
	Message string `json:"message"`
	Read    bool   `json:"read"`
	Time    int64  `json:"time"`
	Type    string `json:"type"`
}

// ReferralTrackingRecord is an append-only global list entry created when
// a signup carried a referral code.
type ReferralTrackingRecord struct {
	ReferrerCode   string `json:"referrerCode"`
	ReferredUserID string `json:"referredUserId"`
	Timestamp      int64  `json:"timestamp"`
}

// NewUserProfile builds the profile tree for a fresh signup.
func NewUserProfile(name, email, background, linkedin, referralCode, referredBy string, now time.Time) *UserProfile {
	millis := now.UnixMilli()
	return &UserProfile{
		Profile: ProfileSection{
			Name:          name,
			Email:         email,
			Background:    background,
			LinkedIn:      linkedin,
			CreatedAt:     millis,
			EmailVerified: false,
			LastLogin:     nil,
		},
		Membership: MembershipSection{
			Level:    MembershipFree,
			Status:   MembershipStatusActive,
			JoinedAt: millis,
		},
		Referral: ReferralSection{
			Code:       referralCode,
			ReferredBy: referredBy,
		},
		Activity: ActivitySection{},
	}
}

// ReferralTrackingPath is the global append-only list of referral events.
const ReferralTrackingPath = "referralTracking"

// UserProfilePath is the tree root for a user's application data.
func UserProfilePath(uid string) string {
	return fmt.Sprintf("users/%s", uid)
}

// LastLoginPath is the single field mutated on every verified login.
func LastLoginPath(uid string) string {
	return fmt.Sprintf("users/%s/profile/lastLogin", uid)
}

// NotificationsPath is the per-user append-only notification list.
func NotificationsPath(uid string) string {
	return fmt.Sprintf("notifications/%s", uid)
}
