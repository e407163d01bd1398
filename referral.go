package auth

import "strings"

// ReferralCodePrefix namespaces every member referral code.
const ReferralCodePrefix = "FFL"

// DeriveReferralCode derives the member's referral code from their
// provider-issued user id: prefix plus the first six characters of the id,
// upper-cased. Deterministic for a fixed id, so codes never need to be
// coordinated; uniqueness is only as strong as the id prefix.
func DeriveReferralCode(uid string) string {
	id := uid
	if len(id) > 6 {
		id = id[:6]
	}
	return ReferralCodePrefix + strings.ToUpper(id)
}
