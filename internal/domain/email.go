package domain

import "strings"

// NormalizeEmail is the case-folded form used for every key, digest and
// comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeReferralCode upper-cases a user-typed referral code.
func NormalizeReferralCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
