package domain

import "time"

// OTPRecord is the single live one-time code for an email.
// Only the keyed digest is kept; the code itself never touches storage.
type OTPRecord struct {
	Email     string
	CodeHash  [32]byte
	Attempts  int
	CreatedAt time.Time
	ExpiresAt time.Time
}

// PendingSignup binds an unauthenticated email to the referral code it
// joined with until the OTP for that email is verified.
type PendingSignup struct {
	Email        string
	ReferralCode string // empty = joined without a referral
	CreatedAt    time.Time
	ExpiresAt    time.Time
}
