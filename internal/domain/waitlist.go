package domain

import "time"

type RewardStatus string

const (
	RewardLocked   RewardStatus = "locked"
	RewardUnlocked RewardStatus = "unlocked"
)

type WaitlistUser struct {
	ID            string
	Email         string
	ReferralCode  string
	IsVerified    bool
	ReferralCount int
	RewardStatus  RewardStatus
	SignupSeq     int64 // monotonic insertion order, breaks created_at ties
	CreatedAt     time.Time
}

type ReferralEvent struct {
	ID         string
	ReferrerID string
	ReferredID string
	CreatedAt  time.Time
}

// Outcome is the terminal state reached by a successful verification.
type Outcome string

const (
	OutcomeReturningVerified Outcome = "login"
	OutcomeNewlyVerified     Outcome = "verified"
	OutcomeAccountCreated    Outcome = "signup"
)

// Snapshot is what a verified caller gets back, once per valid OTP.
type Snapshot struct {
	Outcome       Outcome
	ReferralCode  string
	Position      int
	ReferralCount int
	RewardStatus  RewardStatus
}

type WaitlistStats struct {
	Total    int
	Verified int
	Unlocked int
}
