package domain

import "errors"

// Errors that may cross the system boundary.
var (
	ErrRateLimited      = errors.New("too many requests")
	ErrInvalidOrExpired = errors.New("code is invalid or expired")
	ErrSessionExpired   = errors.New("no pending signup for this email")
	ErrAccountExists    = errors.New("account already exists")
)

// Internal distinctions. They are logged but collapsed into the errors above
// before a response is written.
var (
	ErrOTPNotFound            = errors.New("otp not found or expired")
	ErrOTPInvalid             = errors.New("otp mismatch")
	ErrTooManyAttempts        = errors.New("too many otp attempts")
	ErrStorageUnavailable     = errors.New("storage unavailable")
	ErrSendFailed             = errors.New("email send failed")
	ErrUserNotFound           = errors.New("user not found")
	ErrEmailTaken             = errors.New("email already registered")
	ErrReferralCodeTaken      = errors.New("referral code already assigned")
	ErrReferralCodesExhausted = errors.New("could not generate a unique referral code")
	ErrAlreadyReferred        = errors.New("referred user already credited")
)
