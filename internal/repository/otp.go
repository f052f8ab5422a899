package repository

import (
	"context"
	"time"

	"github.com/studentversedubai-rgb/website-backend/internal/domain"
)

// OTPRepository keeps at most one OTP record per email in the ephemeral store.
type OTPRepository interface {
	// Save overwrites any existing record for rec.Email.
	Save(ctx context.Context, rec *domain.OTPRecord, ttl time.Duration) error

	// Consume compares candidate against the stored digest in constant time.
	// On match the record is deleted; on mismatch attempts is incremented.
	// Returns domain.ErrOTPNotFound, domain.ErrTooManyAttempts,
	// domain.ErrOTPInvalid, or an error wrapping domain.ErrStorageUnavailable.
	Consume(ctx context.Context, email string, candidate [32]byte, maxAttempts int) error
}

// PendingSignupRepository holds join context until verification.
type PendingSignupRepository interface {
	Put(ctx context.Context, p *domain.PendingSignup, ttl time.Duration) error
	// Get returns nil, nil when no live record exists.
	Get(ctx context.Context, email string) (*domain.PendingSignup, error)
	Clear(ctx context.Context, email string) error
}
