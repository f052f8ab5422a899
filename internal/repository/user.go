package repository

import (
	"context"
	"time"

	"github.com/studentversedubai-rgb/website-backend/internal/domain"
)

// UserRepository is the durable store of waitlist users and referral events.
// Lookups return domain.ErrUserNotFound when no row matches.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.WaitlistUser, error)
	FindByID(ctx context.Context, id string) (*domain.WaitlistUser, error)
	FindByReferralCode(ctx context.Context, code string) (*domain.WaitlistUser, error)

	// InsertVerified creates an already-verified user. Uniqueness is arbitrated
	// by the store: domain.ErrEmailTaken or domain.ErrReferralCodeTaken.
	InsertVerified(ctx context.Context, email, referralCode string) (*domain.WaitlistUser, error)
	MarkVerified(ctx context.Context, id string) error

	// CreditReferral atomically records referrer -> referred and adds exactly
	// one to the referrer's referral_count, unlocking the reward when the new
	// count reaches unlockThreshold. Either both writes land or neither does.
	// A referred user can be credited once; a second call returns
	// domain.ErrAlreadyReferred. unlocked reports whether this call did the unlock.
	CreditReferral(ctx context.Context, referrerID, referredID string, unlockThreshold int) (referrer *domain.WaitlistUser, unlocked bool, err error)

	// CountCreatedBefore counts users ordered strictly before (createdAt, seq).
	CountCreatedBefore(ctx context.Context, createdAt time.Time, seq int64) (int, error)
	Stats(ctx context.Context) (domain.WaitlistStats, error)
}
