// Package referral assigns referral codes, credits referrers and ranks users
// on the waitlist.
package referral

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/studentversedubai-rgb/website-backend/internal/domain"
	"github.com/studentversedubai-rgb/website-backend/internal/metrics"
	"github.com/studentversedubai-rgb/website-backend/internal/repository"
	"github.com/studentversedubai-rgb/website-backend/internal/sl"
)

// Alphabet leaves out 0, O, I and 1.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	CodeLength             = 8
	DefaultMaxRetries      = 10
	DefaultUnlockThreshold = 5
)

// CodeSource produces one candidate referral code.
type CodeSource func() (string, error)

type Ledger struct {
	users      repository.UserRepository
	logger     *slog.Logger
	threshold  int
	maxRetries int
	source     CodeSource
}

type Option func(*Ledger)

func WithCodeSource(src CodeSource) Option {
	return func(l *Ledger) { l.source = src }
}

func WithMaxRetries(n int) Option {
	return func(l *Ledger) { l.maxRetries = n }
}

func NewLedger(users repository.UserRepository, unlockThreshold int, logger *slog.Logger, opts ...Option) *Ledger {
	if unlockThreshold <= 0 {
		unlockThreshold = DefaultUnlockThreshold
	}
	l := &Ledger{
		users:      users,
		logger:     logger.With("component", "referral"),
		threshold:  unlockThreshold,
		maxRetries: DefaultMaxRetries,
		source:     RandomCode,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// MaxRetries is the collision budget shared by generation and insert.
func (l *Ledger) MaxRetries() int {
	return l.maxRetries
}

// RandomCode draws CodeLength symbols uniformly from Alphabet.
func RandomCode() (string, error) {
	var b strings.Builder
	b.Grow(CodeLength)

	size := big.NewInt(int64(len(Alphabet)))
	for i := 0; i < CodeLength; i++ {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", fmt.Errorf("generate referral code: %w", err)
		}
		b.WriteByte(Alphabet[n.Int64()])
	}
	return b.String(), nil
}

// GenerateUniqueCode returns a code no user currently holds. The insert that
// follows can still collide; the caller retries on domain.ErrReferralCodeTaken.
func (l *Ledger) GenerateUniqueCode(ctx context.Context) (string, error) {
	code, _, err := l.GenerateCodeWithin(ctx, l.maxRetries)
	return code, err
}

// GenerateCodeWithin is GenerateUniqueCode limited to budget draws. draws
// counts every candidate consumed, the returned one included.
func (l *Ledger) GenerateCodeWithin(ctx context.Context, budget int) (code string, draws int, err error) {
	for draws < budget {
		code, err = l.source()
		if err != nil {
			return "", draws, err
		}
		draws++

		_, err = l.users.FindByReferralCode(ctx, code)
		if errors.Is(err, domain.ErrUserNotFound) {
			return code, draws, nil
		}
		if err != nil {
			return "", draws, fmt.Errorf("check referral code: %w", err)
		}
		l.logger.DebugContext(ctx, "referral code collision", "attempt", draws)
	}
	return "", draws, domain.ErrReferralCodesExhausted
}

// CreditReferral attributes a new signup to the owner of referralCode.
// Unknown codes and self-referrals are ignored. Only storage failures
// are returned.
func (l *Ledger) CreditReferral(ctx context.Context, newUserID, newUserEmail, referralCode string) error {
	referralCode = domain.NormalizeReferralCode(referralCode)
	if referralCode == "" {
		return nil
	}

	referrer, err := l.users.FindByReferralCode(ctx, referralCode)
	if errors.Is(err, domain.ErrUserNotFound) {
		l.logger.WarnContext(ctx, "referral code not found, ignoring", "referral_code", referralCode)
		return nil
	}
	if err != nil {
		return fmt.Errorf("find referrer: %w", err)
	}

	if referrer.ID == newUserID || domain.NormalizeEmail(referrer.Email) == domain.NormalizeEmail(newUserEmail) {
		l.logger.WarnContext(ctx, "self-referral ignored", sl.Email(newUserEmail))
		return nil
	}

	// the unique referred_id keeps a replayed credit from bumping the count twice
	updated, unlocked, err := l.users.CreditReferral(ctx, referrer.ID, newUserID, l.threshold)
	if errors.Is(err, domain.ErrAlreadyReferred) {
		l.logger.WarnContext(ctx, "referred user already credited", "referred_id", newUserID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("credit referral: %w", err)
	}

	metrics.ReferralsCreditedTotal.Inc()
	if unlocked {
		metrics.RewardsUnlockedTotal.Inc()
		l.logger.InfoContext(ctx, "referral reward unlocked", "referrer_id", updated.ID, "referral_count", updated.ReferralCount)
	}
	return nil
}

// ComputePosition is the 1-based waitlist rank of userID.
func (l *Ledger) ComputePosition(ctx context.Context, userID string) (int, error) {
	u, err := l.users.FindByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("find user: %w", err)
	}
	return l.PositionOf(ctx, u)
}

// PositionOf ranks u as 1 + the number of users that signed up before it.
func (l *Ledger) PositionOf(ctx context.Context, u *domain.WaitlistUser) (int, error) {
	n, err := l.users.CountCreatedBefore(ctx, u.CreatedAt, u.SignupSeq)
	if err != nil {
		return 0, fmt.Errorf("count earlier users: %w", err)
	}
	return n + 1, nil
}
