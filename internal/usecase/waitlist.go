package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/studentversedubai-rgb/website-backend/internal/clientip"
	"github.com/studentversedubai-rgb/website-backend/internal/domain"
	"github.com/studentversedubai-rgb/website-backend/internal/metrics"
	"github.com/studentversedubai-rgb/website-backend/internal/ratelimit"
	"github.com/studentversedubai-rgb/website-backend/internal/repository"
	"github.com/studentversedubai-rgb/website-backend/internal/sl"
)

type Limiter interface {
	Check(ctx context.Context, p ratelimit.Policy, identifier string) (bool, error)
}

type CodeEngine interface {
	RequestCode(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) error
	TTL() time.Duration
}

type Ledger interface {
	GenerateCodeWithin(ctx context.Context, budget int) (code string, draws int, err error)
	CreditReferral(ctx context.Context, newUserID, newUserEmail, referralCode string) error
	PositionOf(ctx context.Context, u *domain.WaitlistUser) (int, error)
	MaxRetries() int
}

type JoinInput struct {
	Email        string
	ReferralCode string
	ClientIP     string
}

type VerifyInput struct {
	Email    string
	Code     string
	ClientIP string
}

type WaitlistUsecase struct {
	limiter Limiter
	engine  CodeEngine
	pending repository.PendingSignupRepository
	users   repository.UserRepository
	ledger  Ledger
	logger  *slog.Logger
	now     func() time.Time

	joinPolicy   ratelimit.Policy
	verifyPolicy ratelimit.Policy
}

// NewWaitlistUsecase applies ipWindow/ipMax to both join and verify,
// each in its own scope.
func NewWaitlistUsecase(
	limiter Limiter,
	engine CodeEngine,
	pending repository.PendingSignupRepository,
	users repository.UserRepository,
	ledger Ledger,
	ipWindow time.Duration,
	ipMax int,
	logger *slog.Logger,
) *WaitlistUsecase {
	return &WaitlistUsecase{
		limiter:      limiter,
		engine:       engine,
		pending:      pending,
		users:        users,
		ledger:       ledger,
		logger:       logger.With("component", "waitlist"),
		now:          time.Now,
		joinPolicy:   ratelimit.Policy{Scope: ratelimit.ScopeJoinIP, Window: ipWindow, Max: ipMax},
		verifyPolicy: ratelimit.Policy{Scope: ratelimit.ScopeVerifyIP, Window: ipWindow, Max: ipMax},
	}
}

// Join records the signup intent and sends a code. The result does not
// depend on whether the email is already on the waitlist.
func (u *WaitlistUsecase) Join(ctx context.Context, in JoinInput) error {
	if err := u.checkIP(ctx, u.joinPolicy, in.ClientIP); err != nil {
		return err
	}

	email := domain.NormalizeEmail(in.Email)
	now := u.now()
	ttl := u.engine.TTL()
	p := &domain.PendingSignup{
		Email:        email,
		ReferralCode: domain.NormalizeReferralCode(in.ReferralCode),
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}
	if err := u.pending.Put(ctx, p, ttl); err != nil {
		return fmt.Errorf("store pending signup: %w", err)
	}

	if err := u.engine.RequestCode(ctx, email); err != nil {
		if errors.Is(err, domain.ErrRateLimited) {
			return err
		}
		return fmt.Errorf("request code: %w", err)
	}
	return nil
}

// Verify consumes the code and settles the email into one of three
// outcomes. Every code failure is reported as domain.ErrInvalidOrExpired.
func (u *WaitlistUsecase) Verify(ctx context.Context, in VerifyInput) (*domain.Snapshot, error) {
	if err := u.checkIP(ctx, u.verifyPolicy, in.ClientIP); err != nil {
		return nil, err
	}

	email := domain.NormalizeEmail(in.Email)

	err := u.engine.VerifyCode(ctx, email, in.Code)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrOTPNotFound),
		errors.Is(err, domain.ErrOTPInvalid),
		errors.Is(err, domain.ErrTooManyAttempts):
		return nil, domain.ErrInvalidOrExpired
	default:
		return nil, fmt.Errorf("verify code: %w", err)
	}

	user, err := u.users.FindByEmail(ctx, email)
	switch {
	case err == nil && user.IsVerified:
		return u.finish(ctx, email, user, domain.OutcomeReturningVerified)
	case err == nil:
		if err := u.users.MarkVerified(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("mark verified: %w", err)
		}
		user.IsVerified = true
		return u.finish(ctx, email, user, domain.OutcomeNewlyVerified)
	case errors.Is(err, domain.ErrUserNotFound):
		return u.createFromPending(ctx, email)
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}
}

func (u *WaitlistUsecase) createFromPending(ctx context.Context, email string) (*domain.Snapshot, error) {
	pending, err := u.pending.Get(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("load pending signup: %w", err)
	}
	if pending == nil {
		u.logger.InfoContext(ctx, "valid code without pending signup", sl.Email(email))
		return nil, domain.ErrSessionExpired
	}

	user, err := u.insertWithFreshCode(ctx, email)
	if errors.Is(err, domain.ErrEmailTaken) {
		u.logger.WarnContext(ctx, "concurrent signup for same email", sl.Email(email))
		return nil, domain.ErrAccountExists
	}
	if err != nil {
		return nil, err
	}

	// a failed credit must not undo a committed signup
	if err := u.ledger.CreditReferral(ctx, user.ID, user.Email, pending.ReferralCode); err != nil {
		u.logger.ErrorContext(ctx, "credit referral", sl.Err(err), "user_id", user.ID)
	}

	return u.finish(ctx, email, user, domain.OutcomeAccountCreated)
}

// insertWithFreshCode retries on referral-code collisions at insert time.
// Lookup collisions and insert collisions spend one budget of MaxRetries draws.
func (u *WaitlistUsecase) insertWithFreshCode(ctx context.Context, email string) (*domain.WaitlistUser, error) {
	remaining := u.ledger.MaxRetries()
	for remaining > 0 {
		code, draws, err := u.ledger.GenerateCodeWithin(ctx, remaining)
		if err != nil {
			return nil, fmt.Errorf("generate referral code: %w", err)
		}
		remaining -= draws

		user, err := u.users.InsertVerified(ctx, email, code)
		if errors.Is(err, domain.ErrReferralCodeTaken) {
			u.logger.DebugContext(ctx, "referral code taken at insert", "remaining", remaining)
			continue
		}
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, err
		}
		if err != nil {
			return nil, fmt.Errorf("insert user: %w", err)
		}
		return user, nil
	}
	return nil, domain.ErrReferralCodesExhausted
}

func (u *WaitlistUsecase) finish(ctx context.Context, email string, user *domain.WaitlistUser, outcome domain.Outcome) (*domain.Snapshot, error) {
	if err := u.pending.Clear(ctx, email); err != nil {
		// leftover pending state expires with its TTL
		u.logger.WarnContext(ctx, "clear pending signup", sl.Err(err), sl.Email(email))
	}

	position, err := u.ledger.PositionOf(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("compute position: %w", err)
	}

	metrics.SignupOutcomesTotal.WithLabelValues(string(outcome)).Inc()
	u.logger.InfoContext(ctx, "verification complete", sl.Email(email), "outcome", string(outcome), "position", position)

	return &domain.Snapshot{
		Outcome:       outcome,
		ReferralCode:  user.ReferralCode,
		Position:      position,
		ReferralCount: user.ReferralCount,
		RewardStatus:  user.RewardStatus,
	}, nil
}

func (u *WaitlistUsecase) checkIP(ctx context.Context, p ratelimit.Policy, ip string) error {
	if ip == "" {
		ip = clientip.Unknown
	}
	allowed, err := u.limiter.Check(ctx, p, ip)
	if err != nil {
		return fmt.Errorf("ip rate limit: %w", err)
	}
	if !allowed {
		u.logger.WarnContext(ctx, "ip rate limited", "scope", p.Scope, "client_ip", ip)
		return domain.ErrRateLimited
	}
	return nil
}
