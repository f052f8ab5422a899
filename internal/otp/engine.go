// Package otp issues and verifies one-time email codes.
//
// Codes are stored only as a keyed digest, one record per email. Requesting
// a new code overwrites the previous record. A successful verification
// deletes the record; failed verifications count toward a per-email ceiling
// that stays in force until the record's TTL runs out.
package otp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/studentversedubai-rgb/website-backend/internal/domain"
	"github.com/studentversedubai-rgb/website-backend/internal/metrics"
	"github.com/studentversedubai-rgb/website-backend/internal/ratelimit"
	"github.com/studentversedubai-rgb/website-backend/internal/repository"
	"github.com/studentversedubai-rgb/website-backend/internal/sl"
)

const (
	defaultTTL             = 10 * time.Minute
	defaultMaxAttempts     = 5
	defaultRequestsPerHour = 5
)

// Limiter is the part of ratelimit.Limiter the engine needs.
type Limiter interface {
	Check(ctx context.Context, p ratelimit.Policy, identifier string) (bool, error)
}

// CodeSender delivers a code to an address.
type CodeSender interface {
	SendCode(ctx context.Context, to, code string) error
}

type Config struct {
	Secret          []byte
	TTL             time.Duration
	MaxAttempts     int
	RequestsPerHour int
}

type Engine struct {
	limiter  Limiter
	store    repository.OTPRepository
	sender   CodeSender
	logger   *slog.Logger
	generate CodeGenerator
	now      func() time.Time

	secret      []byte
	ttl         time.Duration
	maxAttempts int
	requests    ratelimit.Policy
}

type Option func(*Engine)

// WithCodeGenerator replaces the crypto/rand generator.
func WithCodeGenerator(g CodeGenerator) Option {
	return func(e *Engine) { e.generate = g }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(limiter Limiter, store repository.OTPRepository, sender CodeSender, cfg Config, logger *slog.Logger, opts ...Option) *Engine {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.RequestsPerHour <= 0 {
		cfg.RequestsPerHour = defaultRequestsPerHour
	}

	e := &Engine{
		limiter:     limiter,
		store:       store,
		sender:      sender,
		logger:      logger.With("component", "otp"),
		generate:    RandomCode,
		now:         time.Now,
		secret:      cfg.Secret,
		ttl:         cfg.TTL,
		maxAttempts: cfg.MaxAttempts,
		requests: ratelimit.Policy{
			Scope:  ratelimit.ScopeOTPRequest,
			Window: time.Hour,
			Max:    cfg.RequestsPerHour,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TTL is how long an issued code stays usable.
func (e *Engine) TTL() time.Duration {
	return e.ttl
}

// RequestCode throttles per email, stores the digest of a fresh code
// (replacing any earlier one) and sends the code.
// Returns domain.ErrRateLimited when the hourly budget is spent.
func (e *Engine) RequestCode(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)

	allowed, err := e.limiter.Check(ctx, e.requests, email)
	if err != nil {
		metrics.OTPRequestsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("otp request limit: %w", err)
	}
	if !allowed {
		metrics.OTPRequestsTotal.WithLabelValues("rate_limited").Inc()
		e.logger.WarnContext(ctx, "otp request rate limited", sl.Email(email))
		return domain.ErrRateLimited
	}

	code, err := e.generate()
	if err != nil {
		return err
	}

	now := e.now()
	rec := &domain.OTPRecord{
		Email:     email,
		CodeHash:  HashCode(e.secret, email, code),
		CreatedAt: now,
		ExpiresAt: now.Add(e.ttl),
	}
	if err := e.store.Save(ctx, rec, e.ttl); err != nil {
		metrics.OTPRequestsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("store otp: %w", err)
	}

	if err := e.sender.SendCode(ctx, email, code); err != nil {
		metrics.OTPRequestsTotal.WithLabelValues("send_failed").Inc()
		return fmt.Errorf("%w: %v", domain.ErrSendFailed, err)
	}

	metrics.OTPRequestsTotal.WithLabelValues("sent").Inc()
	return nil
}

// VerifyCode checks code against the stored digest for email.
// Returns nil on match (the record is consumed), otherwise
// domain.ErrOTPNotFound, domain.ErrTooManyAttempts or domain.ErrOTPInvalid,
// or a storage error.
func (e *Engine) VerifyCode(ctx context.Context, email, code string) error {
	email = domain.NormalizeEmail(email)

	if !validCode(code) {
		// malformed input never reaches the store and burns no attempt
		metrics.OTPVerificationsTotal.WithLabelValues("malformed").Inc()
		return domain.ErrOTPInvalid
	}

	err := e.store.Consume(ctx, email, HashCode(e.secret, email, code), e.maxAttempts)
	switch {
	case err == nil:
		metrics.OTPVerificationsTotal.WithLabelValues("ok").Inc()
		return nil
	case errors.Is(err, domain.ErrOTPNotFound):
		metrics.OTPVerificationsTotal.WithLabelValues("not_found").Inc()
	case errors.Is(err, domain.ErrTooManyAttempts):
		metrics.OTPVerificationsTotal.WithLabelValues("too_many_attempts").Inc()
	case errors.Is(err, domain.ErrOTPInvalid):
		metrics.OTPVerificationsTotal.WithLabelValues("invalid").Inc()
	default:
		metrics.OTPVerificationsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("consume otp: %w", err)
	}

	e.logger.InfoContext(ctx, "otp verification failed", sl.Email(email), sl.Err(err))
	return err
}
