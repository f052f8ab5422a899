package redisstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/studentversedubai-rgb/website-backend/internal/domain"
)

const (
	pendingKeyPrefix = "pending:waitlist:"

	fieldEmail        = "email"
	fieldReferralCode = "referral_code"
	fieldExpiresAt    = "expires_at"
)

// PendingSignupStore keeps the last join intent per email.
type PendingSignupStore struct {
	redis goredis.UniversalClient
}

func NewPendingSignupStore(redisClient goredis.UniversalClient) *PendingSignupStore {
	return &PendingSignupStore{redis: redisClient}
}

func pendingKey(email string) string {
	return pendingKeyPrefix + email
}

// Put replaces any earlier pending signup for the same email.
func (s *PendingSignupStore) Put(ctx context.Context, p *domain.PendingSignup, ttl time.Duration) error {
	key := pendingKey(p.Email)

	_, err := s.redis.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			fieldEmail, p.Email,
			fieldReferralCode, p.ReferralCode,
			fieldCreatedAt, p.CreatedAt.Unix(),
			fieldExpiresAt, p.ExpiresAt.Unix(),
		)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: put pending signup: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *PendingSignupStore) Get(ctx context.Context, email string) (*domain.PendingSignup, error) {
	fields, err := s.redis.HGetAll(ctx, pendingKey(email)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: get pending signup: %v", domain.ErrStorageUnavailable, err)
	}
	if fields[fieldEmail] == "" {
		return nil, nil
	}

	return &domain.PendingSignup{
		Email:        fields[fieldEmail],
		ReferralCode: fields[fieldReferralCode],
		CreatedAt:    unixField(fields[fieldCreatedAt]),
		ExpiresAt:    unixField(fields[fieldExpiresAt]),
	}, nil
}

// Clear is idempotent.
func (s *PendingSignupStore) Clear(ctx context.Context, email string) error {
	if err := s.redis.Del(ctx, pendingKey(email)).Err(); err != nil {
		return fmt.Errorf("%w: clear pending signup: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func unixField(v string) time.Time {
	sec, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}
