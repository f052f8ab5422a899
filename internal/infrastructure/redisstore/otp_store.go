package redisstore

import (
	"context"
	"crypto/hmac"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/studentversedubai-rgb/website-backend/internal/domain"
)

const (
	otpKeyPrefix = "otp:email:"

	fieldHash      = "hash"
	fieldAttempts  = "attempts"
	fieldCreatedAt = "created_at"

	maxConsumeRetries = 4
)

type OTPStore struct {
	redis goredis.UniversalClient
}

func NewOTPStore(redisClient goredis.UniversalClient) *OTPStore {
	return &OTPStore{redis: redisClient}
}

func otpKey(email string) string {
	return otpKeyPrefix + email
}

func (s *OTPStore) Save(ctx context.Context, rec *domain.OTPRecord, ttl time.Duration) error {
	key := otpKey(rec.Email)

	_, err := s.redis.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			fieldHash, hex.EncodeToString(rec.CodeHash[:]),
			fieldAttempts, 0,
			fieldCreatedAt, rec.CreatedAt.Unix(),
		)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: save otp: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// Consume runs read, compare, then delete-or-increment under WATCH so two
// concurrent verifications of the same email cannot both succeed.
func (s *OTPStore) Consume(ctx context.Context, email string, candidate [32]byte, maxAttempts int) error {
	key := otpKey(email)

	for i := 0; i < maxConsumeRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *goredis.Tx) error {
			fields, err := tx.HGetAll(ctx, key).Result()
			if err != nil {
				return err
			}
			if len(fields) == 0 || fields[fieldHash] == "" {
				return domain.ErrOTPNotFound
			}

			attempts, _ := strconv.Atoi(fields[fieldAttempts])
			if attempts >= maxAttempts {
				return domain.ErrTooManyAttempts
			}

			// an undecodable digest compares as a mismatch
			stored, _ := hex.DecodeString(fields[fieldHash])
			if !hmac.Equal(stored, candidate[:]) {
				_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
					pipe.HIncrBy(ctx, key, fieldAttempts, 1)
					return nil
				})
				if err != nil {
					return err
				}
				return domain.ErrOTPInvalid
			}

			_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			return err
		}, key)

		switch {
		case errors.Is(err, goredis.TxFailedErr):
			continue
		case err == nil:
			return nil
		case errors.Is(err, domain.ErrOTPNotFound),
			errors.Is(err, domain.ErrTooManyAttempts),
			errors.Is(err, domain.ErrOTPInvalid):
			return err
		default:
			return fmt.Errorf("%w: consume otp: %v", domain.ErrStorageUnavailable, err)
		}
	}

	return domain.ErrOTPNotFound
}
