package redisstore_test

import (
	"context"
	"crypto/sha256"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studentversedubai-rgb/website-backend/internal/domain"
	"github.com/studentversedubai-rgb/website-backend/internal/infrastructure/redisstore"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func saveRecord(t *testing.T, s *redisstore.OTPStore, email, code string, ttl time.Duration) [32]byte {
	t.Helper()
	h := sha256.Sum256([]byte(code))
	rec := &domain.OTPRecord{Email: email, CodeHash: h, CreatedAt: time.Now(), ExpiresAt: time.Now().Add(ttl)}
	require.NoError(t, s.Save(context.Background(), rec, ttl))
	return h
}

// ---- OTPStore ----

func TestOTPStore_ConsumeMatchDeletesRecord(t *testing.T) {
	mr, client := newTestRedis(t)
	s := redisstore.NewOTPStore(client)
	ctx := context.Background()

	h := saveRecord(t, s, "a@x.com", "123456", 10*time.Minute)

	require.NoError(t, s.Consume(ctx, "a@x.com", h, 5))
	assert.False(t, mr.Exists("otp:email:a@x.com"), "record must be gone after success")
	assert.ErrorIs(t, s.Consume(ctx, "a@x.com", h, 5), domain.ErrOTPNotFound)
}

func TestOTPStore_MismatchIncrementsAttempts(t *testing.T) {
	mr, client := newTestRedis(t)
	s := redisstore.NewOTPStore(client)
	ctx := context.Background()

	saveRecord(t, s, "a@x.com", "123456", 10*time.Minute)
	wrong := sha256.Sum256([]byte("000000"))

	assert.ErrorIs(t, s.Consume(ctx, "a@x.com", wrong, 5), domain.ErrOTPInvalid)
	assert.ErrorIs(t, s.Consume(ctx, "a@x.com", wrong, 5), domain.ErrOTPInvalid)
	assert.Equal(t, "2", mr.HGet("otp:email:a@x.com", "attempts"))
}

func TestOTPStore_CeilingIsAbsolute(t *testing.T) {
	mr, client := newTestRedis(t)
	s := redisstore.NewOTPStore(client)
	ctx := context.Background()

	h := saveRecord(t, s, "a@x.com", "123456", 10*time.Minute)
	wrong := sha256.Sum256([]byte("000000"))

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, s.Consume(ctx, "a@x.com", wrong, 3), domain.ErrOTPInvalid)
	}
	assert.ErrorIs(t, s.Consume(ctx, "a@x.com", h, 3), domain.ErrTooManyAttempts)
	assert.True(t, mr.Exists("otp:email:a@x.com"), "exhausted record is kept until TTL")
	assert.Equal(t, "3", mr.HGet("otp:email:a@x.com", "attempts"))
}

func TestOTPStore_ExpiredIsNotFound(t *testing.T) {
	mr, client := newTestRedis(t)
	s := redisstore.NewOTPStore(client)

	h := saveRecord(t, s, "a@x.com", "123456", time.Minute)
	mr.FastForward(61 * time.Second)

	assert.ErrorIs(t, s.Consume(context.Background(), "a@x.com", h, 5), domain.ErrOTPNotFound)
}

func TestOTPStore_SaveOverwritesAndResetsAttempts(t *testing.T) {
	mr, client := newTestRedis(t)
	s := redisstore.NewOTPStore(client)
	ctx := context.Background()

	first := saveRecord(t, s, "a@x.com", "111111", 10*time.Minute)
	wrong := sha256.Sum256([]byte("999999"))
	require.ErrorIs(t, s.Consume(ctx, "a@x.com", wrong, 5), domain.ErrOTPInvalid)

	second := saveRecord(t, s, "a@x.com", "222222", 10*time.Minute)
	assert.Equal(t, "0", mr.HGet("otp:email:a@x.com", "attempts"))
	assert.ErrorIs(t, s.Consume(ctx, "a@x.com", first, 5), domain.ErrOTPInvalid, "earlier code is invalidated")
	assert.NoError(t, s.Consume(ctx, "a@x.com", second, 5))
}

func TestOTPStore_StoresDigestNotCode(t *testing.T) {
	mr, client := newTestRedis(t)
	s := redisstore.NewOTPStore(client)

	saveRecord(t, s, "a@x.com", "123456", 10*time.Minute)

	stored := mr.HGet("otp:email:a@x.com", "hash")
	assert.Len(t, stored, 64)
	assert.NotContains(t, stored, "123456")
	assert.Equal(t, 10*time.Minute, mr.TTL("otp:email:a@x.com"))
}

func TestOTPStore_RedisDown_WrapsStorageUnavailable(t *testing.T) {
	mr, client := newTestRedis(t)
	s := redisstore.NewOTPStore(client)
	mr.Close()

	err := s.Consume(context.Background(), "a@x.com", [32]byte{}, 5)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

// ---- PendingSignupStore ----

func TestPendingSignupStore_PutGetClear(t *testing.T) {
	mr, client := newTestRedis(t)
	s := redisstore.NewPendingSignupStore(client)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Put(ctx, &domain.PendingSignup{
		Email: "b@x.com", ReferralCode: "ABCDEFGH", CreatedAt: now, ExpiresAt: now.Add(10 * time.Minute),
	}, 10*time.Minute))
	assert.Equal(t, 10*time.Minute, mr.TTL("pending:waitlist:b@x.com"))

	p, err := s.Get(ctx, "b@x.com")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "ABCDEFGH", p.ReferralCode)
	assert.Equal(t, now.Unix(), p.CreatedAt.Unix())

	require.NoError(t, s.Clear(ctx, "b@x.com"))
	require.NoError(t, s.Clear(ctx, "b@x.com"), "second clear is a no-op")

	p, err = s.Get(ctx, "b@x.com")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestPendingSignupStore_LastJoinWins(t *testing.T) {
	_, client := newTestRedis(t)
	s := redisstore.NewPendingSignupStore(client)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, &domain.PendingSignup{Email: "b@x.com", ReferralCode: "FIRST234"}, time.Minute))
	require.NoError(t, s.Put(ctx, &domain.PendingSignup{Email: "b@x.com"}, time.Minute))

	p, err := s.Get(ctx, "b@x.com")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Empty(t, p.ReferralCode)
}

func TestPendingSignupStore_ExpiresWithTTL(t *testing.T) {
	mr, client := newTestRedis(t)
	s := redisstore.NewPendingSignupStore(client)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, &domain.PendingSignup{Email: "b@x.com"}, time.Minute))
	mr.FastForward(2 * time.Minute)

	p, err := s.Get(ctx, "b@x.com")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestPinger(t *testing.T) {
	mr, client := newTestRedis(t)
	p := redisstore.Pinger{Client: client}

	assert.NoError(t, p.Ping(context.Background()))
	mr.Close()
	assert.Error(t, p.Ping(context.Background()))
}
