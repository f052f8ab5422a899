package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studentversedubai-rgb/website-backend/internal/domain"
)

const (
	uniqueViolation = "23505"

	emailKey        = "waitlist_users_email_key"
	referralCodeKey = "waitlist_users_referral_code_key"
	referredKey     = "referral_events_referred_id_key"
)

const userColumns = `id::text, email, referral_code, is_verified, referral_count, reward_status, signup_seq, created_at`

type WaitlistUserRepository struct {
	pool *pgxpool.Pool
}

func NewWaitlistUserRepository(pool *pgxpool.Pool) *WaitlistUserRepository {
	return &WaitlistUserRepository{pool: pool}
}

func (r *WaitlistUserRepository) FindByEmail(ctx context.Context, email string) (*domain.WaitlistUser, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM waitlist_users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *WaitlistUserRepository) FindByID(ctx context.Context, id string) (*domain.WaitlistUser, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrUserNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM waitlist_users WHERE id = $1::uuid`, id)
	return scanUser(row)
}

func (r *WaitlistUserRepository) FindByReferralCode(ctx context.Context, code string) (*domain.WaitlistUser, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM waitlist_users WHERE referral_code = $1`, code)
	return scanUser(row)
}

func (r *WaitlistUserRepository) InsertVerified(ctx context.Context, email, referralCode string) (*domain.WaitlistUser, error) {
	query := `
		INSERT INTO waitlist_users (id, email, referral_code, is_verified)
		VALUES ($1::uuid, $2, $3, TRUE)
		RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query, uuid.NewString(), email, referralCode)
	u, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			switch pgErr.ConstraintName {
			case emailKey:
				return nil, domain.ErrEmailTaken
			case referralCodeKey:
				return nil, domain.ErrReferralCodeTaken
			}
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (r *WaitlistUserRepository) MarkVerified(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE waitlist_users SET is_verified = TRUE WHERE id = $1::uuid`, id)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// CreditReferral records the referral event and bumps the referrer's count in
// one transaction. repotest.Users mirrors the unlock rule below; keep them in step.
func (r *WaitlistUserRepository) CreditReferral(ctx context.Context, referrerID, referredID string, unlockThreshold int) (*domain.WaitlistUser, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO referral_events (id, referrer_id, referred_id)
		VALUES ($1::uuid, $2::uuid, $3::uuid)`,
		uuid.NewString(), referrerID, referredID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == referredKey {
			return nil, false, domain.ErrAlreadyReferred
		}
		return nil, false, fmt.Errorf("append referral event: %w", err)
	}

	// prev locks the row so its status is the one this update replaces
	query := `
		WITH prev AS (
			SELECT id, reward_status FROM waitlist_users WHERE id = $1::uuid FOR UPDATE
		)
		UPDATE waitlist_users w
		SET    referral_count = w.referral_count + 1,
		       reward_status  = CASE
		                            WHEN w.referral_count + 1 >= $2 THEN 'unlocked'
		                            ELSE w.reward_status
		                        END
		FROM   prev
		WHERE  w.id = prev.id
		RETURNING w.id::text, w.email, w.referral_code, w.is_verified, w.referral_count,
		          w.reward_status, w.signup_seq, w.created_at, prev.reward_status`

	var (
		u          domain.WaitlistUser
		prevStatus string
	)
	err = tx.QueryRow(ctx, query, referrerID, unlockThreshold).Scan(
		&u.ID, &u.Email, &u.ReferralCode, &u.IsVerified, &u.ReferralCount,
		&u.RewardStatus, &u.SignupSeq, &u.CreatedAt, &prevStatus,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, domain.ErrUserNotFound
		}
		return nil, false, fmt.Errorf("increment referral: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("commit tx: %w", err)
	}

	unlocked := domain.RewardStatus(prevStatus) == domain.RewardLocked && u.RewardStatus == domain.RewardUnlocked
	return &u, unlocked, nil
}

func (r *WaitlistUserRepository) CountCreatedBefore(ctx context.Context, createdAt time.Time, seq int64) (int, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM waitlist_users WHERE (created_at, signup_seq) < ($1, $2)`,
		createdAt, seq,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return int(n), nil
}

func (r *WaitlistUserRepository) Stats(ctx context.Context) (domain.WaitlistStats, error) {
	var total, verified, unlocked int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_verified),
		       COUNT(*) FILTER (WHERE reward_status = 'unlocked')
		FROM waitlist_users`).Scan(&total, &verified, &unlocked)
	if err != nil {
		return domain.WaitlistStats{}, fmt.Errorf("waitlist stats: %w", err)
	}
	return domain.WaitlistStats{Total: int(total), Verified: int(verified), Unlocked: int(unlocked)}, nil
}

func scanUser(row pgx.Row) (*domain.WaitlistUser, error) {
	var u domain.WaitlistUser
	err := row.Scan(&u.ID, &u.Email, &u.ReferralCode, &u.IsVerified, &u.ReferralCount, &u.RewardStatus, &u.SignupSeq, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
