//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/studentversedubai-rgb/website-backend/internal/domain"
	"github.com/studentversedubai-rgb/website-backend/internal/infrastructure/postgres"
)

// Run with: TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/infrastructure/postgres/
func newRepo(t *testing.T) *postgres.WaitlistUserRepository {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, url, 4)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := postgres.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE referral_events, waitlist_users`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return postgres.NewWaitlistUserRepository(pool)
}

func insert(t *testing.T, repo *postgres.WaitlistUserRepository, email, code string) *domain.WaitlistUser {
	t.Helper()
	u, err := repo.InsertVerified(context.Background(), email, code)
	if err != nil {
		t.Fatalf("insert %s: %v", email, err)
	}
	return u
}

func TestCreditReferral_UnlocksOnceAtThreshold(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	referrer := insert(t, repo, "r@x.com", "REFCODE1")

	codes := []string{"NEWCODE2", "NEWCODE3", "NEWCODE4", "NEWCODE5", "NEWCODE6", "NEWCODE7"}
	for i, code := range codes {
		referred := insert(t, repo, code+"@x.com", code)

		updated, unlocked, err := repo.CreditReferral(ctx, referrer.ID, referred.ID, 5)
		if err != nil {
			t.Fatalf("credit %d: %v", i+1, err)
		}
		if updated.ReferralCount != i+1 {
			t.Errorf("credit %d: referral_count = %d", i+1, updated.ReferralCount)
		}
		if wantUnlock := i+1 == 5; unlocked != wantUnlock {
			t.Errorf("credit %d: unlocked = %v, want %v", i+1, unlocked, wantUnlock)
		}
		if i+1 >= 5 && updated.RewardStatus != domain.RewardUnlocked {
			t.Errorf("credit %d: reward_status = %s", i+1, updated.RewardStatus)
		}
	}
}

func TestCreditReferral_Replay_AlreadyReferred(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	referrer := insert(t, repo, "r@x.com", "REFCODE1")
	referred := insert(t, repo, "n@x.com", "NEWCODE1")

	if _, _, err := repo.CreditReferral(ctx, referrer.ID, referred.ID, 5); err != nil {
		t.Fatalf("first credit: %v", err)
	}
	_, _, err := repo.CreditReferral(ctx, referrer.ID, referred.ID, 5)
	if !errors.Is(err, domain.ErrAlreadyReferred) {
		t.Fatalf("expected ErrAlreadyReferred, got %v", err)
	}

	got, err := repo.FindByID(ctx, referrer.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.ReferralCount != 1 {
		t.Errorf("referral_count = %d, want 1", got.ReferralCount)
	}
}

func TestCreditReferral_FailedInsert_CountUnchanged(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	referrer := insert(t, repo, "r@x.com", "REFCODE1")

	// referral_events_no_self rejects the event, so the update never runs
	if _, _, err := repo.CreditReferral(ctx, referrer.ID, referrer.ID, 5); err == nil {
		t.Fatal("expected error for self credit")
	}

	got, err := repo.FindByID(ctx, referrer.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.ReferralCount != 0 {
		t.Errorf("referral_count = %d, want 0", got.ReferralCount)
	}
}
