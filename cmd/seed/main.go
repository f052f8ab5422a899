// seed applies the schema and builds a small referral tree in the local
// database: one root user and a chain of referred signups under it.
// Run: go run ./cmd/seed -referred 6
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/studentversedubai-rgb/website-backend/internal/domain"
	"github.com/studentversedubai-rgb/website-backend/internal/infrastructure/postgres"
	"github.com/studentversedubai-rgb/website-backend/internal/referral"
)

const rootEmail = "root@seed.local"

func main() {
	referred := flag.Int("referred", 6, "number of users referred by the root user")
	threshold := flag.Int("threshold", referral.DefaultUnlockThreshold, "reward unlock threshold")
	flag.Parse()

	_ = godotenv.Load()
	ctx := context.Background()
	logger := slog.New(tint.NewHandler(os.Stdout, nil))

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	pool, err := postgres.NewPool(ctx, dbURL, 2)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	users := postgres.NewWaitlistUserRepository(pool)
	ledger := referral.NewLedger(users, *threshold, logger)

	root, err := ensureUser(ctx, users, ledger, rootEmail)
	if err != nil {
		log.Fatalf("root user: %v", err)
	}
	fmt.Printf("root %s code=%s\n", root.Email, root.ReferralCode)

	for i := 1; i <= *referred; i++ {
		addr := fmt.Sprintf("friend%02d@seed.local", i)
		u, err := ensureUser(ctx, users, ledger, addr)
		if err != nil {
			log.Fatalf("%s: %v", addr, err)
		}
		if err := ledger.CreditReferral(ctx, u.ID, u.Email, root.ReferralCode); err != nil {
			log.Fatalf("credit %s: %v", addr, err)
		}
		pos, err := ledger.ComputePosition(ctx, u.ID)
		if err != nil {
			log.Fatalf("position %s: %v", addr, err)
		}
		fmt.Printf("  %s code=%s position=%d\n", u.Email, u.ReferralCode, pos)
	}

	root, err = users.FindByID(ctx, root.ID)
	if err != nil {
		log.Fatalf("reload root: %v", err)
	}
	fmt.Printf("root referrals=%d reward=%s\n", root.ReferralCount, root.RewardStatus)
}

func ensureUser(ctx context.Context, users *postgres.WaitlistUserRepository, ledger *referral.Ledger, addr string) (*domain.WaitlistUser, error) {
	u, err := users.FindByEmail(ctx, addr)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	code, err := ledger.GenerateUniqueCode(ctx)
	if err != nil {
		return nil, err
	}
	return users.InsertVerified(ctx, addr, code)
}
