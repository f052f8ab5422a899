package usecase

import (
	"context"
	"fmt"

	"github.com/studentversedubai-rgb/website-backend/internal/domain"
	"github.com/studentversedubai-rgb/website-backend/internal/metrics"
	"github.com/studentversedubai-rgb/website-backend/internal/repository"
)

type StatsUsecase struct {
	users repository.UserRepository
}

func NewStatsUsecase(users repository.UserRepository) *StatsUsecase {
	return &StatsUsecase{users: users}
}

func (u *StatsUsecase) Stats(ctx context.Context) (domain.WaitlistStats, error) {
	s, err := u.users.Stats(ctx)
	if err != nil {
		return domain.WaitlistStats{}, fmt.Errorf("load stats: %w", err)
	}
	return s, nil
}

// Refresh publishes the current counts to the users gauge.
func (u *StatsUsecase) Refresh(ctx context.Context) error {
	s, err := u.Stats(ctx)
	if err != nil {
		return err
	}
	metrics.WaitlistUsers.WithLabelValues("total").Set(float64(s.Total))
	metrics.WaitlistUsers.WithLabelValues("verified").Set(float64(s.Verified))
	metrics.WaitlistUsers.WithLabelValues("unlocked").Set(float64(s.Unlocked))
	return nil
}
