package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/studentversedubai-rgb/website-backend/internal/clientip"
	"github.com/studentversedubai-rgb/website-backend/internal/domain"
	"github.com/studentversedubai-rgb/website-backend/internal/ratelimit"
	"github.com/studentversedubai-rgb/website-backend/internal/repository"
	"github.com/studentversedubai-rgb/website-backend/internal/sl"
)

type ContactInput struct {
	FirstName   string
	LastName    string
	Email       string
	Message     string
	InquiryType domain.InquiryType
	ClientIP    string
}

type ContactUsecase struct {
	limiter  Limiter
	messages repository.ContactRepository
	policy   ratelimit.Policy
	logger   *slog.Logger
}

func NewContactUsecase(limiter Limiter, messages repository.ContactRepository, ipWindow time.Duration, ipMax int, logger *slog.Logger) *ContactUsecase {
	return &ContactUsecase{
		limiter:  limiter,
		messages: messages,
		policy:   ratelimit.Policy{Scope: ratelimit.ScopeContactIP, Window: ipWindow, Max: ipMax},
		logger:   logger.With("component", "contact"),
	}
}

func (u *ContactUsecase) Submit(ctx context.Context, in ContactInput) (*domain.ContactMessage, error) {
	ip := in.ClientIP
	if ip == "" {
		ip = clientip.Unknown
	}
	allowed, err := u.limiter.Check(ctx, u.policy, ip)
	if err != nil {
		return nil, fmt.Errorf("ip rate limit: %w", err)
	}
	if !allowed {
		return nil, domain.ErrRateLimited
	}

	msg, err := u.messages.Create(ctx, &domain.ContactMessage{
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		Email:       domain.NormalizeEmail(in.Email),
		Message:     strings.TrimSpace(in.Message),
		InquiryType: in.InquiryType,
	})
	if err != nil {
		return nil, fmt.Errorf("store contact message: %w", err)
	}

	u.logger.InfoContext(ctx, "contact message stored", "id", msg.ID, "inquiry_type", string(msg.InquiryType), sl.Email(msg.Email))
	return msg, nil
}
