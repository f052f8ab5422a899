package repository

import (
	"context"

	"github.com/studentversedubai-rgb/website-backend/internal/domain"
)

type ContactRepository interface {
	Create(ctx context.Context, msg *domain.ContactMessage) (*domain.ContactMessage, error)
}
