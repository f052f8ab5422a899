package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studentversedubai-rgb/website-backend/internal/domain"
)

type ContactRepository struct {
	pool *pgxpool.Pool
}

func NewContactRepository(pool *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{pool: pool}
}

func (r *ContactRepository) Create(ctx context.Context, msg *domain.ContactMessage) (*domain.ContactMessage, error) {
	query := `
		INSERT INTO contact_messages (id, first_name, last_name, email, message, inquiry_type)
		VALUES ($1::uuid, $2, $3, $4, $5, $6)
		RETURNING id::text, first_name, last_name, email, message, inquiry_type, created_at`

	var out domain.ContactMessage
	err := r.pool.QueryRow(ctx, query,
		uuid.NewString(), msg.FirstName, msg.LastName, msg.Email, msg.Message, string(msg.InquiryType),
	).Scan(&out.ID, &out.FirstName, &out.LastName, &out.Email, &out.Message, &out.InquiryType, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert contact message: %w", err)
	}
	return &out, nil
}
