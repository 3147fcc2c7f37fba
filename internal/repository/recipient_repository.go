package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/pixshop/internal/db"
	"github.com/nikolayk812/pixshop/internal/domain"
	"github.com/nikolayk812/pixshop/internal/port"
	"github.com/samber/lo"
)

type recipientRepository struct {
	q *db.Queries
}

func NewRecipient(pool *pgxpool.Pool) port.RecipientRepository {
	return &recipientRepository{
		q: db.New(pool),
	}
}

func (r *recipientRepository) ListActiveRecipients(ctx context.Context) ([]domain.Recipient, error) {
	dbRecipients, err := r.q.ListActiveRecipients(ctx)
	if err != nil {
		return nil, fmt.Errorf("q.ListActiveRecipients: %w", err)
	}

	return lo.Map(dbRecipients, func(rec db.WhatsappRecipient, _ int) domain.Recipient {
		return domain.Recipient{
			ID:     rec.ID,
			Name:   rec.Name,
			Phone:  rec.Phone,
			Active: rec.Active,
		}
	}), nil
}
