package repository

import (
	"context"
	"errors"
	"fmt"

	"voucher-pool/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// offerRepository implements OfferRepository using PostgreSQL.
type offerRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOfferRepository creates a new PostgreSQL-backed special offer repository.
func NewOfferRepository(pool *pgxpool.Pool, logger zerolog.Logger) OfferRepository {
	return &offerRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "offer").Logger(),
	}
}

// FindByID retrieves a special offer by ID.
func (r *offerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.SpecialOffer, error) {
	query := `
		SELECT id, name, discount_percentage, created_at, updated_at
		FROM special_offers
		WHERE id = $1
	`

	var o model.SpecialOffer
	err := r.pool.QueryRow(ctx, query, id).Scan(&o.ID, &o.Name, &o.DiscountPercentage, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("offer_id", id.String()).Msg("special offer not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("offer_id", id.String()).Msg("failed to query special offer")
		return nil, fmt.Errorf("failed to query special offer: %w", err)
	}

	return &o, nil
}
