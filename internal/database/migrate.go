package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// schema is idempotent so running it on every start is safe.
//
// The two unique constraints carry the core invariants: voucher codes are
// globally unique, and a customer holds at most one voucher per offer.
const schema = `
	CREATE TABLE IF NOT EXISTS customers (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS special_offers (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		discount_percentage INTEGER NOT NULL CHECK (discount_percentage >= 0 AND discount_percentage <= 100),
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS vouchers (
		id UUID PRIMARY KEY,
		code VARCHAR(20) NOT NULL,
		customer_id UUID NOT NULL REFERENCES customers(id),
		special_offer_id UUID NOT NULL REFERENCES special_offers(id),
		expiration_date TIMESTAMPTZ NOT NULL,
		used_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT vouchers_code_key UNIQUE (code),
		CONSTRAINT vouchers_customer_offer_key UNIQUE (customer_id, special_offer_id)
	);

	CREATE INDEX IF NOT EXISTS idx_vouchers_customer_id ON vouchers(customer_id);
	CREATE INDEX IF NOT EXISTS idx_vouchers_special_offer_id ON vouchers(special_offer_id);
`

// Migrate creates the database schema if it does not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	logger.Info().Msg("running schema migration")

	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to run schema migration: %w", err)
	}

	logger.Info().Msg("schema migration complete")
	return nil
}
