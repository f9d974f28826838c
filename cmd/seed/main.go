package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"voucher-pool/internal/config"
	"voucher-pool/internal/database"

	"github.com/google/uuid"
)

// Seeds a handful of customers and special offers for local development.
// Customer and offer management is owned by an external system in
// production; this exists so the voucher endpoints have something to work
// against.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	customers := []struct {
		name  string
		email string
	}{
		{"Alice Johnson", "alice@example.com"},
		{"Bob Smith", "bob@example.com"},
		{"Carol Davis", "carol@example.com"},
	}

	offers := []struct {
		name     string
		discount int
	}{
		{"Summer Sale", 25},
		{"Welcome Offer", 10},
	}

	now := time.Now()

	for _, c := range customers {
		_, err := pool.Exec(ctx, `
			INSERT INTO customers (id, name, email, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $4)
			ON CONFLICT (email) DO NOTHING
		`, uuid.New(), c.name, c.email, now)
		if err != nil {
			return fmt.Errorf("failed to seed customer %s: %w", c.email, err)
		}
		logger.Info().Str("email", c.email).Msg("seeded customer")
	}

	for _, o := range offers {
		id := uuid.New()
		_, err := pool.Exec(ctx, `
			INSERT INTO special_offers (id, name, discount_percentage, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $4)
		`, id, o.name, o.discount, now)
		if err != nil {
			return fmt.Errorf("failed to seed offer %s: %w", o.name, err)
		}
		logger.Info().Str("offer_id", id.String()).Str("name", o.name).Msg("seeded special offer")
	}

	logger.Info().Msg("seed complete")
	return nil
}
