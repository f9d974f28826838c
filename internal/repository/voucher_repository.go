package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voucher-pool/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Unique constraint names from the vouchers table. Insert inspects these
// to map a 23505 onto the right sentinel error.
const (
	constraintVoucherCode          = "vouchers_code_key"
	constraintVoucherCustomerOffer = "vouchers_customer_offer_key"
)

const pgUniqueViolation = "23505"

// voucherRepository implements VoucherRepository using PostgreSQL.
type voucherRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewVoucherRepository creates a new PostgreSQL-backed voucher repository.
func NewVoucherRepository(pool *pgxpool.Pool, logger zerolog.Logger) VoucherRepository {
	return &voucherRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "voucher").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *voucherRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Insert writes a single voucher within the provided transaction. The
// insert runs in a savepoint so a constraint failure does not poison the
// enclosing transaction; the issuer can regenerate the code or skip the
// record and keep going with the rest of the batch.
func (r *voucherRepository) Insert(ctx context.Context, tx pgx.Tx, voucher *model.Voucher) error {
	query := `
		INSERT INTO vouchers (id, code, customer_id, special_offer_id, expiration_date, used_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	// pgx nested transactions map onto savepoints.
	sp, err := tx.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to create savepoint")
		return fmt.Errorf("failed to create savepoint: %w", err)
	}

	_, err = sp.Exec(ctx, query,
		voucher.ID,
		voucher.Code,
		voucher.CustomerID,
		voucher.SpecialOfferID,
		voucher.ExpirationDate,
		voucher.UsedAt,
		voucher.CreatedAt,
		voucher.UpdatedAt,
	)
	if err != nil {
		if rbErr := sp.Rollback(ctx); rbErr != nil {
			r.logger.Error().Err(rbErr).Msg("failed to rollback savepoint")
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			switch pgErr.ConstraintName {
			case constraintVoucherCode:
				r.logger.Warn().
					Str("code", voucher.Code).
					Msg("voucher code collision")
				return model.ErrDuplicateCode
			case constraintVoucherCustomerOffer:
				r.logger.Debug().
					Str("customer_id", voucher.CustomerID.String()).
					Str("offer_id", voucher.SpecialOfferID.String()).
					Msg("customer already has a voucher for this offer")
				return model.ErrDuplicateVoucher
			}
		}
		r.logger.Error().
			Err(err).
			Str("voucher_id", voucher.ID.String()).
			Msg("failed to insert voucher")
		return fmt.Errorf("failed to insert voucher: %w", err)
	}

	if err := sp.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Msg("failed to release savepoint")
		return fmt.Errorf("failed to release savepoint: %w", err)
	}

	return nil
}

// FindByCodeAndCustomer retrieves a voucher by code scoped to its owning
// customer. This is the cheap pre-check read; it runs outside any
// transaction.
func (r *voucherRepository) FindByCodeAndCustomer(ctx context.Context, code string, customerID uuid.UUID) (*model.Voucher, error) {
	query := `
		SELECT id, code, customer_id, special_offer_id, expiration_date, used_at, created_at, updated_at
		FROM vouchers
		WHERE code = $1 AND customer_id = $2
	`

	v, err := r.scanVoucher(r.pool.QueryRow(ctx, query, code, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("code", code).Msg("voucher not found for customer")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to query voucher")
		return nil, fmt.Errorf("failed to query voucher: %w", err)
	}

	return v, nil
}

// LockUnused re-reads an unused voucher within the transaction and locks
// its row. FOR UPDATE makes a concurrent redeemer of the same voucher wait
// here; once the winner commits, the loser's filter on used_at IS NULL
// matches nothing.
func (r *voucherRepository) LockUnused(ctx context.Context, tx pgx.Tx, code string, customerID uuid.UUID) (*model.Voucher, error) {
	query := `
		SELECT id, code, customer_id, special_offer_id, expiration_date, used_at, created_at, updated_at
		FROM vouchers
		WHERE code = $1 AND customer_id = $2 AND used_at IS NULL
		FOR UPDATE
	`

	v, err := r.scanVoucher(tx.QueryRow(ctx, query, code, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to lock voucher")
		return nil, fmt.Errorf("failed to lock voucher: %w", err)
	}

	return v, nil
}

// MarkUsed sets used_at on a voucher within the transaction.
func (r *voucherRepository) MarkUsed(ctx context.Context, tx pgx.Tx, id uuid.UUID, usedAt time.Time) error {
	query := `
		UPDATE vouchers
		SET used_at = $2, updated_at = $2
		WHERE id = $1 AND used_at IS NULL
	`

	tag, err := tx.Exec(ctx, query, id, usedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("voucher_id", id.String()).Msg("failed to mark voucher as used")
		return fmt.Errorf("failed to mark voucher as used: %w", err)
	}

	// The row was locked when this runs, so zero rows means the caller
	// skipped LockUnused or the voucher was used outside a transaction.
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("voucher %s not found or already used", id)
	}

	return nil
}

// CustomerIDsWithVoucher returns the subset of the given customers that
// already hold a voucher for the offer.
func (r *voucherRepository) CustomerIDsWithVoucher(ctx context.Context, offerID uuid.UUID, customerIDs []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	if len(customerIDs) == 0 {
		return map[uuid.UUID]struct{}{}, nil
	}

	query := `
		SELECT customer_id
		FROM vouchers
		WHERE special_offer_id = $1 AND customer_id = ANY($2)
	`

	rows, err := r.pool.Query(ctx, query, offerID, customerIDs)
	if err != nil {
		r.logger.Error().Err(err).Str("offer_id", offerID.String()).Msg("failed to query existing vouchers")
		return nil, fmt.Errorf("failed to query existing vouchers: %w", err)
	}
	defer rows.Close()

	existing := make(map[uuid.UUID]struct{}, len(customerIDs))
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan customer id row")
			return nil, fmt.Errorf("failed to scan customer id: %w", err)
		}
		existing[id] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating existing voucher rows")
		return nil, fmt.Errorf("error iterating existing vouchers: %w", err)
	}

	return existing, nil
}

// ListActiveByCustomer returns the customer's unused, unexpired vouchers
// with offer details, ascending by expiration date.
func (r *voucherRepository) ListActiveByCustomer(ctx context.Context, customerID uuid.UUID, now time.Time) ([]model.CustomerVoucher, error) {
	query := `
		SELECT v.code, o.name, o.discount_percentage, v.expiration_date
		FROM vouchers v
		JOIN special_offers o ON o.id = v.special_offer_id
		WHERE v.customer_id = $1 AND v.used_at IS NULL AND v.expiration_date > $2
		ORDER BY v.expiration_date ASC
	`

	rows, err := r.pool.Query(ctx, query, customerID, now)
	if err != nil {
		r.logger.Error().Err(err).Str("customer_id", customerID.String()).Msg("failed to query customer vouchers")
		return nil, fmt.Errorf("failed to query customer vouchers: %w", err)
	}
	defer rows.Close()

	var vouchers []model.CustomerVoucher
	for rows.Next() {
		var cv model.CustomerVoucher
		if err := rows.Scan(&cv.Code, &cv.OfferName, &cv.DiscountPercentage, &cv.ExpirationDate); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan customer voucher row")
			return nil, fmt.Errorf("failed to scan customer voucher: %w", err)
		}
		// Rows are already filtered to unused and unexpired.
		cv.IsValid = true
		vouchers = append(vouchers, cv)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating customer voucher rows")
		return nil, fmt.Errorf("error iterating customer vouchers: %w", err)
	}

	return vouchers, nil
}

// FindAll retrieves all vouchers, newest first.
func (r *voucherRepository) FindAll(ctx context.Context) ([]model.Voucher, error) {
	query := `
		SELECT id, code, customer_id, special_offer_id, expiration_date, used_at, created_at, updated_at
		FROM vouchers
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query vouchers")
		return nil, fmt.Errorf("failed to query vouchers: %w", err)
	}
	defer rows.Close()

	var vouchers []model.Voucher
	for rows.Next() {
		var v model.Voucher
		if err := rows.Scan(&v.ID, &v.Code, &v.CustomerID, &v.SpecialOfferID, &v.ExpirationDate, &v.UsedAt, &v.CreatedAt, &v.UpdatedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan voucher row")
			return nil, fmt.Errorf("failed to scan voucher: %w", err)
		}
		vouchers = append(vouchers, v)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating voucher rows")
		return nil, fmt.Errorf("error iterating vouchers: %w", err)
	}

	return vouchers, nil
}

// FindByID retrieves a single voucher by ID.
func (r *voucherRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Voucher, error) {
	query := `
		SELECT id, code, customer_id, special_offer_id, expiration_date, used_at, created_at, updated_at
		FROM vouchers
		WHERE id = $1
	`

	v, err := r.scanVoucher(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("voucher_id", id.String()).Msg("voucher not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("voucher_id", id.String()).Msg("failed to query voucher")
		return nil, fmt.Errorf("failed to query voucher: %w", err)
	}

	return v, nil
}

// Delete removes a voucher.
func (r *voucherRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM vouchers WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("voucher_id", id.String()).Msg("failed to delete voucher")
		return false, fmt.Errorf("failed to delete voucher: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// scanVoucher scans a single voucher row.
func (r *voucherRepository) scanVoucher(row pgx.Row) (*model.Voucher, error) {
	var v model.Voucher
	err := row.Scan(
		&v.ID,
		&v.Code,
		&v.CustomerID,
		&v.SpecialOfferID,
		&v.ExpirationDate,
		&v.UsedAt,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
