package repository

import (
	"context"
	"time"

	"voucher-pool/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CustomerRepository defines the read-only contract for customer lookup.
// Customer management is owned by an external system.
type CustomerRepository interface {
	// FindAll retrieves all customers.
	FindAll(ctx context.Context) ([]model.Customer, error)

	// FindByEmail retrieves a customer by email. Returns nil if no
	// customer has that email.
	FindByEmail(ctx context.Context, email string) (*model.Customer, error)
}

// OfferRepository defines the read-only contract for special offer lookup.
type OfferRepository interface {
	// FindByID retrieves a special offer by ID. Returns nil if the offer
	// does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*model.SpecialOffer, error)
}

// VoucherRepository defines the interface for voucher data access.
type VoucherRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Insert writes a single voucher within the provided transaction.
	// Returns model.ErrDuplicateCode if the generated code already exists,
	// and model.ErrDuplicateVoucher if the customer already holds a
	// voucher for the offer.
	Insert(ctx context.Context, tx pgx.Tx, voucher *model.Voucher) error

	// FindByCodeAndCustomer retrieves a voucher by code scoped to its
	// owning customer. Returns nil if absent or owned by someone else.
	FindByCodeAndCustomer(ctx context.Context, code string, customerID uuid.UUID) (*model.Voucher, error)

	// LockUnused re-reads an unused voucher within the transaction and
	// locks its row, serializing concurrent redemption attempts. Returns
	// nil if the voucher is absent or already used.
	LockUnused(ctx context.Context, tx pgx.Tx, code string, customerID uuid.UUID) (*model.Voucher, error)

	// MarkUsed sets used_at on a voucher within the transaction. The
	// update is guarded by used_at IS NULL; an already-used voucher is an
	// error.
	MarkUsed(ctx context.Context, tx pgx.Tx, id uuid.UUID, usedAt time.Time) error

	// CustomerIDsWithVoucher returns the subset of the given customers
	// that already hold a voucher for the offer.
	CustomerIDsWithVoucher(ctx context.Context, offerID uuid.UUID, customerIDs []uuid.UUID) (map[uuid.UUID]struct{}, error)

	// ListActiveByCustomer returns the customer's unused, unexpired
	// vouchers with offer details, ascending by expiration date.
	ListActiveByCustomer(ctx context.Context, customerID uuid.UUID, now time.Time) ([]model.CustomerVoucher, error)

	// FindAll retrieves all vouchers, newest first.
	FindAll(ctx context.Context) ([]model.Voucher, error)

	// FindByID retrieves a single voucher by ID. Returns nil if absent.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Voucher, error)

	// Delete removes a voucher. Returns false if no row was deleted.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
