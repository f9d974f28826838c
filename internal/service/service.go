package service

import (
	"context"
	"time"

	"voucher-pool/internal/model"

	"github.com/google/uuid"
)

// VoucherService defines the voucher lifecycle operations.
type VoucherService interface {
	// Generate creates a voucher for every customer that does not yet
	// hold one for the offer, in a single transaction. Returns the number
	// of vouchers written.
	Generate(ctx context.Context, offerID uuid.UUID, expirationDate time.Time) (int, error)

	// Check validates a voucher against the customer identified by email
	// without mutating it.
	Check(ctx context.Context, code, email string) (*model.RedemptionResult, error)

	// Redeem validates a voucher and, when valid, marks it used. At most
	// one Redeem call ever succeeds for a given voucher.
	Redeem(ctx context.Context, code, email string) (*model.RedemptionResult, error)

	// ListActive returns the customer's unused, unexpired vouchers,
	// ascending by expiration date.
	ListActive(ctx context.Context, email string) ([]model.CustomerVoucher, error)

	// FindAll retrieves all vouchers, newest first.
	FindAll(ctx context.Context) ([]model.Voucher, error)

	// FindByID retrieves a single voucher by ID. Returns nil if absent.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Voucher, error)

	// Remove deletes a voucher. Returns false if it did not exist.
	Remove(ctx context.Context, id uuid.UUID) (bool, error)
}
