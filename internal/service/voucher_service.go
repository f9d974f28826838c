package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voucher-pool/internal/code"
	"voucher-pool/internal/metrics"
	"voucher-pool/internal/model"
	"voucher-pool/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// Rejection messages returned by Check and Redeem. Rejections are results,
// not errors; callers see accepted=false with one of these.
const (
	msgCustomerNotFound = "Customer not found with the provided email"
	msgVoucherNotFound  = "Voucher not found or does not belong to this customer"
	msgAlreadyUsed      = "Voucher has already been used"
	msgAlreadyRedeemed  = "Voucher not found or has already been redeemed"
	msgExpired          = "Voucher has expired"
	msgValid            = "Voucher is valid and can be redeemed"
	msgRedeemed         = "Voucher successfully redeemed"
)

// voucherService implements VoucherService.
type voucherService struct {
	voucherRepo  repository.VoucherRepository
	customerRepo repository.CustomerRepository
	offerRepo    repository.OfferRepository
	generator    code.Generator
	// maxCodeAttempts bounds per-record code regeneration on collision.
	maxCodeAttempts int
	logger          zerolog.Logger
}

// NewVoucherService creates a new voucher service.
func NewVoucherService(
	voucherRepo repository.VoucherRepository,
	customerRepo repository.CustomerRepository,
	offerRepo repository.OfferRepository,
	generator code.Generator,
	maxCodeAttempts int,
	logger zerolog.Logger,
) VoucherService {
	return &voucherService{
		voucherRepo:     voucherRepo,
		customerRepo:    customerRepo,
		offerRepo:       offerRepo,
		generator:       generator,
		maxCodeAttempts: maxCodeAttempts,
		logger:          logger.With().Str("service", "voucher").Logger(),
	}
}

// Generate creates a voucher for every customer that does not yet hold one
// for the offer.
//
// The whole batch is written in one transaction: any storage failure rolls
// everything back. Two per-record cases are handled inside the batch
// instead of aborting it: a code collision regenerates the code for that
// record (bounded attempts), and a natural-key conflict (a concurrent
// generation call already created this customer's voucher) skips the
// record, so the returned count reflects rows actually written.
func (s *voucherService) Generate(ctx context.Context, offerID uuid.UUID, expirationDate time.Time) (int, error) {
	offer, err := s.offerRepo.FindByID(ctx, offerID)
	if err != nil {
		return 0, fmt.Errorf("failed to look up special offer: %w", err)
	}
	if offer == nil {
		s.logger.Warn().Str("offer_id", offerID.String()).Msg("special offer not found")
		return 0, model.ErrOfferNotFound
	}

	if !expirationDate.After(time.Now()) {
		s.logger.Warn().
			Time("expiration_date", expirationDate).
			Msg("expiration date not in the future")
		return 0, model.ErrExpirationNotFuture
	}

	customers, err := s.customerRepo.FindAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch customers: %w", err)
	}
	if len(customers) == 0 {
		return 0, model.ErrNoCustomers
	}

	customerIDs := make([]uuid.UUID, len(customers))
	for i, c := range customers {
		customerIDs[i] = c.ID
	}

	existing, err := s.voucherRepo.CustomerIDsWithVoucher(ctx, offerID, customerIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch existing vouchers: %w", err)
	}

	// Set difference: customers without a voucher for this offer.
	var eligible []model.Customer
	for _, c := range customers {
		if _, has := existing[c.ID]; !has {
			eligible = append(eligible, c)
		}
	}

	if len(eligible) == 0 {
		s.logger.Info().Str("offer_id", offerID.String()).Msg("all customers already have vouchers")
		return 0, model.ErrNothingToGenerate
	}

	tx, err := s.voucherRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return 0, fmt.Errorf("failed to generate vouchers: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	written := 0
	for _, customer := range eligible {
		var inserted bool
		inserted, err = s.insertWithRetry(ctx, tx, customer.ID, offerID, expirationDate)
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("customer_id", customer.ID.String()).
				Msg("failed to insert voucher")
			return 0, fmt.Errorf("failed to generate vouchers: %w", err)
		}
		if inserted {
			written++
		}
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to commit transaction")
		return 0, fmt.Errorf("failed to generate vouchers: %w", err)
	}

	metrics.RecordIssued(written)

	s.logger.Info().
		Str("offer_id", offerID.String()).
		Int("eligible", len(eligible)).
		Int("written", written).
		Msg("vouchers generated")

	return written, nil
}

// insertWithRetry inserts one voucher, regenerating the code on collision.
// Returns false without error when a concurrent generation call already
// created this customer's voucher.
func (s *voucherService) insertWithRetry(ctx context.Context, tx pgx.Tx, customerID, offerID uuid.UUID, expirationDate time.Time) (bool, error) {
	for attempt := 1; attempt <= s.maxCodeAttempts; attempt++ {
		voucherCode, err := s.generator.Generate()
		if err != nil {
			return false, fmt.Errorf("failed to generate voucher code: %w", err)
		}

		now := time.Now()
		voucher := &model.Voucher{
			ID:             uuid.New(),
			Code:           voucherCode,
			CustomerID:     customerID,
			SpecialOfferID: offerID,
			ExpirationDate: expirationDate,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		err = s.voucherRepo.Insert(ctx, tx, voucher)
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, model.ErrDuplicateCode):
			s.logger.Warn().
				Str("code", voucherCode).
				Int("attempt", attempt).
				Msg("voucher code collision, regenerating")
		case errors.Is(err, model.ErrDuplicateVoucher):
			// Lost the race against a concurrent generation call.
			return false, nil
		default:
			return false, err
		}
	}

	return false, fmt.Errorf("exhausted %d code generation attempts", s.maxCodeAttempts)
}

// Check validates a voucher without mutating it.
func (s *voucherService) Check(ctx context.Context, voucherCode, email string) (*model.RedemptionResult, error) {
	return s.evaluate(ctx, voucherCode, email, false)
}

// Redeem validates a voucher and marks it used.
func (s *voucherService) Redeem(ctx context.Context, voucherCode, email string) (*model.RedemptionResult, error) {
	return s.evaluate(ctx, voucherCode, email, true)
}

// evaluate runs the shared validate/redeem state machine. The first pass
// is a cheap read outside any transaction; only a valid voucher on the
// redeem path opens a transaction, re-reads the row under lock and flips
// used_at. Two concurrent redeemers of the same voucher serialize on the
// row lock, so at most one ever sees the unused row.
func (s *voucherService) evaluate(ctx context.Context, voucherCode, email string, shouldRedeem bool) (result *model.RedemptionResult, err error) {
	start := time.Now()
	defer func() {
		outcome := "error"
		if result != nil {
			if result.Accepted {
				outcome = "accepted"
			} else {
				outcome = "rejected"
			}
		}
		metrics.RecordRedemption(outcome, time.Since(start).Seconds())
	}()

	customer, err := s.customerRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}
	if customer == nil {
		return rejected(msgCustomerNotFound), nil
	}

	voucher, err := s.voucherRepo.FindByCodeAndCustomer(ctx, voucherCode, customer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up voucher: %w", err)
	}
	if voucher == nil {
		return rejected(msgVoucherNotFound), nil
	}

	if voucher.Used() {
		return rejected(msgAlreadyUsed), nil
	}

	if voucher.ExpiredAt(time.Now()) {
		return rejected(msgExpired), nil
	}

	offer, err := s.offerRepo.FindByID(ctx, voucher.SpecialOfferID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up special offer: %w", err)
	}
	if offer == nil {
		// The foreign key makes this unreachable short of manual surgery.
		return nil, fmt.Errorf("special offer %s missing for voucher %s", voucher.SpecialOfferID, voucher.ID)
	}

	if !shouldRedeem {
		return accepted(offer.DiscountPercentage, msgValid), nil
	}

	return s.redeem(ctx, voucherCode, customer.ID, offer.DiscountPercentage)
}

// redeem performs the transactional compare-and-set on used_at. Only
// reached for a voucher that looked valid in the pre-check.
func (s *voucherService) redeem(ctx context.Context, voucherCode string, customerID uuid.UUID, discount int) (*model.RedemptionResult, error) {
	tx, err := s.voucherRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to redeem voucher: %w", err)
	}

	// Rollback after a successful commit returns pgx.ErrTxClosed.
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
	}()

	fresh, err := s.voucherRepo.LockUnused(ctx, tx, voucherCode, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to redeem voucher: %w", err)
	}
	if fresh == nil {
		// A concurrent caller redeemed it between the pre-check and here.
		s.logger.Info().Str("code", voucherCode).Msg("voucher redeemed concurrently")
		return rejected(msgAlreadyRedeemed), nil
	}

	now := time.Now()
	if fresh.ExpiredAt(now) {
		return rejected(msgExpired), nil
	}

	if err := s.voucherRepo.MarkUsed(ctx, tx, fresh.ID, now); err != nil {
		return nil, fmt.Errorf("failed to redeem voucher: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("code", voucherCode).Msg("failed to commit redemption")
		return nil, fmt.Errorf("failed to redeem voucher: %w", err)
	}

	s.logger.Info().
		Str("code", voucherCode).
		Str("customer_id", customerID.String()).
		Msg("voucher redeemed")

	return accepted(discount, msgRedeemed), nil
}

// ListActive returns the customer's unused, unexpired vouchers.
func (s *voucherService) ListActive(ctx context.Context, email string) ([]model.CustomerVoucher, error) {
	customer, err := s.customerRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}
	if customer == nil {
		return nil, model.ErrCustomerNotFound
	}

	vouchers, err := s.voucherRepo.ListActiveByCustomer(ctx, customer.ID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to list customer vouchers: %w", err)
	}

	return vouchers, nil
}

// FindAll retrieves all vouchers, newest first.
func (s *voucherService) FindAll(ctx context.Context) ([]model.Voucher, error) {
	vouchers, err := s.voucherRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list vouchers: %w", err)
	}
	return vouchers, nil
}

// FindByID retrieves a single voucher by ID.
func (s *voucherService) FindByID(ctx context.Context, id uuid.UUID) (*model.Voucher, error) {
	voucher, err := s.voucherRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get voucher: %w", err)
	}
	return voucher, nil
}

// Remove deletes a voucher.
func (s *voucherService) Remove(ctx context.Context, id uuid.UUID) (bool, error) {
	deleted, err := s.voucherRepo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete voucher: %w", err)
	}

	if deleted {
		s.logger.Info().Str("voucher_id", id.String()).Msg("voucher deleted")
	}

	return deleted, nil
}

func rejected(message string) *model.RedemptionResult {
	return &model.RedemptionResult{
		Accepted: false,
		Message:  message,
	}
}

func accepted(discount int, message string) *model.RedemptionResult {
	return &model.RedemptionResult{
		Accepted:           true,
		DiscountPercentage: &discount,
		Message:            message,
	}
}
