package integration

import (
	"context"
	"testing"
	"time"

	"voucher-pool/internal/model"
	"voucher-pool/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVoucher(code string, customerID, offerID uuid.UUID, expiration time.Time) *model.Voucher {
	now := time.Now()
	return &model.Voucher{
		ID:             uuid.New(),
		Code:           code,
		CustomerID:     customerID,
		SpecialOfferID: offerID,
		ExpirationDate: expiration,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// insertVoucher writes a voucher in its own transaction.
func insertVoucher(t *testing.T, repo repository.VoucherRepository, voucher *model.Voucher) {
	t.Helper()

	ctx := context.Background()
	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.Insert(ctx, tx, voucher))
	require.NoError(t, tx.Commit(ctx))
}

func TestVoucherRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	repo := repository.NewVoucherRepository(testDB.Pool, logger)

	ctx := context.Background()
	future := time.Now().Add(24 * time.Hour)

	t.Run("Insert and FindByCodeAndCustomer roundtrip", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		customerIDs := SeedCustomers(t, testDB.Pool, 1)
		offerID := SeedOffer(t, testDB.Pool, "Summer Sale", 25)

		voucher := newTestVoucher("VPROUNDTRP", customerIDs[0], offerID, future)
		insertVoucher(t, repo, voucher)

		got, err := repo.FindByCodeAndCustomer(ctx, "VPROUNDTRP", customerIDs[0])
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, voucher.ID, got.ID)
		assert.Equal(t, "VPROUNDTRP", got.Code)
		assert.Nil(t, got.UsedAt)
		assert.WithinDuration(t, future, got.ExpirationDate, time.Second)
	})

	t.Run("FindByCodeAndCustomer scopes to the owning customer", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		customerIDs := SeedCustomers(t, testDB.Pool, 2)
		offerID := SeedOffer(t, testDB.Pool, "Summer Sale", 25)

		insertVoucher(t, repo, newTestVoucher("VPOWNEDABC", customerIDs[0], offerID, future))

		got, err := repo.FindByCodeAndCustomer(ctx, "VPOWNEDABC", customerIDs[1])
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Insert rejects duplicate code without poisoning the transaction", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		customerIDs := SeedCustomers(t, testDB.Pool, 2)
		offerID := SeedOffer(t, testDB.Pool, "Summer Sale", 25)

		insertVoucher(t, repo, newTestVoucher("VPSAMECODE", customerIDs[0], offerID, future))

		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		err = repo.Insert(ctx, tx, newTestVoucher("VPSAMECODE", customerIDs[1], offerID, future))
		require.ErrorIs(t, err, model.ErrDuplicateCode)

		// The enclosing transaction survives the constraint failure.
		err = repo.Insert(ctx, tx, newTestVoucher("VPOTHERONE", customerIDs[1], offerID, future))
		require.NoError(t, err)
		require.NoError(t, tx.Commit(ctx))

		got, err := repo.FindByCodeAndCustomer(ctx, "VPOTHERONE", customerIDs[1])
		require.NoError(t, err)
		require.NotNil(t, got)
	})

	t.Run("Insert rejects second voucher for same customer and offer", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		customerIDs := SeedCustomers(t, testDB.Pool, 1)
		offerID := SeedOffer(t, testDB.Pool, "Summer Sale", 25)

		insertVoucher(t, repo, newTestVoucher("VPFIRSTONE", customerIDs[0], offerID, future))

		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		err = repo.Insert(ctx, tx, newTestVoucher("VPSECONDGO", customerIDs[0], offerID, future))
		require.ErrorIs(t, err, model.ErrDuplicateVoucher)
	})

	t.Run("Same customer can hold vouchers for different offers", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		customerIDs := SeedCustomers(t, testDB.Pool, 1)
		summerID := SeedOffer(t, testDB.Pool, "Summer Sale", 25)
		welcomeID := SeedOffer(t, testDB.Pool, "Welcome Offer", 10)

		insertVoucher(t, repo, newTestVoucher("VPSUMMERAA", customerIDs[0], summerID, future))
		insertVoucher(t, repo, newTestVoucher("VPWELCOMEA", customerIDs[0], welcomeID, future))

		vouchers, err := repo.ListActiveByCustomer(ctx, customerIDs[0], time.Now())
		require.NoError(t, err)
		assert.Len(t, vouchers, 2)
	})

	t.Run("LockUnused and MarkUsed flip the voucher once", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		customerIDs := SeedCustomers(t, testDB.Pool, 1)
		offerID := SeedOffer(t, testDB.Pool, "Summer Sale", 25)

		insertVoucher(t, repo, newTestVoucher("VPFLIPONCE", customerIDs[0], offerID, future))

		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)

		locked, err := repo.LockUnused(ctx, tx, "VPFLIPONCE", customerIDs[0])
		require.NoError(t, err)
		require.NotNil(t, locked)

		usedAt := time.Now()
		require.NoError(t, repo.MarkUsed(ctx, tx, locked.ID, usedAt))
		require.NoError(t, tx.Commit(ctx))

		// The used voucher no longer matches the unused filter.
		tx2, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		defer tx2.Rollback(ctx)

		locked, err = repo.LockUnused(ctx, tx2, "VPFLIPONCE", customerIDs[0])
		require.NoError(t, err)
		assert.Nil(t, locked)

		got, err := repo.FindByCodeAndCustomer(ctx, "VPFLIPONCE", customerIDs[0])
		require.NoError(t, err)
		require.NotNil(t, got)
		require.NotNil(t, got.UsedAt)
		assert.WithinDuration(t, usedAt, *got.UsedAt, time.Second)
	})

	t.Run("CustomerIDsWithVoucher returns holders only", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		customerIDs := SeedCustomers(t, testDB.Pool, 3)
		offerID := SeedOffer(t, testDB.Pool, "Summer Sale", 25)
		otherOfferID := SeedOffer(t, testDB.Pool, "Welcome Offer", 10)

		insertVoucher(t, repo, newTestVoucher("VPHOLDERAA", customerIDs[0], offerID, future))
		insertVoucher(t, repo, newTestVoucher("VPHOLDERBB", customerIDs[1], otherOfferID, future))

		existing, err := repo.CustomerIDsWithVoucher(ctx, offerID, customerIDs)
		require.NoError(t, err)
		assert.Len(t, existing, 1)
		assert.Contains(t, existing, customerIDs[0])
	})

	t.Run("ListActiveByCustomer excludes used and expired vouchers", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		customerIDs := SeedCustomers(t, testDB.Pool, 1)
		summerID := SeedOffer(t, testDB.Pool, "Summer Sale", 25)
		welcomeID := SeedOffer(t, testDB.Pool, "Welcome Offer", 10)
		bonusID := SeedOffer(t, testDB.Pool, "Bonus Offer", 5)

		active := newTestVoucher("VPACTIVEAA", customerIDs[0], summerID, future)
		expired := newTestVoucher("VPEXPIREDA", customerIDs[0], welcomeID, time.Now().Add(-time.Hour))
		used := newTestVoucher("VPUSEDUPAA", customerIDs[0], bonusID, future)
		usedAt := time.Now()
		used.UsedAt = &usedAt

		insertVoucher(t, repo, active)
		insertVoucher(t, repo, expired)
		insertVoucher(t, repo, used)

		vouchers, err := repo.ListActiveByCustomer(ctx, customerIDs[0], time.Now())
		require.NoError(t, err)
		require.Len(t, vouchers, 1)
		assert.Equal(t, "VPACTIVEAA", vouchers[0].Code)
		assert.Equal(t, "Summer Sale", vouchers[0].OfferName)
		assert.Equal(t, 25, vouchers[0].DiscountPercentage)
		assert.True(t, vouchers[0].IsValid)
	})

	t.Run("FindByID and Delete", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		customerIDs := SeedCustomers(t, testDB.Pool, 1)
		offerID := SeedOffer(t, testDB.Pool, "Summer Sale", 25)

		voucher := newTestVoucher("VPDELETEME", customerIDs[0], offerID, future)
		insertVoucher(t, repo, voucher)

		got, err := repo.FindByID(ctx, voucher.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, voucher.Code, got.Code)

		deleted, err := repo.Delete(ctx, voucher.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		got, err = repo.FindByID(ctx, voucher.ID)
		require.NoError(t, err)
		assert.Nil(t, got)

		deleted, err = repo.Delete(ctx, voucher.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}
