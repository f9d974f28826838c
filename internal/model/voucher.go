package model

import (
	"time"

	"github.com/google/uuid"
)

// Voucher is a single-use discount code tied to one customer and one
// special offer. At most one voucher exists per (customer, offer) pair,
// and UsedAt moves from nil to a timestamp exactly once.
type Voucher struct {
	ID             uuid.UUID  `json:"id"`
	Code           string     `json:"code"`
	CustomerID     uuid.UUID  `json:"customerId"`
	SpecialOfferID uuid.UUID  `json:"specialOfferId"`
	ExpirationDate time.Time  `json:"expirationDate"`
	UsedAt         *time.Time `json:"usedAt"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Used reports whether the voucher has been redeemed.
func (v *Voucher) Used() bool {
	return v.UsedAt != nil
}

// ExpiredAt reports whether the voucher's expiration date has passed at
// the given instant.
func (v *Voucher) ExpiredAt(now time.Time) bool {
	return now.After(v.ExpirationDate)
}

// CustomerVoucher is the read-only projection returned by the customer
// voucher listing: one row per active (unused, unexpired) voucher with
// its offer details joined in.
type CustomerVoucher struct {
	Code               string    `json:"code"`
	OfferName          string    `json:"specialOfferName"`
	DiscountPercentage int       `json:"discountPercentage"`
	ExpirationDate     time.Time `json:"expirationDate"`
	IsValid            bool      `json:"isValid"`
}

// RedemptionResult is the outcome of a validate or redeem call. Rejections
// (unknown code, already used, expired) are normal results, not errors.
type RedemptionResult struct {
	Accepted           bool   `json:"accepted"`
	DiscountPercentage *int   `json:"discountPercentage,omitempty"`
	Message            string `json:"message"`
}

// GenerateVouchersRequest is the payload for bulk voucher issuance.
type GenerateVouchersRequest struct {
	SpecialOfferID string `json:"specialOfferId"`
	ExpirationDate string `json:"expirationDate"`
}

// GenerateVouchersResponse reports how many vouchers a generation call wrote.
type GenerateVouchersResponse struct {
	Generated int `json:"generated"`
}

// VoucherCheckRequest is the payload for validate and redeem calls.
type VoucherCheckRequest struct {
	Code  string `json:"code"`
	Email string `json:"email"`
}
