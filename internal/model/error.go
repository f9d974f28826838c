package model

import "errors"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeOfferNotFound     = "OFFER_NOT_FOUND"
	ErrCodeCustomerNotFound  = "CUSTOMER_NOT_FOUND"
	ErrCodeVoucherNotFound   = "VOUCHER_NOT_FOUND"
	ErrCodeInvalidExpiration = "INVALID_EXPIRATION"
	ErrCodeNoCustomers       = "NO_CUSTOMERS"
	ErrCodeNothingToGenerate = "NOTHING_TO_GENERATE"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// DomainError is a business-rule failure with a stable code. It covers the
// not-found, invalid-argument and invalid-state cases; storage failures are
// plain wrapped errors and surface to callers as INTERNAL_ERROR.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrOfferNotFound       = NewDomainError(ErrCodeOfferNotFound, "Special offer not found")
	ErrCustomerNotFound    = NewDomainError(ErrCodeCustomerNotFound, "Customer not found")
	ErrVoucherNotFound     = NewDomainError(ErrCodeVoucherNotFound, "Voucher not found")
	ErrExpirationNotFuture = NewDomainError(ErrCodeInvalidExpiration, "Expiration date must be in the future")
	ErrNoCustomers         = NewDomainError(ErrCodeNoCustomers, "No customers found to generate vouchers")
	ErrNothingToGenerate   = NewDomainError(ErrCodeNothingToGenerate, "No new vouchers to generate")
)

// Sentinel errors returned by the voucher store on unique-constraint
// violations, so the issuer can tell a code collision (regenerate and
// retry that record) from a natural-key conflict (another issuance call
// already created this customer's voucher).
var (
	ErrDuplicateCode    = errors.New("voucher code already exists")
	ErrDuplicateVoucher = errors.New("customer already has a voucher for this offer")
)
