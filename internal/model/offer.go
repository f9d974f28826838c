package model

import (
	"time"

	"github.com/google/uuid"
)

// SpecialOffer is a promotional offer vouchers are issued against.
// Owned externally; read-only here.
type SpecialOffer struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	DiscountPercentage int       `json:"discountPercentage"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}
