package model

import (
	"time"

	"github.com/google/uuid"
)

// Customer is owned by an external system; this service only reads it.
type Customer struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
