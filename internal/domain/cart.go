package domain

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is a server-side cart row. One row per (user, product).
type CartItem struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	Product   *Product  `json:"product,omitempty"`
}

// GuestCartItem is the client-held counterpart of CartItem. It only exists
// server-side for the duration of a merge call.
type GuestCartItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}
