package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	OrderPlacedEvent     EventType = "order.placed"
	PaymentCapturedEvent EventType = "payment.captured"
	PaymentFailedEvent   EventType = "payment.failed"
)

// ShopEvent is the envelope published to the shop.events exchange for
// external consumers (notification, analytics). The transactional core never
// depends on these being delivered.
type ShopEvent struct {
	ID        uuid.UUID   `json:"id"`
	OrderID   uuid.UUID   `json:"order_id"`
	UserID    uuid.UUID   `json:"user_id"`
	EventType EventType   `json:"event_type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

type OrderPlacedPayload struct {
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count"`
}

type PaymentPayload struct {
	PaymentIntentID string `json:"payment_intent_id"`
	PaymentMethod   string `json:"payment_method,omitempty"`
}
