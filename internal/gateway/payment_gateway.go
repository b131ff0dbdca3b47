package gateway

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Intent statuses as reported by the payment provider. Only succeeded is a
// success; everything else, including transient states, counts as failure
// for a single reconciliation call.
const (
	IntentStatusSucceeded = "succeeded"
	IntentStatusFailed    = "failed"
)

// PaymentGateway is the external payment provider boundary.
type PaymentGateway interface {
	// CreateIntent registers a payment of amount, expressed in the smallest
	// currency unit, correlated to an order and user via metadata.
	CreateIntent(ctx context.Context, req CreateIntentRequest) (*Intent, error)
	// RetrieveIntent fetches the authoritative state of a payment intent.
	RetrieveIntent(ctx context.Context, intentID string) (*Intent, error)
}

type CreateIntentRequest struct {
	OrderID  uuid.UUID
	UserID   uuid.UUID
	Amount   int64
	Currency string
}

type Intent struct {
	ID                 string
	ClientSecret       string
	Status             string
	Amount             int64
	PaymentMethodTypes []string
}

// PaymentMethod picks the descriptor persisted on the order.
func (i *Intent) PaymentMethod() string {
	if len(i.PaymentMethodTypes) > 0 {
		return i.PaymentMethodTypes[0]
	}
	return "card"
}

// MockPaymentGateway treats every payment as succeeded and never talks to
// anything external. Identifiers are deterministic over the order id so a
// client can round-trip them without server-side state.
type MockPaymentGateway struct{}

func NewMockPaymentGateway() *MockPaymentGateway {
	return &MockPaymentGateway{}
}

func (m *MockPaymentGateway) CreateIntent(_ context.Context, req CreateIntentRequest) (*Intent, error) {
	return &Intent{
		ID:                 fmt.Sprintf("pi_mock_%s", req.OrderID),
		ClientSecret:       fmt.Sprintf("mock_secret_%s", req.OrderID),
		Status:             IntentStatusSucceeded,
		Amount:             req.Amount,
		PaymentMethodTypes: []string{"mock_card"},
	}, nil
}

func (m *MockPaymentGateway) RetrieveIntent(_ context.Context, intentID string) (*Intent, error) {
	return &Intent{
		ID:                 intentID,
		Status:             IntentStatusSucceeded,
		PaymentMethodTypes: []string{"mock_card"},
	}, nil
}
