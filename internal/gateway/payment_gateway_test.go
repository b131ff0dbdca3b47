package gateway

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockGatewayIsDeterministicOverOrderID(t *testing.T) {
	gw := NewMockPaymentGateway()
	ctx := context.Background()
	orderID := uuid.New()

	req := CreateIntentRequest{
		OrderID:  orderID,
		UserID:   uuid.New(),
		Amount:   17500,
		Currency: "inr",
	}

	first, err := gw.CreateIntent(ctx, req)
	require.NoError(t, err)
	second, err := gw.CreateIntent(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "pi_mock_"+orderID.String(), first.ID)
	assert.Equal(t, "mock_secret_"+orderID.String(), first.ClientSecret)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ClientSecret, second.ClientSecret)
	assert.Equal(t, int64(17500), first.Amount)
}

func TestMockGatewayAlwaysSucceeds(t *testing.T) {
	gw := NewMockPaymentGateway()

	intent, err := gw.RetrieveIntent(context.Background(), "pi_mock_whatever")
	require.NoError(t, err)
	assert.Equal(t, IntentStatusSucceeded, intent.Status)
	assert.Equal(t, "mock_card", intent.PaymentMethod())
}

func TestIntentPaymentMethodFallsBackToCard(t *testing.T) {
	intent := &Intent{ID: "pi_123"}
	assert.Equal(t, "card", intent.PaymentMethod())

	intent.PaymentMethodTypes = []string{"upi", "card"}
	assert.Equal(t, "upi", intent.PaymentMethod())
}
