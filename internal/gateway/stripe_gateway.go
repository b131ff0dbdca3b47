package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

// StripeGateway is the live payment provider.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api, webhookSecret: webhookSecret}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, req CreateIntentRequest) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("orderId", req.OrderID.String())
	params.AddMetadata("userId", req.UserID.String())

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create intent error: %w", err)
	}
	return intentFromStripe(pi), nil
}

func (g *StripeGateway) RetrieveIntent(ctx context.Context, intentID string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.Get(intentID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe retrieve intent error: %w", err)
	}
	return intentFromStripe(pi), nil
}

// WebhookEvent is a provider notification already verified against the
// signing secret.
type WebhookEvent struct {
	Type   string
	Intent *Intent
	// OrderID comes from the intent metadata written at creation time.
	OrderID string
}

const (
	WebhookIntentSucceeded = "payment_intent.succeeded"
	WebhookIntentFailed    = "payment_intent.payment_failed"
)

// ParseWebhook verifies the signature on a raw webhook delivery and extracts
// the payment intent events this system reacts to. Other event types come
// back with a nil Intent.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	out := &WebhookEvent{Type: string(event.Type)}
	switch event.Type {
	case WebhookIntentSucceeded, WebhookIntentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("webhook payload decode error: %w", err)
		}
		out.Intent = intentFromStripe(&pi)
		out.OrderID = pi.Metadata["orderId"]
	}
	return out, nil
}

func intentFromStripe(pi *stripe.PaymentIntent) *Intent {
	types := make([]string, len(pi.PaymentMethodTypes))
	copy(types, pi.PaymentMethodTypes)
	return &Intent{
		ID:                 pi.ID,
		ClientSecret:       pi.ClientSecret,
		Status:             string(pi.Status),
		Amount:             pi.Amount,
		PaymentMethodTypes: types,
	}
}
