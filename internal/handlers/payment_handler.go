package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/koshishthapa517-crypto/shop-nexus/internal/auth"
	"github.com/koshishthapa517-crypto/shop-nexus/internal/gateway"
	"github.com/koshishthapa517-crypto/shop-nexus/internal/httpx"
	"github.com/koshishthapa517-crypto/shop-nexus/internal/service"
)

type PaymentHandler struct {
	payments *service.PaymentService
	stripe   *gateway.StripeGateway
	validate *validator.Validate
}

// NewPaymentHandler wires the payment endpoints. stripe may be nil in mock
// mode; the webhook endpoint then rejects deliveries.
func NewPaymentHandler(payments *service.PaymentService, stripe *gateway.StripeGateway, validate *validator.Validate) *PaymentHandler {
	return &PaymentHandler{payments: payments, stripe: stripe, validate: validate}
}

func (h *PaymentHandler) CreatePaymentIntent(c *fiber.Ctx) error {
	identity := auth.IdentityFrom(c)

	var request CreatePaymentIntentRequest
	if !bindAndValidate(c, h.validate, &request) {
		return nil
	}

	result, err := h.payments.CreatePaymentIntent(c.Context(), identity.UserID, request.OrderID)
	if err != nil {
		return httpx.DomainErrorResponse(c, err)
	}
	return httpx.SuccessResponse(c, "Payment intent created", result)
}

func (h *PaymentHandler) ConfirmPayment(c *fiber.Ctx) error {
	identity := auth.IdentityFrom(c)

	var request ConfirmPaymentRequest
	if !bindAndValidate(c, h.validate, &request) {
		return nil
	}

	order, err := h.payments.ConfirmPayment(
		c.Context(), identity.UserID, request.OrderID, request.PaymentIntentID,
	)
	if err != nil {
		return httpx.DomainErrorResponse(c, err)
	}
	return httpx.SuccessResponse(c, "Payment confirmed", order)
}

// Webhook receives asynchronous payment outcomes from the provider,
// authenticated by the signing secret. It applies the same status-transition
// contract as ConfirmPayment.
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	if h.stripe == nil {
		return httpx.BadRequestResponse(c, "Webhook not configured", nil)
	}

	event, err := h.stripe.ParseWebhook(c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		log.Printf("Webhook rejected: %v", err)
		return httpx.BadRequestResponse(c, "Webhook signature verification failed", nil)
	}

	if event.Intent == nil {
		// Event type this system does not react to.
		return httpx.SuccessResponse(c, "Event ignored", nil)
	}

	orderID, err := uuid.Parse(event.OrderID)
	if err != nil {
		log.Printf("Webhook event %s without usable order metadata", event.Type)
		return httpx.SuccessResponse(c, "Event ignored", nil)
	}

	succeeded := event.Type == gateway.WebhookIntentSucceeded
	if err := h.payments.ApplyIntentOutcome(c.Context(), orderID, event.Intent, succeeded); err != nil {
		log.Printf("Webhook apply error for order %s: %v", orderID, err)
		return httpx.InternalServerErrorResponse(c, "Failed to apply payment outcome", nil)
	}
	return httpx.SuccessResponse(c, "Event processed", nil)
}
