package service

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/koshishthapa517-crypto/shop-nexus/internal/domain"
	"github.com/koshishthapa517-crypto/shop-nexus/internal/events"
	"github.com/koshishthapa517-crypto/shop-nexus/internal/gateway"
)

// PaymentService reconciles external payment outcomes with order state. The
// gateway implementation, chosen at wiring time by configuration, decides
// whether payments are mocked or verified against the live provider.
type PaymentService struct {
	orders    OrderStore
	gateway   gateway.PaymentGateway
	publisher EventPublisher
	currency  string
}

func NewPaymentService(orders OrderStore, gw gateway.PaymentGateway, publisher EventPublisher, currency string) *PaymentService {
	return &PaymentService{
		orders:    orders,
		gateway:   gw,
		publisher: publisher,
		currency:  currency,
	}
}

type PaymentIntentResult struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
}

// CreatePaymentIntent registers a payment for the order's total with the
// gateway. The amount comes from the order row, never from the client.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, userID, orderID uuid.UUID) (*PaymentIntentResult, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ForbiddenError("order %s does not belong to the requesting user", orderID)
	}

	intent, err := s.gateway.CreateIntent(ctx, gateway.CreateIntentRequest{
		OrderID:  order.ID,
		UserID:   order.UserID,
		Amount:   smallestCurrencyUnit(order),
		Currency: s.currency,
	})
	if err != nil {
		return nil, domain.WrapError(domain.KindPaymentFailed, "payment intent creation failed", err)
	}

	return &PaymentIntentResult{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	}, nil
}

// ConfirmPayment asks the gateway for the authoritative intent status and
// transitions the order accordingly. Only an explicit succeeded status is a
// success; transient states count as failure and the caller may retry.
// Repeating a successful confirmation is safe: an already-paid order
// short-circuits without touching anything.
func (s *PaymentService) ConfirmPayment(ctx context.Context, userID, orderID uuid.UUID, paymentIntentID string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ForbiddenError("order %s does not belong to the requesting user", orderID)
	}

	if order.PaymentStatus == domain.PaymentStatusPaid {
		return order, nil
	}

	intent, err := s.gateway.RetrieveIntent(ctx, paymentIntentID)
	if err != nil {
		return nil, domain.WrapError(domain.KindPaymentFailed, "payment verification failed", err)
	}

	if intent.Status != gateway.IntentStatusSucceeded {
		return nil, s.recordFailure(ctx, order, paymentIntentID)
	}

	return s.recordSuccess(ctx, orderID, paymentIntentID, intent.PaymentMethod())
}

// ApplyIntentOutcome applies a webhook-delivered outcome under the same
// transition contract as ConfirmPayment, keyed by the order id carried in
// the intent metadata.
func (s *PaymentService) ApplyIntentOutcome(ctx context.Context, orderID uuid.UUID, intent *gateway.Intent, succeeded bool) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if succeeded {
		if order.PaymentStatus == domain.PaymentStatusPaid {
			return nil
		}
		_, err := s.recordSuccess(ctx, orderID, intent.ID, intent.PaymentMethod())
		return err
	}

	// Paid is terminal. A failure notice arriving after success, e.g. an
	// out-of-order or retried delivery, must not downgrade the order.
	if order.PaymentStatus == domain.PaymentStatusPaid {
		log.Printf("Ignoring stale payment failure for paid order %s (intent %s)", orderID, intent.ID)
		return nil
	}

	if err := s.orders.MarkPaymentFailed(ctx, orderID); err != nil {
		return err
	}
	s.publish(order, events.PaymentFailedEvent, intent.ID, "")
	return nil
}

func (s *PaymentService) recordSuccess(ctx context.Context, orderID uuid.UUID, paymentIntentID, paymentMethod string) (*domain.Order, error) {
	if err := s.orders.MarkPaid(ctx, orderID, paymentIntentID, paymentMethod); err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	log.Printf("Payment captured: OrderID=%s IntentID=%s Method=%s", orderID, paymentIntentID, paymentMethod)
	s.publish(order, events.PaymentCapturedEvent, paymentIntentID, paymentMethod)
	return order, nil
}

func (s *PaymentService) recordFailure(ctx context.Context, order *domain.Order, paymentIntentID string) error {
	if err := s.orders.MarkPaymentFailed(ctx, order.ID); err != nil {
		return err
	}
	log.Printf("Payment failed: OrderID=%s IntentID=%s", order.ID, paymentIntentID)
	s.publish(order, events.PaymentFailedEvent, paymentIntentID, "")
	return domain.PaymentFailedError("payment was not successful for order %s", order.ID)
}

func (s *PaymentService) publish(order *domain.Order, eventType events.EventType, intentID, method string) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishShopEvent(events.ShopEvent{
		OrderID:   order.ID,
		UserID:    order.UserID,
		EventType: eventType,
		Payload: events.PaymentPayload{
			PaymentIntentID: intentID,
			PaymentMethod:   method,
		},
	})
	if err != nil {
		log.Printf("Event publish failed (%s): %v", eventType, err)
	}
}

// smallestCurrencyUnit converts the decimal total into the gateway's integer
// amount (e.g. 175.00 -> 17500).
func smallestCurrencyUnit(order *domain.Order) int64 {
	return order.TotalAmount.Shift(2).Round(0).IntPart()
}
