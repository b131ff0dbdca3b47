package service

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/koshishthapa517-crypto/shop-nexus/internal/domain"
	"github.com/koshishthapa517-crypto/shop-nexus/internal/events"
)

type OrderService struct {
	orders    OrderStore
	publisher EventPublisher
}

// NewOrderService wires the order transaction engine. publisher may be nil
// when no broker is configured.
func NewOrderService(orders OrderStore, publisher EventPublisher) *OrderService {
	return &OrderService{orders: orders, publisher: publisher}
}

// CreateOrder turns the requested lines into an immutable order. The store
// executes placement atomically; on success the order comes back fully
// materialized with items and product detail.
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, lines []domain.OrderLine) (*domain.Order, error) {
	if len(lines) == 0 {
		return nil, domain.ValidationError("order must contain at least one item")
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, domain.ValidationError("quantity must be a positive integer")
		}
	}

	created, err := s.orders.CreateOrder(ctx, userID, lines)
	if err != nil {
		return nil, err
	}

	log.Printf("Order created: OrderID=%s UserID=%s Total=%s",
		created.ID, userID, created.TotalAmount.StringFixed(2))

	order, err := s.orders.GetByID(ctx, created.ID)
	if err != nil {
		return nil, err
	}

	s.publish(events.ShopEvent{
		OrderID:   order.ID,
		UserID:    order.UserID,
		EventType: events.OrderPlacedEvent,
		Payload: events.OrderPlacedPayload{
			TotalAmount: order.TotalAmount,
			ItemCount:   len(order.Items),
		},
	})

	return order, nil
}

func (s *OrderService) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	return s.orders.GetByID(ctx, orderID)
}

func (s *OrderService) GetUserOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// GetAllOrders is admin-only; the access gate enforces that upstream.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.orders.ListAll(ctx)
}

// UpdateOrderStatus moves an order along the fulfilment lifecycle. Illegal
// transitions are rejected rather than overwritten.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	if !domain.ValidOrderStatus(status) {
		return nil, domain.ValidationError("unknown order status %q", status)
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransition(order.Status, status) {
		return nil, domain.ConflictError("illegal status transition %s -> %s", order.Status, status)
	}

	if err := s.orders.UpdateStatus(ctx, orderID, order.Status, status); err != nil {
		return nil, err
	}

	log.Printf("Order status updated: OrderID=%s %s -> %s", orderID, order.Status, status)
	return s.orders.GetByID(ctx, orderID)
}

func (s *OrderService) publish(event events.ShopEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishShopEvent(event); err != nil {
		// Events are a courtesy to external consumers, never part of the
		// transaction contract.
		log.Printf("Event publish failed (%s): %v", event.EventType, err)
	}
}
