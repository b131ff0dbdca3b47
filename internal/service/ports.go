package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/koshishthapa517-crypto/shop-nexus/internal/domain"
	"github.com/koshishthapa517-crypto/shop-nexus/internal/events"
)

// Store ports consumed by the services. The repository package implements
// them over PostgreSQL; tests substitute in-memory fakes.

type ProductStore interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, productID uuid.UUID) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, productID uuid.UUID) error
}

type CartStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error)
	GetByIDForUser(ctx context.Context, itemID, userID uuid.UUID) (*domain.CartItem, error)
	GetByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*domain.CartItem, error)
	Insert(ctx context.Context, item *domain.CartItem) error
	UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteForUser(ctx context.Context, itemID, userID uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type OrderStore interface {
	// CreateOrder runs the whole placement as one atomic unit against the
	// backing store.
	CreateOrder(ctx context.Context, userID uuid.UUID, lines []domain.OrderLine) (*domain.Order, error)
	GetByID(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	ListAll(ctx context.Context) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to domain.OrderStatus) error
	MarkPaid(ctx context.Context, orderID uuid.UUID, paymentIntentID, paymentMethod string) error
	MarkPaymentFailed(ctx context.Context, orderID uuid.UUID) error
}

// EventPublisher pushes best-effort notifications to external consumers.
type EventPublisher interface {
	PublishShopEvent(event events.ShopEvent) error
}
