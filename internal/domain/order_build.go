package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLine is a requested (product, quantity) pair before any validation.
type OrderLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// BuildOrder validates the requested lines against the given product rows and
// materializes an unpersisted order with snapshotted prices and an exact
// decimal total. It performs no I/O; callers supply products read under
// whatever isolation the store provides. All-or-nothing: the first violation
// aborts the whole build.
func BuildOrder(userID uuid.UUID, lines []OrderLine, products map[uuid.UUID]*Product) (*Order, error) {
	if len(lines) == 0 {
		return nil, ValidationError("order must contain at least one item")
	}

	order := &Order{
		ID:            uuid.New(),
		UserID:        userID,
		Status:        OrderStatusPending,
		PaymentStatus: PaymentStatusUnpaid,
		CreatedAt:     time.Now().UTC(),
		Items:         make([]OrderItem, 0, len(lines)),
	}

	total := decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, ValidationError("quantity must be positive for product %s", line.ProductID)
		}

		product, ok := products[line.ProductID]
		if !ok || product == nil {
			return nil, NotFoundError("product %s not found", line.ProductID)
		}
		if !product.HasStock(line.Quantity) {
			return nil, InsufficientStockError("insufficient stock for product %s", product.Name)
		}

		item := OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     product.Price,
		}
		order.Items = append(order.Items, item)
		total = total.Add(item.Subtotal())
	}

	order.TotalAmount = total
	return order, nil
}
