package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/koshishthapa517-crypto/shop-nexus/internal/domain"
	"github.com/koshishthapa517-crypto/shop-nexus/internal/httpx"
	"github.com/koshishthapa517-crypto/shop-nexus/internal/validation"
)

type CreateProductRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	// No required tag: 0.00 is a legal price and decimal zero would trip it.
	// The catalog service rejects negative prices.
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock" validate:"min=0"`
	Image string          `json:"image" validate:"omitempty,url"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
	Image       *string          `json:"image,omitempty" validate:"omitempty,url"`
}

func (r UpdateProductRequest) ToPatch() domain.ProductPatch {
	return domain.ProductPatch{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		Image:       r.Image,
	}
}

type AddToCartRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type MergeGuestCartRequest struct {
	Items []GuestCartItemRequest `json:"items" validate:"required"`
}

// GuestCartItemRequest carries no validate tags on purpose: invalid entries
// are skipped during the merge, never rejected.
type GuestCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

func (r MergeGuestCartRequest) ToGuestItems() []domain.GuestCartItem {
	items := make([]domain.GuestCartItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = domain.GuestCartItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}
	return items
}

type CreateOrderRequest struct {
	Items []OrderLineRequest `json:"items" validate:"required,min=1,dive"`
}

type OrderLineRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

func (r CreateOrderRequest) ToOrderLines() []domain.OrderLine {
	lines := make([]domain.OrderLine, len(r.Items))
	for i, item := range r.Items {
		lines[i] = domain.OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}
	return lines
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type CreatePaymentIntentRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
}

type ConfirmPaymentRequest struct {
	OrderID         uuid.UUID `json:"order_id" validate:"required"`
	PaymentIntentID string    `json:"payment_intent_id" validate:"required"`
}

// bindAndValidate parses the JSON body into out and validates it. It reports
// whether the request was accepted; on false the 400 response has already
// been written.
func bindAndValidate(c *fiber.Ctx, v *validator.Validate, out interface{}) bool {
	if err := c.BodyParser(out); err != nil {
		_ = httpx.BadRequestResponse(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
		return false
	}
	if err := v.Struct(out); err != nil {
		_ = httpx.BadRequestResponse(c, "Invalid request data", validation.ErrorsToMap(err))
		return false
	}
	return true
}
