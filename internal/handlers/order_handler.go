package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/koshishthapa517-crypto/shop-nexus/internal/auth"
	"github.com/koshishthapa517-crypto/shop-nexus/internal/domain"
	"github.com/koshishthapa517-crypto/shop-nexus/internal/httpx"
	"github.com/koshishthapa517-crypto/shop-nexus/internal/service"
)

type OrderHandler struct {
	orders   *service.OrderService
	validate *validator.Validate
}

func NewOrderHandler(orders *service.OrderService, validate *validator.Validate) *OrderHandler {
	return &OrderHandler{orders: orders, validate: validate}
}

func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	identity := auth.IdentityFrom(c)

	var request CreateOrderRequest
	if !bindAndValidate(c, h.validate, &request) {
		return nil
	}

	order, err := h.orders.CreateOrder(c.Context(), identity.UserID, request.ToOrderLines())
	if err != nil {
		log.Printf("Order creation failed for user %s: %v", identity.UserID, err)
		return httpx.DomainErrorResponse(c, err)
	}
	return httpx.CreatedResponse(c, "Order created successfully", order)
}

// ListOrders returns the caller's orders, or every order when the caller is
// an admin.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	identity := auth.IdentityFrom(c)

	var (
		orders []*domain.Order
		err    error
	)
	if identity.IsAdmin() {
		orders, err = h.orders.GetAllOrders(c.Context())
	} else {
		orders, err = h.orders.GetUserOrders(c.Context(), identity.UserID)
	}
	if err != nil {
		return httpx.DomainErrorResponse(c, err)
	}
	return httpx.SuccessResponse(c, "Orders retrieved successfully", orders)
}

func (h *OrderHandler) GetOrderByID(c *fiber.Ctx) error {
	identity := auth.IdentityFrom(c)

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return httpx.BadRequestResponse(c, "Invalid order ID", map[string]interface{}{
			"order_id": c.Params("id"),
		})
	}

	order, err := h.orders.GetOrderByID(c.Context(), orderID)
	if err != nil {
		return httpx.DomainErrorResponse(c, err)
	}

	if order.UserID != identity.UserID && !identity.IsAdmin() {
		return httpx.ForbiddenResponse(c, "You do not have permission to access this order")
	}
	return httpx.SuccessResponse(c, "Order retrieved successfully", order)
}

// UpdateOrderStatus is admin-only (gated in routing). Transitions outside
// the legal lifecycle graph are rejected.
func (h *OrderHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return httpx.BadRequestResponse(c, "Invalid order ID", nil)
	}

	var request UpdateOrderStatusRequest
	if !bindAndValidate(c, h.validate, &request) {
		return nil
	}

	order, err := h.orders.UpdateOrderStatus(c.Context(), orderID, domain.OrderStatus(request.Status))
	if err != nil {
		return httpx.DomainErrorResponse(c, err)
	}
	return httpx.SuccessResponse(c, "Order status updated", order)
}
