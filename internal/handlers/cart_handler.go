package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/koshishthapa517-crypto/shop-nexus/internal/auth"
	"github.com/koshishthapa517-crypto/shop-nexus/internal/httpx"
	"github.com/koshishthapa517-crypto/shop-nexus/internal/service"
)

type CartHandler struct {
	carts    *service.CartService
	validate *validator.Validate
}

func NewCartHandler(carts *service.CartService, validate *validator.Validate) *CartHandler {
	return &CartHandler{carts: carts, validate: validate}
}

func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	identity := auth.IdentityFrom(c)

	items, err := h.carts.GetCart(c.Context(), identity.UserID)
	if err != nil {
		return httpx.DomainErrorResponse(c, err)
	}
	return httpx.SuccessResponse(c, "Cart retrieved successfully", items)
}

func (h *CartHandler) AddToCart(c *fiber.Ctx) error {
	identity := auth.IdentityFrom(c)

	var request AddToCartRequest
	if !bindAndValidate(c, h.validate, &request) {
		return nil
	}

	item, err := h.carts.AddToCart(c.Context(), identity.UserID, request.ProductID, request.Quantity)
	if err != nil {
		return httpx.DomainErrorResponse(c, err)
	}
	return httpx.CreatedResponse(c, "Item added to cart", item)
}

func (h *CartHandler) UpdateCartItem(c *fiber.Ctx) error {
	identity := auth.IdentityFrom(c)

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return httpx.BadRequestResponse(c, "Invalid cart item ID", nil)
	}

	var request UpdateCartItemRequest
	if !bindAndValidate(c, h.validate, &request) {
		return nil
	}

	item, err := h.carts.UpdateCartItem(c.Context(), identity.UserID, itemID, request.Quantity)
	if err != nil {
		return httpx.DomainErrorResponse(c, err)
	}
	return httpx.SuccessResponse(c, "Cart item updated", item)
}

func (h *CartHandler) RemoveFromCart(c *fiber.Ctx) error {
	identity := auth.IdentityFrom(c)

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return httpx.BadRequestResponse(c, "Invalid cart item ID", nil)
	}

	if err := h.carts.RemoveFromCart(c.Context(), identity.UserID, itemID); err != nil {
		return httpx.DomainErrorResponse(c, err)
	}
	return httpx.SuccessResponse(c, "Item removed from cart", nil)
}

// MergeGuestCart replays the client-held guest cart into the server cart
// right after authentication. Items that fail individually are skipped; the
// call as a whole always succeeds.
func (h *CartHandler) MergeGuestCart(c *fiber.Ctx) error {
	identity := auth.IdentityFrom(c)

	var request MergeGuestCartRequest
	if !bindAndValidate(c, h.validate, &request) {
		return nil
	}

	merged, err := h.carts.MergeGuestCart(c.Context(), identity.UserID, request.ToGuestItems())
	if err != nil {
		return httpx.DomainErrorResponse(c, err)
	}

	return httpx.SuccessResponse(c, "Cart merged successfully", fiber.Map{
		"merged_count": len(merged),
		"items":        merged,
	})
}
