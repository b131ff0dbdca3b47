package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/koshishthapa517-crypto/shop-nexus/internal/domain"
	"github.com/koshishthapa517-crypto/shop-nexus/internal/httpx"
	"github.com/koshishthapa517-crypto/shop-nexus/internal/service"
)

type ProductHandler struct {
	catalog  *service.CatalogService
	validate *validator.Validate
}

func NewProductHandler(catalog *service.CatalogService, validate *validator.Validate) *ProductHandler {
	return &ProductHandler{catalog: catalog, validate: validate}
}

func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	products, err := h.catalog.ListProducts(c.Context())
	if err != nil {
		return httpx.DomainErrorResponse(c, err)
	}
	return httpx.SuccessResponse(c, "Products retrieved successfully", products)
}

func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return httpx.BadRequestResponse(c, "Invalid product ID", map[string]interface{}{
			"product_id": c.Params("id"),
		})
	}

	product, err := h.catalog.GetProduct(c.Context(), productID)
	if err != nil {
		return httpx.DomainErrorResponse(c, err)
	}
	return httpx.SuccessResponse(c, "Product retrieved successfully", product)
}

// CheckStock answers availability for a requested quantity without exposing
// the exact stock level. Unknown products report unavailable.
func (h *ProductHandler) CheckStock(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return httpx.BadRequestResponse(c, "Invalid product ID", nil)
	}

	quantity := c.QueryInt("quantity", 1)
	if quantity < 1 {
		return httpx.BadRequestResponse(c, "Quantity must be a positive integer", nil)
	}

	available, err := h.catalog.CheckStock(c.Context(), productID, quantity)
	if err != nil {
		return httpx.DomainErrorResponse(c, err)
	}
	return httpx.SuccessResponse(c, "Stock checked", fiber.Map{
		"product_id": productID,
		"quantity":   quantity,
		"available":  available,
	})
}

func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var request CreateProductRequest
	if !bindAndValidate(c, h.validate, &request) {
		return nil
	}

	product, err := h.catalog.CreateProduct(c.Context(), &domain.Product{
		Name:        request.Name,
		Description: request.Description,
		Price:       request.Price,
		Stock:       request.Stock,
		Image:       request.Image,
	})
	if err != nil {
		return httpx.DomainErrorResponse(c, err)
	}
	return httpx.CreatedResponse(c, "Product created successfully", product)
}

func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return httpx.BadRequestResponse(c, "Invalid product ID", nil)
	}

	var request UpdateProductRequest
	if !bindAndValidate(c, h.validate, &request) {
		return nil
	}

	product, err := h.catalog.UpdateProduct(c.Context(), productID, request.ToPatch())
	if err != nil {
		return httpx.DomainErrorResponse(c, err)
	}
	return httpx.SuccessResponse(c, "Product updated successfully", product)
}

func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return httpx.BadRequestResponse(c, "Invalid product ID", nil)
	}

	if err := h.catalog.DeleteProduct(c.Context(), productID); err != nil {
		return httpx.DomainErrorResponse(c, err)
	}
	return httpx.SuccessResponse(c, "Product deleted successfully", nil)
}
