package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/koshishthapa517-crypto/shop-nexus/internal/httpx"
	"github.com/koshishthapa517-crypto/shop-nexus/internal/storage"
)

type UploadHandler struct {
	images *storage.ImageStore
}

// NewUploadHandler serves the admin product-image upload. images may be nil
// when no bucket is configured.
func NewUploadHandler(images *storage.ImageStore) *UploadHandler {
	return &UploadHandler{images: images}
}

func (h *UploadHandler) UploadImage(c *fiber.Ctx) error {
	if h.images == nil {
		return httpx.BadRequestResponse(c, "Image storage not configured", nil)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return httpx.BadRequestResponse(c, "No file provided", nil)
	}
	if fileHeader.Size > storage.MaxImageSize {
		return httpx.BadRequestResponse(c, "File size exceeds 5MB limit", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return httpx.InternalServerErrorResponse(c, "Failed to read upload", nil)
	}
	defer file.Close()

	url, err := h.images.Upload(
		c.Context(), fileHeader.Header.Get(fiber.HeaderContentType), fileHeader.Size, file,
	)
	if err != nil {
		log.Printf("Image upload error: %v", err)
		return httpx.BadRequestResponse(c, "Image upload failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return httpx.CreatedResponse(c, "Image uploaded", fiber.Map{"url": url})
}
