package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/koshishthapa517-crypto/shop-nexus/internal/domain"
)

type CatalogService struct {
	products ProductStore
}

func NewCatalogService(products ProductStore) *CatalogService {
	return &CatalogService{products: products}
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx)
}

func (s *CatalogService) GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	return s.products.GetByID(ctx, productID)
}

func (s *CatalogService) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product.Name == "" {
		return nil, domain.ValidationError("product name is required")
	}
	if product.Price.IsNegative() {
		return nil, domain.ValidationError("price must not be negative")
	}
	if product.Stock < 0 {
		return nil, domain.ValidationError("stock must not be negative")
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, productID uuid.UUID, patch domain.ProductPatch) (*domain.Product, error) {
	if patch.Price != nil && patch.Price.IsNegative() {
		return nil, domain.ValidationError("price must not be negative")
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		return nil, domain.ValidationError("stock must not be negative")
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	patch.Apply(product)
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	return s.products.Delete(ctx, productID)
}

// CheckStock reports whether quantity units are currently available.
func (s *CatalogService) CheckStock(ctx context.Context, productID uuid.UUID, quantity int) (bool, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return false, nil
		}
		return false, err
	}
	return product.HasStock(quantity), nil
}
