package service

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/koshishthapa517-crypto/shop-nexus/internal/domain"
)

type CartService struct {
	carts    CartStore
	products ProductStore
}

func NewCartService(carts CartStore, products ProductStore) *CartService {
	return &CartService{carts: carts, products: products}
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error) {
	return s.carts.ListByUser(ctx, userID)
}

// AddToCart creates or increments the user's row for the product. The stock
// check runs against the combined post-add quantity, not just the delta.
func (s *CartService) AddToCart(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartItem, error) {
	if quantity <= 0 {
		return nil, domain.ValidationError("quantity must be a positive integer")
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	existing, err := s.carts.GetByUserAndProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	newQuantity := quantity
	if existing != nil {
		newQuantity += existing.Quantity
	}
	if !product.HasStock(newQuantity) {
		return nil, domain.InsufficientStockError("insufficient stock for product %s", product.Name)
	}

	if existing != nil {
		if err := s.carts.UpdateQuantity(ctx, existing.ID, newQuantity); err != nil {
			return nil, err
		}
		existing.Quantity = newQuantity
		existing.Product = product
		return existing, nil
	}

	item := &domain.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}
	if err := s.carts.Insert(ctx, item); err != nil {
		return nil, err
	}
	item.Product = product
	return item, nil
}

// UpdateCartItem sets an owned row to an absolute quantity, re-validated
// against current stock.
func (s *CartService) UpdateCartItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*domain.CartItem, error) {
	if quantity <= 0 {
		return nil, domain.ValidationError("quantity must be a positive integer")
	}

	item, err := s.carts.GetByIDForUser(ctx, itemID, userID)
	if err != nil {
		return nil, err
	}
	if item.Product == nil {
		return nil, domain.NotFoundError("product %s not found", item.ProductID)
	}
	if !item.Product.HasStock(quantity) {
		return nil, domain.InsufficientStockError("insufficient stock for product %s", item.Product.Name)
	}

	if err := s.carts.UpdateQuantity(ctx, item.ID, quantity); err != nil {
		return nil, err
	}
	item.Quantity = quantity
	return item, nil
}

func (s *CartService) RemoveFromCart(ctx context.Context, userID, itemID uuid.UUID) error {
	return s.carts.DeleteForUser(ctx, itemID, userID)
}

func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	_, err := s.carts.DeleteByUser(ctx, userID)
	return err
}

// MergeGuestCart replays a guest's client-held cart into the server cart.
// Each item goes through the same path as AddToCart; items that fail a
// product lookup or stock check are skipped, and the merge itself never
// fails. Partial success is the intended behavior here.
func (s *CartService) MergeGuestCart(ctx context.Context, userID uuid.UUID, items []domain.GuestCartItem) ([]domain.CartItem, error) {
	var merged []domain.CartItem

	for _, guest := range items {
		if guest.ProductID == uuid.Nil || guest.Quantity < 1 {
			continue
		}

		item, err := s.AddToCart(ctx, userID, guest.ProductID, guest.Quantity)
		if err != nil {
			log.Printf("Guest cart merge: skipping product %s: %v", guest.ProductID, err)
			continue
		}
		merged = append(merged, *item)
	}

	return merged, nil
}
