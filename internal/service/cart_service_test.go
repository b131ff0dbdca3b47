package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koshishthapa517-crypto/shop-nexus/internal/domain"
)

func TestAddToCartAccumulatesIntoOneRow(t *testing.T) {
	store := newFakeStore()
	svc := NewCartService(store, store)
	ctx := context.Background()

	userID := store.addUser("alice")
	book := store.addProduct("book", "25.00", 10)

	first, err := svc.AddToCart(ctx, userID, book.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Quantity)

	second, err := svc.AddToCart(ctx, userID, book.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 7, second.Quantity)

	items, err := svc.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Quantity)
}

func TestAddToCartChecksCombinedQuantityAgainstStock(t *testing.T) {
	store := newFakeStore()
	svc := NewCartService(store, store)
	ctx := context.Background()

	userID := store.addUser("alice")
	book := store.addProduct("book", "25.00", 5)

	_, err := svc.AddToCart(ctx, userID, book.ID, 3)
	require.NoError(t, err)

	// 3 already in the cart; 3 more would exceed stock=5 even though the
	// delta alone fits.
	_, err = svc.AddToCart(ctx, userID, book.ID, 3)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindInsufficientStock))

	items, _ := svc.GetCart(ctx, userID)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestAddToCartRejectsUnknownProductAndBadQuantity(t *testing.T) {
	store := newFakeStore()
	svc := NewCartService(store, store)
	ctx := context.Background()

	userID := store.addUser("alice")

	_, err := svc.AddToCart(ctx, userID, uuid.New(), 1)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	book := store.addProduct("book", "25.00", 5)
	_, err = svc.AddToCart(ctx, userID, book.ID, 0)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestUpdateCartItemRevalidatesStockAndOwnership(t *testing.T) {
	store := newFakeStore()
	svc := NewCartService(store, store)
	ctx := context.Background()

	alice := store.addUser("alice")
	mallory := store.addUser("mallory")
	book := store.addProduct("book", "25.00", 5)

	item, err := svc.AddToCart(ctx, alice, book.ID, 2)
	require.NoError(t, err)

	// Absolute quantity, not a delta.
	updated, err := svc.UpdateCartItem(ctx, alice, item.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Quantity)

	_, err = svc.UpdateCartItem(ctx, alice, item.ID, 6)
	assert.True(t, domain.IsKind(err, domain.KindInsufficientStock))
	assert.Contains(t, err.Error(), "book", "message names the product, not its id")

	// Somebody else's row looks like it does not exist.
	_, err = svc.UpdateCartItem(ctx, mallory, item.ID, 1)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestRemoveFromCart(t *testing.T) {
	store := newFakeStore()
	svc := NewCartService(store, store)
	ctx := context.Background()

	alice := store.addUser("alice")
	mallory := store.addUser("mallory")
	book := store.addProduct("book", "25.00", 5)

	item, err := svc.AddToCart(ctx, alice, book.ID, 2)
	require.NoError(t, err)

	err = svc.RemoveFromCart(ctx, mallory, item.ID)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	require.NoError(t, svc.RemoveFromCart(ctx, alice, item.ID))

	err = svc.RemoveFromCart(ctx, alice, item.ID)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestMergeGuestCartSkipsFailuresAndNeverErrors(t *testing.T) {
	store := newFakeStore()
	svc := NewCartService(store, store)
	ctx := context.Background()

	userID := store.addUser("alice")
	book := store.addProduct("book", "25.00", 10)
	pen := store.addProduct("pen", "1.99", 2)

	merged, err := svc.MergeGuestCart(ctx, userID, []domain.GuestCartItem{
		{ProductID: book.ID, Quantity: 2},      // ok
		{ProductID: uuid.New(), Quantity: 1},   // unknown product: skipped
		{ProductID: pen.ID, Quantity: 5},       // over stock: skipped
		{ProductID: book.ID, Quantity: 0},      // invalid quantity: skipped
		{ProductID: uuid.Nil, Quantity: 3},     // no product id: skipped
		{ProductID: pen.ID, Quantity: 1},       // ok
	})
	require.NoError(t, err)
	assert.Len(t, merged, 2)

	items, err := svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestMergeGuestCartAccumulatesIntoExistingServerRows(t *testing.T) {
	store := newFakeStore()
	svc := NewCartService(store, store)
	ctx := context.Background()

	userID := store.addUser("alice")
	book := store.addProduct("book", "25.00", 10)

	_, err := svc.AddToCart(ctx, userID, book.ID, 4)
	require.NoError(t, err)

	merged, err := svc.MergeGuestCart(ctx, userID, []domain.GuestCartItem{
		{ProductID: book.ID, Quantity: 3},
	})
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, 7, merged[0].Quantity)

	items, _ := svc.GetCart(ctx, userID)
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Quantity)
}
