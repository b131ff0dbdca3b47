package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/koshishthapa517-crypto/shop-nexus/internal/domain"
	"github.com/koshishthapa517-crypto/shop-nexus/internal/events"
	"github.com/koshishthapa517-crypto/shop-nexus/internal/gateway"
)

// fakeStore is an in-memory stand-in for the PostgreSQL repositories. It
// implements ProductStore and CartStore itself; orderStore() hands out an
// OrderStore view over the same state, since its method names overlap with
// the other two ports. Sharing the maps keeps the cross-table effects of
// order placement and payment observable.
type fakeStore struct {
	products map[uuid.UUID]*domain.Product
	carts    map[uuid.UUID]*domain.CartItem
	orders   map[uuid.UUID]*domain.Order
	users    map[uuid.UUID]domain.UserSummary
}

// fakeOrderStore implements OrderStore over the shared fakeStore state.
type fakeOrderStore struct {
	*fakeStore
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: map[uuid.UUID]*domain.Product{},
		carts:    map[uuid.UUID]*domain.CartItem{},
		orders:   map[uuid.UUID]*domain.Order{},
		users:    map[uuid.UUID]domain.UserSummary{},
	}
}

func (f *fakeStore) orderStore() *fakeOrderStore {
	return &fakeOrderStore{f}
}

func (f *fakeStore) addUser(name string) uuid.UUID {
	id := uuid.New()
	f.users[id] = domain.UserSummary{ID: id, Name: name, Email: name + "@example.com"}
	return id
}

func (f *fakeStore) addProduct(name string, price string, stock int) *domain.Product {
	p := &domain.Product{
		ID:        uuid.New(),
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		CreatedAt: time.Now(),
	}
	f.products[p.ID] = p
	return p
}

func copyProduct(p *domain.Product) *domain.Product {
	cp := *p
	return &cp
}

// --- ProductStore ---

func (f *fakeStore) List(_ context.Context) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range f.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) GetByID(_ context.Context, productID uuid.UUID) (*domain.Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return nil, domain.NotFoundError("product %s not found", productID)
	}
	return copyProduct(p), nil
}

func (f *fakeStore) Create(_ context.Context, product *domain.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now()
	}
	f.products[product.ID] = copyProduct(product)
	return nil
}

func (f *fakeStore) Update(_ context.Context, product *domain.Product) error {
	if _, ok := f.products[product.ID]; !ok {
		return domain.NotFoundError("product %s not found", product.ID)
	}
	f.products[product.ID] = copyProduct(product)
	return nil
}

func (f *fakeStore) Delete(_ context.Context, productID uuid.UUID) error {
	for _, order := range f.orders {
		for _, item := range order.Items {
			if item.ProductID == productID {
				return domain.ConflictError("cannot delete product %s with associated orders", productID)
			}
		}
	}
	if _, ok := f.products[productID]; !ok {
		return domain.NotFoundError("product %s not found", productID)
	}
	delete(f.products, productID)
	return nil
}

// --- CartStore ---

func (f *fakeStore) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.CartItem, error) {
	var out []domain.CartItem
	for _, item := range f.carts {
		if item.UserID == userID {
			cp := *item
			if p, ok := f.products[item.ProductID]; ok {
				cp.Product = copyProduct(p)
			}
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) GetByIDForUser(_ context.Context, itemID, userID uuid.UUID) (*domain.CartItem, error) {
	item, ok := f.carts[itemID]
	if !ok || item.UserID != userID {
		return nil, domain.NotFoundError("cart item %s not found", itemID)
	}
	cp := *item
	if p, ok := f.products[item.ProductID]; ok {
		cp.Product = copyProduct(p)
	}
	return &cp, nil
}

func (f *fakeStore) GetByUserAndProduct(_ context.Context, userID, productID uuid.UUID) (*domain.CartItem, error) {
	for _, item := range f.carts {
		if item.UserID == userID && item.ProductID == productID {
			cp := *item
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) Insert(_ context.Context, item *domain.CartItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	cp := *item
	cp.Product = nil
	f.carts[item.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateQuantity(_ context.Context, itemID uuid.UUID, quantity int) error {
	item, ok := f.carts[itemID]
	if !ok {
		return domain.NotFoundError("cart item %s not found", itemID)
	}
	item.Quantity = quantity
	return nil
}

func (f *fakeStore) DeleteForUser(_ context.Context, itemID, userID uuid.UUID) error {
	item, ok := f.carts[itemID]
	if !ok || item.UserID != userID {
		return domain.NotFoundError("cart item %s not found", itemID)
	}
	delete(f.carts, itemID)
	return nil
}

func (f *fakeStore) DeleteByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	var removed int64
	for id, item := range f.carts {
		if item.UserID == userID {
			delete(f.carts, id)
			removed++
		}
	}
	return removed, nil
}

// --- OrderStore ---

func (f *fakeOrderStore) CreateOrder(_ context.Context, userID uuid.UUID, lines []domain.OrderLine) (*domain.Order, error) {
	// Validate against copies so a failed build leaves no trace, mirroring
	// the rollback behavior of the real transaction.
	snapshot := make(map[uuid.UUID]*domain.Product, len(f.products))
	for id, p := range f.products {
		snapshot[id] = copyProduct(p)
	}

	order, err := domain.BuildOrder(userID, lines, snapshot)
	if err != nil {
		return nil, err
	}

	// Guarded decrement over the snapshot first: duplicate lines for one
	// product may pass the per-line check but exceed stock combined.
	for _, item := range order.Items {
		p := snapshot[item.ProductID]
		if p.Stock < item.Quantity {
			return nil, domain.InsufficientStockError("insufficient stock for product %s", p.Name)
		}
		p.Stock -= item.Quantity
	}

	for id, p := range snapshot {
		f.products[id].Stock = p.Stock
	}
	f.orders[order.ID] = order
	_, _ = f.DeleteByUser(context.Background(), userID)
	return order, nil
}

func (f *fakeOrderStore) GetByID(_ context.Context, orderID uuid.UUID) (*domain.Order, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return nil, domain.NotFoundError("order %s not found", orderID)
	}
	return f.materialize(order), nil
}

func (f *fakeOrderStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, order := range f.orders {
		if order.UserID == userID {
			out = append(out, f.materialize(order))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeOrderStore) ListAll(_ context.Context) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, order := range f.orders {
		out = append(out, f.materialize(order))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeOrderStore) UpdateStatus(_ context.Context, orderID uuid.UUID, from, to domain.OrderStatus) error {
	order, ok := f.orders[orderID]
	if !ok {
		return domain.NotFoundError("order %s not found", orderID)
	}
	if order.Status != from {
		return domain.ConflictError("order %s is no longer in status %s", orderID, from)
	}
	order.Status = to
	return nil
}

func (f *fakeOrderStore) MarkPaid(_ context.Context, orderID uuid.UUID, paymentIntentID, paymentMethod string) error {
	order, ok := f.orders[orderID]
	if !ok {
		return domain.NotFoundError("order %s not found", orderID)
	}
	order.PaymentStatus = domain.PaymentStatusPaid
	order.Status = domain.OrderStatusProcessing
	order.PaymentIntentID = paymentIntentID
	order.PaymentMethod = paymentMethod
	_, _ = f.DeleteByUser(context.Background(), order.UserID)
	return nil
}

func (f *fakeOrderStore) MarkPaymentFailed(_ context.Context, orderID uuid.UUID) error {
	order, ok := f.orders[orderID]
	if !ok {
		return domain.NotFoundError("order %s not found", orderID)
	}
	order.PaymentStatus = domain.PaymentStatusFailed
	return nil
}

func (f *fakeStore) materialize(order *domain.Order) *domain.Order {
	cp := *order
	cp.Items = make([]domain.OrderItem, len(order.Items))
	copy(cp.Items, order.Items)
	for i := range cp.Items {
		if p, ok := f.products[cp.Items[i].ProductID]; ok {
			cp.Items[i].Product = copyProduct(p)
		}
	}
	if u, ok := f.users[order.UserID]; ok {
		user := u
		cp.User = &user
	}
	return &cp
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	published []events.ShopEvent
}

func (r *recordingPublisher) PublishShopEvent(event events.ShopEvent) error {
	r.published = append(r.published, event)
	return nil
}

// scriptedGateway returns canned intents and counts calls.
type scriptedGateway struct {
	createCalls   int
	retrieveCalls int
	lastCreate    gateway.CreateIntentRequest
	createdIntent *gateway.Intent
	status        string
	err           error
}

func (g *scriptedGateway) CreateIntent(_ context.Context, req gateway.CreateIntentRequest) (*gateway.Intent, error) {
	g.createCalls++
	g.lastCreate = req
	if g.err != nil {
		return nil, g.err
	}
	if g.createdIntent != nil {
		return g.createdIntent, nil
	}
	return &gateway.Intent{
		ID:           "pi_test_" + req.OrderID.String(),
		ClientSecret: "secret_test",
		Status:       "requires_payment_method",
		Amount:       req.Amount,
	}, nil
}

func (g *scriptedGateway) RetrieveIntent(_ context.Context, intentID string) (*gateway.Intent, error) {
	g.retrieveCalls++
	if g.err != nil {
		return nil, g.err
	}
	return &gateway.Intent{
		ID:                 intentID,
		Status:             g.status,
		PaymentMethodTypes: []string{"card"},
	}, nil
}
