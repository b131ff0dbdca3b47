package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/koshishthapa517-crypto/shop-nexus/internal/domain"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateOrder converts the requested lines into a persisted order inside a
// single database transaction: lock product rows, validate stock, snapshot
// prices, insert order and items, decrement stock, clear the user's cart.
// Any failure rolls everything back.
func (r *OrderRepository) CreateOrder(ctx context.Context, userID uuid.UUID, lines []domain.OrderLine) (*domain.Order, error) {
	var order *domain.Order

	err := withTransaction(ctx, r.db, func(tx *sql.Tx) error {
		// Lock rows in a deterministic order so two concurrent orders over
		// the same products cannot deadlock.
		products := make(map[uuid.UUID]*domain.Product, len(lines))
		for _, productID := range sortedProductIDs(lines) {
			product, err := productForUpdate(ctx, tx, productID)
			if err != nil {
				return err
			}
			if product != nil {
				products[productID] = product
			}
		}

		built, err := domain.BuildOrder(userID, lines, products)
		if err != nil {
			return err
		}

		insertOrder := `
			INSERT INTO orders (id, user_id, total_amount, status, payment_status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		if _, err := tx.ExecContext(ctx, insertOrder,
			built.ID, built.UserID, built.TotalAmount,
			built.Status, built.PaymentStatus, built.CreatedAt,
		); err != nil {
			return fmt.Errorf("order creation error: %w", err)
		}

		insertItem := `
			INSERT INTO order_items (id, order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4, $5)
		`
		for _, item := range built.Items {
			if _, err := tx.ExecContext(ctx, insertItem,
				item.ID, item.OrderID, item.ProductID, item.Quantity, item.Price,
			); err != nil {
				return fmt.Errorf("order item creation error: %w", err)
			}

			// Guarded decrement. The rows are locked, but the guard also
			// catches duplicate lines for the same product whose combined
			// quantity exceeds stock.
			result, err := tx.ExecContext(ctx,
				`UPDATE products SET stock = stock - $2 WHERE id = $1 AND stock >= $2`,
				item.ProductID, item.Quantity,
			)
			if err != nil {
				return fmt.Errorf("stock decrement error: %w", err)
			}
			rowsAffected, err := result.RowsAffected()
			if err != nil {
				return err
			}
			if rowsAffected == 0 {
				product := products[item.ProductID]
				return domain.InsufficientStockError("insufficient stock for product %s", product.Name)
			}
		}

		// The whole cart becomes the order, not just the ordered items.
		if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("cart clear error: %w", err)
		}

		order = built
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func sortedProductIDs(lines []domain.OrderLine) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if !seen[line.ProductID] {
			seen[line.ProductID] = true
			ids = append(ids, line.ProductID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// productForUpdate reads a product row under a row lock held for the rest of
// the transaction. A missing product yields (nil, nil); BuildOrder turns the
// absence into the typed not-found failure.
func productForUpdate(ctx context.Context, tx *sql.Tx, productID uuid.UUID) (*domain.Product, error) {
	query := `
		SELECT id, name, description, price, stock, image, created_at
		FROM products
		WHERE id = $1
		FOR UPDATE
	`

	var p domain.Product
	var image sql.NullString
	err := tx.QueryRowContext(ctx, query, productID).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &image, &p.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("product lock error: %w", err)
	}
	p.Image = image.String
	return &p, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	query := `
		SELECT o.id, o.user_id, o.total_amount, o.status, o.payment_status,
		       o.payment_intent_id, o.payment_method, o.created_at,
		       u.id, u.name, u.email
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.id = $1
	`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, orderID))
	if err == sql.ErrNoRows {
		return nil, domain.NotFoundError("order %s not found", orderID)
	}
	if err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	query := `
		SELECT o.id, o.user_id, o.total_amount, o.status, o.payment_status,
		       o.payment_intent_id, o.payment_method, o.created_at,
		       u.id, u.name, u.email
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC
	`
	return r.queryOrders(ctx, query, userID)
}

func (r *OrderRepository) ListAll(ctx context.Context) ([]*domain.Order, error) {
	query := `
		SELECT o.id, o.user_id, o.total_amount, o.status, o.payment_status,
		       o.payment_intent_id, o.payment_method, o.created_at,
		       u.id, u.name, u.email
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC
	`
	return r.queryOrders(ctx, query)
}

func (r *OrderRepository) queryOrders(ctx context.Context, query string, args ...interface{}) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("orders query error: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachItems eager-loads items with their product detail for a batch of
// orders in one round trip.
func (r *OrderRepository) attachItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.Order, len(orders))
	orderIDs := make([]string, len(orders))
	for i, order := range orders {
		order.Items = []domain.OrderItem{}
		byID[order.ID] = order
		orderIDs[i] = order.ID.String()
	}

	query := `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price,
		       p.id, p.name, p.description, p.price, p.stock, p.image, p.created_at
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.id
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(orderIDs))
	if err != nil {
		return fmt.Errorf("order items query error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		var product domain.Product
		var image sql.NullString

		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price,
			&product.ID, &product.Name, &product.Description, &product.Price,
			&product.Stock, &image, &product.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("order item scan error: %w", err)
		}
		product.Image = image.String
		item.Product = &product

		if order, ok := byID[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
	}
	return rows.Err()
}

// UpdateStatus moves an order from one status to another. The expected
// current status is part of the predicate so a concurrent transition loses
// cleanly instead of overwriting.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to domain.OrderStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $2 WHERE id = $1 AND status = $3`,
		orderID, to, from,
	)
	if err != nil {
		return fmt.Errorf("order status update error: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ConflictError("order %s is no longer in status %s", orderID, from)
	}
	return nil
}

// MarkPaid records a successful payment and clears any cart rows left for
// the order's owner, in one transaction. Safe to repeat: a second call finds
// the same terminal state and writes the same values.
func (r *OrderRepository) MarkPaid(ctx context.Context, orderID uuid.UUID, paymentIntentID, paymentMethod string) error {
	return withTransaction(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			UPDATE orders
			SET payment_status = $2, status = $3, payment_intent_id = $4, payment_method = $5
			WHERE id = $1
			RETURNING user_id
		`

		var userID uuid.UUID
		err := tx.QueryRowContext(ctx, query,
			orderID, domain.PaymentStatusPaid, domain.OrderStatusProcessing,
			paymentIntentID, paymentMethod,
		).Scan(&userID)
		if err == sql.ErrNoRows {
			return domain.NotFoundError("order %s not found", orderID)
		}
		if err != nil {
			return fmt.Errorf("order payment update error: %w", err)
		}

		// The cart was cleared at order creation; this catches rows added
		// between placement and payment.
		if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("cart clear error: %w", err)
		}
		return nil
	})
}

// MarkPaymentFailed records a failed verification. Order status is left
// untouched so the user can retry.
func (r *OrderRepository) MarkPaymentFailed(ctx context.Context, orderID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET payment_status = $2 WHERE id = $1`,
		orderID, domain.PaymentStatusFailed,
	)
	if err != nil {
		return fmt.Errorf("order payment update error: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.NotFoundError("order %s not found", orderID)
	}
	return nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var user domain.UserSummary
	var intentID, method sql.NullString

	err := row.Scan(
		&order.ID, &order.UserID, &order.TotalAmount, &order.Status, &order.PaymentStatus,
		&intentID, &method, &order.CreatedAt,
		&user.ID, &user.Name, &user.Email,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("order scan error: %w", err)
	}

	order.PaymentIntentID = intentID.String
	order.PaymentMethod = method.String
	order.User = &user
	return &order, nil
}
