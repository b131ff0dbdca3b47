package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/koshishthapa517-crypto/shop-nexus/internal/domain"
)

type CartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error) {
	query := `
		SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, ci.created_at,
		       p.id, p.name, p.description, p.price, p.stock, p.image, p.created_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("cart query error: %w", err)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		item, err := scanCartItemWithProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// GetByIDForUser loads a cart row only if it belongs to the given user.
func (r *CartRepository) GetByIDForUser(ctx context.Context, itemID, userID uuid.UUID) (*domain.CartItem, error) {
	query := `
		SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, ci.created_at,
		       p.id, p.name, p.description, p.price, p.stock, p.image, p.created_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.id = $1 AND ci.user_id = $2
	`

	row := r.db.QueryRowContext(ctx, query, itemID, userID)
	item, err := scanCartItemWithProduct(row)
	if err == sql.ErrNoRows {
		return nil, domain.NotFoundError("cart item %s not found", itemID)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *CartRepository) GetByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*domain.CartItem, error) {
	query := `
		SELECT id, user_id, product_id, quantity, created_at
		FROM cart_items
		WHERE user_id = $1 AND product_id = $2
	`

	var item domain.CartItem
	err := r.db.QueryRowContext(ctx, query, userID, productID).Scan(
		&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cart item query error: %w", err)
	}
	return &item, nil
}

func (r *CartRepository) Insert(ctx context.Context, item *domain.CartItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO cart_items (id, user_id, product_id, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.UserID, item.ProductID, item.Quantity, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("cart item creation error: %w", err)
	}
	return nil
}

func (r *CartRepository) UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = $2 WHERE id = $1`, itemID, quantity,
	)
	if err != nil {
		return fmt.Errorf("cart item update error: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.NotFoundError("cart item %s not found", itemID)
	}
	return nil
}

// DeleteForUser removes a cart row owned by the user. Deleting somebody
// else's row reports not found, not forbidden, to avoid leaking existence.
func (r *CartRepository) DeleteForUser(ctx context.Context, itemID, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, itemID, userID,
	)
	if err != nil {
		return fmt.Errorf("cart item delete error: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.NotFoundError("cart item %s not found", itemID)
	}
	return nil
}

func (r *CartRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("cart clear error: %w", err)
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCartItemWithProduct(row rowScanner) (*domain.CartItem, error) {
	var item domain.CartItem
	var product domain.Product
	var image sql.NullString

	err := row.Scan(
		&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt,
		&product.ID, &product.Name, &product.Description, &product.Price,
		&product.Stock, &image, &product.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("cart item scan error: %w", err)
	}
	product.Image = image.String
	item.Product = &product
	return &item, nil
}
