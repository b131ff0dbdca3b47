package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/koshishthapa517-crypto/shop-nexus/internal/domain"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT id, name, description, price, stock, image, created_at
		FROM products
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("products query error: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		var image sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &image, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("product scan error: %w", err)
		}
		p.Image = image.String
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *ProductRepository) GetByID(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	query := `
		SELECT id, name, description, price, stock, image, created_at
		FROM products
		WHERE id = $1
	`

	var p domain.Product
	var image sql.NullString
	err := r.db.QueryRowContext(ctx, query, productID).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &image, &p.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.NotFoundError("product %s not found", productID)
	}
	if err != nil {
		return nil, fmt.Errorf("product query error: %w", err)
	}
	p.Image = image.String
	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO products (id, name, description, price, stock, image, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		product.ID, product.Name, product.Description,
		product.Price, product.Stock, nullString(product.Image), product.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("product creation error: %w", err)
	}
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, stock = $5, image = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		product.ID, product.Name, product.Description,
		product.Price, product.Stock, nullString(product.Image),
	)
	if err != nil {
		return fmt.Errorf("product update error: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.NotFoundError("product %s not found", product.ID)
	}
	return nil
}

// Delete removes a product that no order references. Order history keeps its
// price snapshots, so referenced products must stay.
func (r *ProductRepository) Delete(ctx context.Context, productID uuid.UUID) error {
	referenced, err := r.HasOrderReferences(ctx, productID)
	if err != nil {
		return err
	}
	if referenced {
		return domain.ConflictError("cannot delete product %s with associated orders", productID)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, productID)
	if err != nil {
		return fmt.Errorf("product delete error: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.NotFoundError("product %s not found", productID)
	}
	return nil
}

func (r *ProductRepository) HasOrderReferences(ctx context.Context, productID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM order_items WHERE product_id = $1)`, productID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("order reference query error: %w", err)
	}
	return exists, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
