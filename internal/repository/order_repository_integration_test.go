//go:build integration

package repository

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koshishthapa517-crypto/shop-nexus/internal/domain"
)

// Run with: TEST_DATABASE_DSN=postgres://... go test -tags integration ./internal/repository

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	require.NoError(t, db.Ping())
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile(filepath.Join("..", "..", "migrations", "001_init.sql"))
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	_, err = db.Exec(`TRUNCATE order_items, orders, cart_items, products, users CASCADE`)
	require.NoError(t, err)
	return db
}

func seedUser(t *testing.T, db *sql.DB, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.Exec(
		`INSERT INTO users (id, name, email) VALUES ($1, $2, $3)`,
		id, name, name+"+"+id.String()+"@example.com",
	)
	require.NoError(t, err)
	return id
}

func seedProduct(t *testing.T, db *sql.DB, name, price string, stock int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.Exec(
		`INSERT INTO products (id, name, description, price, stock, created_at)
		 VALUES ($1, $2, '', $3, $4, $5)`,
		id, name, decimal.RequireFromString(price), stock, time.Now().UTC(),
	)
	require.NoError(t, err)
	return id
}

// Two orders for 3 units each race over a stock of 5. The row lock plus the
// stock >= quantity guard must let exactly one of them through.
func TestCreateOrderConcurrentPlacementCannotOversell(t *testing.T) {
	db := openTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	productID := seedProduct(t, db, "limited run", "25.00", 5)

	lines := []domain.OrderLine{{ProductID: productID, Quantity: 3}}

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, userID := range []uuid.UUID{alice, bob} {
		wg.Add(1)
		go func(userID uuid.UUID) {
			defer wg.Done()
			_, err := repo.CreateOrder(ctx, userID, lines)
			errs <- err
		}(userID)
	}
	wg.Wait()
	close(errs)

	var successes, failures int
	for err := range errs {
		if err == nil {
			successes++
			continue
		}
		failures++
		assert.True(t, domain.IsKind(err, domain.KindInsufficientStock), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, failures)

	var stock int
	require.NoError(t, db.QueryRow(`SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock))
	assert.Equal(t, 2, stock)

	var orderCount int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&orderCount))
	assert.Equal(t, 1, orderCount)
}

// Duplicate lines for one product pass the per-line check but trip the
// stock >= quantity guard after the order row and first item are already
// written. The whole transaction must roll back.
func TestCreateOrderRollsBackPartialWrites(t *testing.T) {
	db := openTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bookID := seedProduct(t, db, "book", "25.00", 10)
	rareID := seedProduct(t, db, "rare book", "99.00", 1)

	_, err := repo.CreateOrder(ctx, alice, []domain.OrderLine{
		{ProductID: bookID, Quantity: 2},
		{ProductID: rareID, Quantity: 1},
		{ProductID: rareID, Quantity: 1},
	})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindInsufficientStock))

	var bookStock, rareStock, orderCount, itemCount int
	require.NoError(t, db.QueryRow(`SELECT stock FROM products WHERE id = $1`, bookID).Scan(&bookStock))
	require.NoError(t, db.QueryRow(`SELECT stock FROM products WHERE id = $1`, rareID).Scan(&rareStock))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&orderCount))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM order_items`).Scan(&itemCount))
	assert.Equal(t, 10, bookStock)
	assert.Equal(t, 1, rareStock)
	assert.Equal(t, 0, orderCount)
	assert.Equal(t, 0, itemCount)
}
