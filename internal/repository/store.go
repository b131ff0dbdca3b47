package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/koshishthapa517-crypto/shop-nexus/internal/domain"
)

// withTransaction runs fn inside a database transaction. Any error rolls the
// whole transaction back; domain errors pass through untouched, anything else
// is reported as a transaction failure.
func withTransaction(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return domain.TransactionError("begin transaction", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return domain.TransactionError("rollback", rbErr)
		}
		var de *domain.Error
		if errors.As(err, &de) {
			return err
		}
		return domain.TransactionError("transaction aborted", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.TransactionError("commit transaction", err)
	}
	return nil
}
