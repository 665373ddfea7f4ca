// Package service holds the business rules for clients, restaurants and
// fiscal coupons. Handlers call it; repositories are injected as interfaces.
package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fairyhunter13/fiscal-coupon-api/pkg/database"
)

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// deleteOneByName deletes the single row whose name matches exactly.
// lock must return the keys of every matching row, locked FOR UPDATE.
// Zero matches yield notFound; more than one yields ErrAmbiguousName and
// nothing is deleted.
func deleteOneByName(
	ctx context.Context,
	pool TxBeginner,
	name string,
	lock func(ctx context.Context, tx database.TxQuerier, name string) ([]string, error),
	del func(ctx context.Context, tx database.TxQuerier, key string) error,
	notFound error,
) (string, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	keys, err := lock(ctx, tx, name)
	if err != nil {
		return "", err
	}

	switch len(keys) {
	case 0:
		return "", notFound
	case 1:
	default:
		return "", fmt.Errorf("%w: %q matches %d records", ErrAmbiguousName, name, len(keys))
	}

	if err := del(ctx, tx, keys[0]); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return keys[0], nil
}
