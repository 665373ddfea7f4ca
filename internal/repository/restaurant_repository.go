package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/fiscal-coupon-api/internal/model"
	"github.com/fairyhunter13/fiscal-coupon-api/internal/service"
	"github.com/fairyhunter13/fiscal-coupon-api/pkg/database"
)

const restaurantColumns = `cnpj, nome_fantasia, created_at`

// RestaurantRepository provides data access for restaurants using pgx.
type RestaurantRepository struct {
	pool database.TxQuerier
}

// NewRestaurantRepository creates a new RestaurantRepository with the given pool.
func NewRestaurantRepository(pool *pgxpool.Pool) *RestaurantRepository {
	return &RestaurantRepository{pool: pool}
}

// NewRestaurantRepositoryWithPool is used by tests to inject a fake pool.
func NewRestaurantRepositoryWithPool(pool database.TxQuerier) *RestaurantRepository {
	return &RestaurantRepository{pool: pool}
}

func scanRestaurant(row scanner) (*model.Restaurant, error) {
	var rs model.Restaurant
	if err := row.Scan(&rs.CNPJ, &rs.TradeName, &rs.CreatedAt); err != nil {
		return nil, err
	}
	return &rs, nil
}

func (r *RestaurantRepository) query(ctx context.Context, sql string, args ...any) ([]model.Restaurant, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	restaurants := []model.Restaurant{}
	for rows.Next() {
		rs, err := scanRestaurant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan restaurant: %w", err)
		}
		restaurants = append(restaurants, *rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate restaurant rows: %w", err)
	}
	return restaurants, nil
}

func (r *RestaurantRepository) List(ctx context.Context) ([]model.Restaurant, error) {
	restaurants, err := r.query(ctx, `SELECT `+restaurantColumns+` FROM restaurantes ORDER BY nome_fantasia, cnpj`)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	return restaurants, nil
}

func (r *RestaurantRepository) SearchByTradeName(ctx context.Context, fragment string) ([]model.Restaurant, error) {
	restaurants, err := r.query(ctx,
		`SELECT `+restaurantColumns+` FROM restaurantes WHERE nome_fantasia ILIKE $1 ORDER BY nome_fantasia, cnpj`,
		containsPattern(fragment))
	if err != nil {
		return nil, fmt.Errorf("search restaurants by trade name %q: %w", fragment, err)
	}
	return restaurants, nil
}

// GetByCNPJ returns nil, nil if the restaurant is not found.
func (r *RestaurantRepository) GetByCNPJ(ctx context.Context, cnpj string) (*model.Restaurant, error) {
	return r.getByCNPJ(ctx, r.pool, `SELECT `+restaurantColumns+` FROM restaurantes WHERE cnpj = $1`, cnpj)
}

// GetByCNPJForShare is GetByCNPJ holding a share lock until the transaction ends.
func (r *RestaurantRepository) GetByCNPJForShare(ctx context.Context, tx database.TxQuerier, cnpj string) (*model.Restaurant, error) {
	return r.getByCNPJ(ctx, tx, `SELECT `+restaurantColumns+` FROM restaurantes WHERE cnpj = $1 FOR SHARE`, cnpj)
}

func (r *RestaurantRepository) getByCNPJ(ctx context.Context, q database.TxQuerier, sql, cnpj string) (*model.Restaurant, error) {
	rs, err := scanRestaurant(q.QueryRow(ctx, sql, cnpj))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get restaurant by cnpj %s: %w", cnpj, err)
	}
	return rs, nil
}

// Insert returns service.ErrRestaurantExists if the CNPJ is already registered.
func (r *RestaurantRepository) Insert(ctx context.Context, restaurant *model.Restaurant) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO restaurantes (cnpj, nome_fantasia) VALUES ($1, $2) RETURNING created_at`,
		restaurant.CNPJ, restaurant.TradeName).Scan(&restaurant.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return service.ErrRestaurantExists
		}
		return fmt.Errorf("insert restaurant: %w", err)
	}
	return nil
}

// Update applies patch and returns the updated row.
func (r *RestaurantRepository) Update(ctx context.Context, cnpj string, patch model.RestaurantPatch) (*model.Restaurant, error) {
	b := NewUpdate(tableRestaurants, "cnpj").Returning("cnpj", "nome_fantasia", "created_at")
	if patch.TradeName != nil {
		b.Set("nome_fantasia", *patch.TradeName)
	}
	if patch.CNPJ != nil {
		b.Set("cnpj", *patch.CNPJ)
	}

	sql, args, err := b.Build(cnpj)
	if err != nil {
		return nil, err
	}

	rs, err := scanRestaurant(r.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrRestaurantNotFound
		}
		if isUniqueViolation(err) {
			return nil, service.ErrRestaurantExists
		}
		return nil, fmt.Errorf("update restaurant %s: %w", cnpj, err)
	}
	return rs, nil
}

func (r *RestaurantRepository) Delete(ctx context.Context, cnpj string) error {
	return r.DeleteTx(ctx, r.pool, cnpj)
}

// DeleteTx returns service.ErrRestaurantNotFound when no row was deleted.
func (r *RestaurantRepository) DeleteTx(ctx context.Context, tx database.TxQuerier, cnpj string) error {
	tag, err := tx.Exec(ctx, `DELETE FROM restaurantes WHERE cnpj = $1`, cnpj)
	if err != nil {
		return fmt.Errorf("delete restaurant %s: %w", cnpj, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrRestaurantNotFound
	}
	return nil
}

// LockCNPJsByTradeName locks every restaurant with exactly this trade name
// and returns their CNPJs. Must be called within a transaction.
func (r *RestaurantRepository) LockCNPJsByTradeName(ctx context.Context, tx database.TxQuerier, name string) ([]string, error) {
	rows, err := tx.Query(ctx, `SELECT cnpj FROM restaurantes WHERE nome_fantasia = $1 FOR UPDATE`, name)
	if err != nil {
		return nil, fmt.Errorf("lock restaurants by trade name %q: %w", name, err)
	}
	defer rows.Close()

	var cnpjs []string
	for rows.Next() {
		var cnpj string
		if err := rows.Scan(&cnpj); err != nil {
			return nil, fmt.Errorf("scan restaurant cnpj: %w", err)
		}
		cnpjs = append(cnpjs, cnpj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate restaurant cnpj rows: %w", err)
	}
	return cnpjs, nil
}
