package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/fiscal-coupon-api/internal/model"
	"github.com/fairyhunter13/fiscal-coupon-api/internal/service"
	"github.com/fairyhunter13/fiscal-coupon-api/pkg/database"
)

const couponColumns = `id, valor, data, cpf_cliente, nome_cliente, cnpj_restaurante, nome_fantasia, created_at`

// CouponRepository provides data access for fiscal coupons using pgx.
type CouponRepository struct {
	pool database.TxQuerier
}

// NewCouponRepository creates a new CouponRepository with the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// NewCouponRepositoryWithPool creates a new CouponRepository with a custom pool interface.
// This is primarily used for testing.
func NewCouponRepositoryWithPool(pool database.TxQuerier) *CouponRepository {
	return &CouponRepository{pool: pool}
}

func scanCoupon(row scanner) (*model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(
		&c.ID,
		&c.Amount,
		&c.PurchaseDate,
		&c.ClientCPF,
		&c.ClientName,
		&c.RestaurantCNPJ,
		&c.TradeName,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CouponRepository) query(ctx context.Context, sql string, args ...any) ([]model.Coupon, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	coupons := []model.Coupon{}
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		coupons = append(coupons, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coupon rows: %w", err)
	}
	return coupons, nil
}

// List returns every coupon, newest purchase first.
func (r *CouponRepository) List(ctx context.Context) ([]model.Coupon, error) {
	coupons, err := r.query(ctx, `SELECT `+couponColumns+` FROM cuponsFiscais ORDER BY data DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	return coupons, nil
}

// ListByCPF returns the coupons issued to a client.
func (r *CouponRepository) ListByCPF(ctx context.Context, cpf string) ([]model.Coupon, error) {
	coupons, err := r.query(ctx,
		`SELECT `+couponColumns+` FROM cuponsFiscais WHERE cpf_cliente = $1 ORDER BY data DESC, created_at DESC`, cpf)
	if err != nil {
		return nil, fmt.Errorf("list coupons by cpf %s: %w", cpf, err)
	}
	return coupons, nil
}

// ListByCNPJ returns the coupons issued by a restaurant.
func (r *CouponRepository) ListByCNPJ(ctx context.Context, cnpj string) ([]model.Coupon, error) {
	coupons, err := r.query(ctx,
		`SELECT `+couponColumns+` FROM cuponsFiscais WHERE cnpj_restaurante = $1 ORDER BY data DESC, created_at DESC`, cnpj)
	if err != nil {
		return nil, fmt.Errorf("list coupons by cnpj %s: %w", cnpj, err)
	}
	return coupons, nil
}

// SearchByClientName matches the customer name copied onto the coupon.
func (r *CouponRepository) SearchByClientName(ctx context.Context, fragment string) ([]model.Coupon, error) {
	coupons, err := r.query(ctx,
		`SELECT `+couponColumns+` FROM cuponsFiscais WHERE nome_cliente ILIKE $1 ORDER BY data DESC, created_at DESC`,
		containsPattern(fragment))
	if err != nil {
		return nil, fmt.Errorf("search coupons by client name %q: %w", fragment, err)
	}
	return coupons, nil
}

// SearchByTradeName matches the restaurant trade name copied onto the coupon.
func (r *CouponRepository) SearchByTradeName(ctx context.Context, fragment string) ([]model.Coupon, error) {
	coupons, err := r.query(ctx,
		`SELECT `+couponColumns+` FROM cuponsFiscais WHERE nome_fantasia ILIKE $1 ORDER BY data DESC, created_at DESC`,
		containsPattern(fragment))
	if err != nil {
		return nil, fmt.Errorf("search coupons by trade name %q: %w", fragment, err)
	}
	return coupons, nil
}

// GetByID returns nil, nil if the coupon is not found.
func (r *CouponRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	c, err := scanCoupon(r.pool.QueryRow(ctx, `SELECT `+couponColumns+` FROM cuponsFiscais WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get coupon %s: %w", id, err)
	}
	return c, nil
}

// GetByIDForUpdate retrieves a coupon with a row lock (SELECT FOR UPDATE).
// Returns service.ErrCouponNotFound if the coupon doesn't exist.
func (r *CouponRepository) GetByIDForUpdate(ctx context.Context, tx database.TxQuerier, id uuid.UUID) (*model.Coupon, error) {
	c, err := scanCoupon(tx.QueryRow(ctx, `SELECT `+couponColumns+` FROM cuponsFiscais WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon for update %s: %w", id, err)
	}
	return c, nil
}

// Insert inserts a coupon within a transaction and fills in CreatedAt.
func (r *CouponRepository) Insert(ctx context.Context, tx database.TxQuerier, coupon *model.Coupon) error {
	err := tx.QueryRow(ctx,
		`INSERT INTO cuponsFiscais (id, valor, data, cpf_cliente, nome_cliente, cnpj_restaurante, nome_fantasia)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`,
		coupon.ID,
		coupon.Amount,
		coupon.PurchaseDate,
		coupon.ClientCPF,
		coupon.ClientName,
		coupon.RestaurantCNPJ,
		coupon.TradeName,
	).Scan(&coupon.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}

// Update applies patch to a coupon within a transaction and returns the updated row.
// Only the columns present in patch are written.
func (r *CouponRepository) Update(ctx context.Context, tx database.TxQuerier, id uuid.UUID, patch model.CouponPatch) (*model.Coupon, error) {
	b := NewUpdate(tableCoupons, "id").Returning(
		"id", "valor", "data", "cpf_cliente", "nome_cliente", "cnpj_restaurante", "nome_fantasia", "created_at")
	if patch.Amount != nil {
		b.Set("valor", *patch.Amount)
	}
	if patch.PurchaseDate != nil {
		b.Set("data", *patch.PurchaseDate)
	}
	if patch.ClientCPF != nil {
		b.Set("cpf_cliente", *patch.ClientCPF)
	}
	if patch.ClientName != nil {
		b.Set("nome_cliente", *patch.ClientName)
	}
	if patch.RestaurantCNPJ != nil {
		b.Set("cnpj_restaurante", *patch.RestaurantCNPJ)
	}
	if patch.TradeName != nil {
		b.Set("nome_fantasia", *patch.TradeName)
	}

	sql, args, err := b.Build(id)
	if err != nil {
		return nil, err
	}

	c, err := scanCoupon(tx.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrCouponNotFound
		}
		return nil, fmt.Errorf("update coupon %s: %w", id, err)
	}
	return c, nil
}

// DeleteByID returns service.ErrCouponNotFound when no row was deleted.
func (r *CouponRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	n, err := r.deleteWhere(ctx, "id", id)
	if err != nil {
		return fmt.Errorf("delete coupon %s: %w", id, err)
	}
	if n == 0 {
		return service.ErrCouponNotFound
	}
	return nil
}

// DeleteByCPF removes every coupon of a client and returns how many were removed.
func (r *CouponRepository) DeleteByCPF(ctx context.Context, cpf string) (int64, error) {
	n, err := r.deleteWhere(ctx, "cpf_cliente", cpf)
	if err != nil {
		return 0, fmt.Errorf("delete coupons by cpf %s: %w", cpf, err)
	}
	return n, nil
}

// DeleteByCNPJ removes every coupon of a restaurant and returns how many were removed.
func (r *CouponRepository) DeleteByCNPJ(ctx context.Context, cnpj string) (int64, error) {
	n, err := r.deleteWhere(ctx, "cnpj_restaurante", cnpj)
	if err != nil {
		return 0, fmt.Errorf("delete coupons by cnpj %s: %w", cnpj, err)
	}
	return n, nil
}

// deleteWhere column is always a constant from this file.
func (r *CouponRepository) deleteWhere(ctx context.Context, column string, value any) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cuponsFiscais WHERE `+column+` = $1`, value)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
