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

const clientColumns = `cpf, nome, created_at`

// ClientRepository provides data access for clients using pgx.
type ClientRepository struct {
	pool database.TxQuerier
}

// NewClientRepository creates a new ClientRepository with the given pool.
func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

// NewClientRepositoryWithPool creates a new ClientRepository with a custom pool interface.
// This is primarily used for testing.
func NewClientRepositoryWithPool(pool database.TxQuerier) *ClientRepository {
	return &ClientRepository{pool: pool}
}

func scanClient(row scanner) (*model.Client, error) {
	var c model.Client
	if err := row.Scan(&c.CPF, &c.Name, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepository) query(ctx context.Context, sql string, args ...any) ([]model.Client, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := []model.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate client rows: %w", err)
	}
	return clients, nil
}

// List returns every client ordered by name. Returns an empty slice when there are none.
func (r *ClientRepository) List(ctx context.Context) ([]model.Client, error) {
	clients, err := r.query(ctx, `SELECT `+clientColumns+` FROM clientes ORDER BY nome, cpf`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

// SearchByName returns clients whose name contains fragment, case-insensitively.
func (r *ClientRepository) SearchByName(ctx context.Context, fragment string) ([]model.Client, error) {
	clients, err := r.query(ctx,
		`SELECT `+clientColumns+` FROM clientes WHERE nome ILIKE $1 ORDER BY nome, cpf`,
		containsPattern(fragment))
	if err != nil {
		return nil, fmt.Errorf("search clients by name %q: %w", fragment, err)
	}
	return clients, nil
}

// GetByCPF retrieves a client by CPF.
// Returns nil, nil if the client is not found (service layer handles this).
func (r *ClientRepository) GetByCPF(ctx context.Context, cpf string) (*model.Client, error) {
	return r.getByCPF(ctx, r.pool, `SELECT `+clientColumns+` FROM clientes WHERE cpf = $1`, cpf)
}

// GetByCPFForShare retrieves a client and holds a share lock on the row until
// the transaction ends, so the client cannot be renamed or deleted meanwhile.
// Returns nil, nil if the client is not found.
func (r *ClientRepository) GetByCPFForShare(ctx context.Context, tx database.TxQuerier, cpf string) (*model.Client, error) {
	return r.getByCPF(ctx, tx, `SELECT `+clientColumns+` FROM clientes WHERE cpf = $1 FOR SHARE`, cpf)
}

func (r *ClientRepository) getByCPF(ctx context.Context, q database.TxQuerier, sql, cpf string) (*model.Client, error) {
	c, err := scanClient(q.QueryRow(ctx, sql, cpf))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client by cpf %s: %w", cpf, err)
	}
	return c, nil
}

// Insert inserts a new client and fills in CreatedAt.
// Returns service.ErrClientExists if the CPF is already registered.
func (r *ClientRepository) Insert(ctx context.Context, client *model.Client) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO clientes (cpf, nome) VALUES ($1, $2) RETURNING created_at`,
		client.CPF, client.Name).Scan(&client.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return service.ErrClientExists
		}
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

// Update applies patch to the client with the given CPF and returns the updated row.
// Returns service.ErrClientNotFound when no row has that CPF and
// service.ErrClientExists when the new CPF belongs to another client.
func (r *ClientRepository) Update(ctx context.Context, cpf string, patch model.ClientPatch) (*model.Client, error) {
	b := NewUpdate(tableClients, "cpf").Returning("cpf", "nome", "created_at")
	if patch.Name != nil {
		b.Set("nome", *patch.Name)
	}
	if patch.CPF != nil {
		b.Set("cpf", *patch.CPF)
	}

	sql, args, err := b.Build(cpf)
	if err != nil {
		return nil, err
	}

	c, err := scanClient(r.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrClientNotFound
		}
		if isUniqueViolation(err) {
			return nil, service.ErrClientExists
		}
		return nil, fmt.Errorf("update client %s: %w", cpf, err)
	}
	return c, nil
}

// Delete removes the client with the given CPF.
// Returns service.ErrClientNotFound when no row was deleted.
func (r *ClientRepository) Delete(ctx context.Context, cpf string) error {
	return r.DeleteTx(ctx, r.pool, cpf)
}

// DeleteTx is Delete running on the given querier, usually a transaction.
func (r *ClientRepository) DeleteTx(ctx context.Context, tx database.TxQuerier, cpf string) error {
	tag, err := tx.Exec(ctx, `DELETE FROM clientes WHERE cpf = $1`, cpf)
	if err != nil {
		return fmt.Errorf("delete client %s: %w", cpf, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrClientNotFound
	}
	return nil
}

// LockCPFsByName locks every client whose name equals name exactly and
// returns their CPFs. Must be called within a transaction.
func (r *ClientRepository) LockCPFsByName(ctx context.Context, tx database.TxQuerier, name string) ([]string, error) {
	rows, err := tx.Query(ctx, `SELECT cpf FROM clientes WHERE nome = $1 FOR UPDATE`, name)
	if err != nil {
		return nil, fmt.Errorf("lock clients by name %q: %w", name, err)
	}
	defer rows.Close()

	var cpfs []string
	for rows.Next() {
		var cpf string
		if err := rows.Scan(&cpf); err != nil {
			return nil, fmt.Errorf("scan client cpf: %w", err)
		}
		cpfs = append(cpfs, cpf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate client cpf rows: %w", err)
	}
	return cpfs, nil
}
