package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/fiscal-coupon-api/internal/model"
	"github.com/fairyhunter13/fiscal-coupon-api/pkg/database"
)

// ClientRepositoryInterface defines the interface for client data access.
type ClientRepositoryInterface interface {
	List(ctx context.Context) ([]model.Client, error)
	SearchByName(ctx context.Context, fragment string) ([]model.Client, error)
	GetByCPF(ctx context.Context, cpf string) (*model.Client, error)
	Insert(ctx context.Context, client *model.Client) error
	Update(ctx context.Context, cpf string, patch model.ClientPatch) (*model.Client, error)
	Delete(ctx context.Context, cpf string) error
	DeleteTx(ctx context.Context, tx database.TxQuerier, cpf string) error
	LockCPFsByName(ctx context.Context, tx database.TxQuerier, name string) ([]string, error)
}

// ClientService provides business logic for client operations.
type ClientService struct {
	pool TxBeginner
	repo ClientRepositoryInterface
}

// NewClientService creates a new ClientService with the given pool and repository.
func NewClientService(pool *pgxpool.Pool, repo ClientRepositoryInterface) *ClientService {
	return &ClientService{pool: pool, repo: repo}
}

// NewClientServiceWithTxBeginner creates a ClientService with a custom TxBeginner.
// Primarily used for testing.
func NewClientServiceWithTxBeginner(pool TxBeginner, repo ClientRepositoryInterface) *ClientService {
	return &ClientService{pool: pool, repo: repo}
}

// List returns every client. Returns ErrClientNotFound when none are registered.
func (s *ClientService) List(ctx context.Context) ([]model.Client, error) {
	clients, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(clients) == 0 {
		return nil, fmt.Errorf("%w: no clients registered", ErrClientNotFound)
	}
	return clients, nil
}

// SearchByName returns clients whose name contains fragment.
func (s *ClientService) SearchByName(ctx context.Context, fragment string) ([]model.Client, error) {
	clients, err := s.repo.SearchByName(ctx, fragment)
	if err != nil {
		return nil, err
	}
	if len(clients) == 0 {
		return nil, fmt.Errorf("%w: no client name contains %q", ErrClientNotFound, fragment)
	}
	return clients, nil
}

// GetByCPF returns ErrClientNotFound if the CPF is not registered.
func (s *ClientService) GetByCPF(ctx context.Context, cpf string) (*model.Client, error) {
	client, err := s.repo.GetByCPF(ctx, cpf)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	if client == nil {
		return nil, ErrClientNotFound
	}
	return client, nil
}

// Create registers a client. The request must already be normalized and validated.
// Returns ErrClientExists if the CPF is taken; uniqueness is enforced by the
// primary key, not by a prior lookup.
func (s *ClientService) Create(ctx context.Context, req *model.CreateClientRequest) (*model.Client, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	client := &model.Client{CPF: req.CPF, Name: req.Name}
	if err := s.repo.Insert(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// Update changes the name and/or CPF of the client identified by cpf.
// Returns ErrNoFieldsToUpdate when the request carries neither.
func (s *ClientService) Update(ctx context.Context, cpf string, req *model.UpdateClientRequest) (*model.Client, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}
	patch := req.Patch()
	if patch.Empty() {
		return nil, ErrNoFieldsToUpdate
	}
	return s.repo.Update(ctx, cpf, patch)
}

// DeleteByCPF returns ErrClientNotFound if nothing was deleted.
func (s *ClientService) DeleteByCPF(ctx context.Context, cpf string) error {
	return s.repo.Delete(ctx, cpf)
}

// DeleteByName deletes the one client whose name equals name exactly and
// returns its CPF. A name shared by several clients is rejected with
// ErrAmbiguousName; delete those by CPF instead.
func (s *ClientService) DeleteByName(ctx context.Context, name string) (string, error) {
	return deleteOneByName(ctx, s.pool, name, s.repo.LockCPFsByName, s.repo.DeleteTx, ErrClientNotFound)
}
