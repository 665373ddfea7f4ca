package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/fiscal-coupon-api/internal/model"
	"github.com/fairyhunter13/fiscal-coupon-api/pkg/database"
)

// RestaurantRepositoryInterface defines the interface for restaurant data access.
type RestaurantRepositoryInterface interface {
	List(ctx context.Context) ([]model.Restaurant, error)
	SearchByTradeName(ctx context.Context, fragment string) ([]model.Restaurant, error)
	GetByCNPJ(ctx context.Context, cnpj string) (*model.Restaurant, error)
	Insert(ctx context.Context, restaurant *model.Restaurant) error
	Update(ctx context.Context, cnpj string, patch model.RestaurantPatch) (*model.Restaurant, error)
	Delete(ctx context.Context, cnpj string) error
	DeleteTx(ctx context.Context, tx database.TxQuerier, cnpj string) error
	LockCNPJsByTradeName(ctx context.Context, tx database.TxQuerier, name string) ([]string, error)
}

// RestaurantService provides business logic for restaurant operations.
type RestaurantService struct {
	pool TxBeginner
	repo RestaurantRepositoryInterface
}

func NewRestaurantService(pool *pgxpool.Pool, repo RestaurantRepositoryInterface) *RestaurantService {
	return &RestaurantService{pool: pool, repo: repo}
}

func NewRestaurantServiceWithTxBeginner(pool TxBeginner, repo RestaurantRepositoryInterface) *RestaurantService {
	return &RestaurantService{pool: pool, repo: repo}
}

func (s *RestaurantService) List(ctx context.Context) ([]model.Restaurant, error) {
	restaurants, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(restaurants) == 0 {
		return nil, fmt.Errorf("%w: no restaurants registered", ErrRestaurantNotFound)
	}
	return restaurants, nil
}

func (s *RestaurantService) SearchByTradeName(ctx context.Context, fragment string) ([]model.Restaurant, error) {
	restaurants, err := s.repo.SearchByTradeName(ctx, fragment)
	if err != nil {
		return nil, err
	}
	if len(restaurants) == 0 {
		return nil, fmt.Errorf("%w: no trade name contains %q", ErrRestaurantNotFound, fragment)
	}
	return restaurants, nil
}

func (s *RestaurantService) GetByCNPJ(ctx context.Context, cnpj string) (*model.Restaurant, error) {
	restaurant, err := s.repo.GetByCNPJ(ctx, cnpj)
	if err != nil {
		return nil, fmt.Errorf("get restaurant: %w", err)
	}
	if restaurant == nil {
		return nil, ErrRestaurantNotFound
	}
	return restaurant, nil
}

// Create returns ErrRestaurantExists if the CNPJ is taken.
func (s *RestaurantService) Create(ctx context.Context, req *model.CreateRestaurantRequest) (*model.Restaurant, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	restaurant := &model.Restaurant{CNPJ: req.CNPJ, TradeName: req.TradeName}
	if err := s.repo.Insert(ctx, restaurant); err != nil {
		return nil, err
	}
	return restaurant, nil
}

func (s *RestaurantService) Update(ctx context.Context, cnpj string, req *model.UpdateRestaurantRequest) (*model.Restaurant, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}
	patch := req.Patch()
	if patch.Empty() {
		return nil, ErrNoFieldsToUpdate
	}
	return s.repo.Update(ctx, cnpj, patch)
}

func (s *RestaurantService) DeleteByCNPJ(ctx context.Context, cnpj string) error {
	return s.repo.Delete(ctx, cnpj)
}

// DeleteByTradeName deletes the one restaurant with exactly this trade name
// and returns its CNPJ; see ClientService.DeleteByName.
func (s *RestaurantService) DeleteByTradeName(ctx context.Context, name string) (string, error) {
	return deleteOneByName(ctx, s.pool, name, s.repo.LockCNPJsByTradeName, s.repo.DeleteTx, ErrRestaurantNotFound)
}
