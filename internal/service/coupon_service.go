package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/fiscal-coupon-api/internal/model"
	"github.com/fairyhunter13/fiscal-coupon-api/pkg/database"
)

// CouponRepositoryInterface defines the interface for coupon data access.
type CouponRepositoryInterface interface {
	List(ctx context.Context) ([]model.Coupon, error)
	ListByCPF(ctx context.Context, cpf string) ([]model.Coupon, error)
	ListByCNPJ(ctx context.Context, cnpj string) ([]model.Coupon, error)
	SearchByClientName(ctx context.Context, fragment string) ([]model.Coupon, error)
	SearchByTradeName(ctx context.Context, fragment string) ([]model.Coupon, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error)
	GetByIDForUpdate(ctx context.Context, tx database.TxQuerier, id uuid.UUID) (*model.Coupon, error)
	Insert(ctx context.Context, tx database.TxQuerier, coupon *model.Coupon) error
	Update(ctx context.Context, tx database.TxQuerier, id uuid.UUID, patch model.CouponPatch) (*model.Coupon, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
	DeleteByCPF(ctx context.Context, cpf string) (int64, error)
	DeleteByCNPJ(ctx context.Context, cnpj string) (int64, error)
}

// ClientLookup finds a client inside a transaction, share-locking the row.
type ClientLookup interface {
	GetByCPFForShare(ctx context.Context, tx database.TxQuerier, cpf string) (*model.Client, error)
}

// RestaurantLookup finds a restaurant inside a transaction, share-locking the row.
type RestaurantLookup interface {
	GetByCNPJForShare(ctx context.Context, tx database.TxQuerier, cnpj string) (*model.Restaurant, error)
}

// CouponService provides business logic for coupon operations.
type CouponService struct {
	pool        TxBeginner
	coupons     CouponRepositoryInterface
	clients     ClientLookup
	restaurants RestaurantLookup
	newID       func() uuid.UUID
}

// NewCouponService creates a new CouponService with the given pool and repositories.
func NewCouponService(pool *pgxpool.Pool, coupons CouponRepositoryInterface, clients ClientLookup, restaurants RestaurantLookup) *CouponService {
	return NewCouponServiceWithTxBeginner(pool, coupons, clients, restaurants)
}

// NewCouponServiceWithTxBeginner creates a CouponService with a custom TxBeginner.
// Primarily used for testing.
func NewCouponServiceWithTxBeginner(pool TxBeginner, coupons CouponRepositoryInterface, clients ClientLookup, restaurants RestaurantLookup) *CouponService {
	return &CouponService{
		pool:        pool,
		coupons:     coupons,
		clients:     clients,
		restaurants: restaurants,
		newID:       uuid.New,
	}
}

func parseID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return uid, nil
}

func nonEmpty(coupons []model.Coupon, err error, what string) ([]model.Coupon, error) {
	if err != nil {
		return nil, err
	}
	if len(coupons) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrCouponNotFound, what)
	}
	return coupons, nil
}

// List returns every coupon. Returns ErrCouponNotFound when there are none.
func (s *CouponService) List(ctx context.Context) ([]model.Coupon, error) {
	coupons, err := s.coupons.List(ctx)
	return nonEmpty(coupons, err, "no coupons registered")
}

func (s *CouponService) ListByCPF(ctx context.Context, cpf string) ([]model.Coupon, error) {
	coupons, err := s.coupons.ListByCPF(ctx, cpf)
	return nonEmpty(coupons, err, "no coupons for cpf "+cpf)
}

func (s *CouponService) ListByCNPJ(ctx context.Context, cnpj string) ([]model.Coupon, error) {
	coupons, err := s.coupons.ListByCNPJ(ctx, cnpj)
	return nonEmpty(coupons, err, "no coupons for cnpj "+cnpj)
}

func (s *CouponService) SearchByClientName(ctx context.Context, fragment string) ([]model.Coupon, error) {
	coupons, err := s.coupons.SearchByClientName(ctx, fragment)
	return nonEmpty(coupons, err, fmt.Sprintf("no coupons for client name %q", fragment))
}

func (s *CouponService) SearchByTradeName(ctx context.Context, fragment string) ([]model.Coupon, error) {
	coupons, err := s.coupons.SearchByTradeName(ctx, fragment)
	return nonEmpty(coupons, err, fmt.Sprintf("no coupons for trade name %q", fragment))
}

// GetByID returns ErrInvalidID for a malformed id and ErrCouponNotFound when absent.
func (s *CouponService) GetByID(ctx context.Context, id string) (*model.Coupon, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	coupon, err := s.coupons.GetByID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	return coupon, nil
}

// Create records a coupon after checking that its CPF and CNPJ are registered
// under the names it carries. The referenced rows stay share-locked until the
// insert commits, so they cannot be renamed or deleted in between.
// Returns:
//   - ErrInvalidRequest if the request is nil, incomplete or its amount does not fit valor
//   - ErrReferenceNotFound if the client or restaurant doesn't exist
//   - ErrNameMismatch if a name differs from the registered one
func (s *CouponService) Create(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error) {
	if req == nil || req.Amount == nil {
		return nil, ErrInvalidRequest
	}
	coupon, err := req.Coupon()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	coupon.ID = s.newID()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	if err := s.verifyReferences(ctx, tx, coupon); err != nil {
		return nil, err
	}

	if err := s.coupons.Insert(ctx, tx, coupon); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return coupon, nil
}

// Update applies the fields present in req to the coupon with the given id.
// When any client or restaurant field changes, the merged result is checked
// the same way Create checks a new coupon.
func (s *CouponService) Update(ctx context.Context, id string, req *model.UpdateCouponRequest) (*model.Coupon, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrInvalidRequest
	}
	patch, err := req.Patch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if patch.Empty() {
		return nil, ErrNoFieldsToUpdate
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	current, err := s.coupons.GetByIDForUpdate(ctx, tx, uid)
	if err != nil {
		return nil, err
	}

	if patch.TouchesReferences() {
		merged := patch.ApplyTo(*current)
		if err := s.verifyReferences(ctx, tx, &merged); err != nil {
			return nil, err
		}
	}

	updated, err := s.coupons.Update(ctx, tx, uid, patch)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return updated, nil
}

func (s *CouponService) verifyReferences(ctx context.Context, tx database.TxQuerier, c *model.Coupon) error {
	client, err := s.clients.GetByCPFForShare(ctx, tx, c.ClientCPF)
	if err != nil {
		return fmt.Errorf("lookup client: %w", err)
	}
	if client == nil {
		return fmt.Errorf("%w: no client with cpf %s", ErrReferenceNotFound, c.ClientCPF)
	}
	if client.Name != c.ClientName {
		return fmt.Errorf("%w: client %s is registered as %q", ErrNameMismatch, c.ClientCPF, client.Name)
	}

	restaurant, err := s.restaurants.GetByCNPJForShare(ctx, tx, c.RestaurantCNPJ)
	if err != nil {
		return fmt.Errorf("lookup restaurant: %w", err)
	}
	if restaurant == nil {
		return fmt.Errorf("%w: no restaurant with cnpj %s", ErrReferenceNotFound, c.RestaurantCNPJ)
	}
	if restaurant.TradeName != c.TradeName {
		return fmt.Errorf("%w: restaurant %s is registered as %q", ErrNameMismatch, c.RestaurantCNPJ, restaurant.TradeName)
	}
	return nil
}

// DeleteByID returns ErrInvalidID or ErrCouponNotFound.
func (s *CouponService) DeleteByID(ctx context.Context, id string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	return s.coupons.DeleteByID(ctx, uid)
}

// DeleteByCPF removes every coupon of a client and returns the count.
// Returns ErrCouponNotFound when the client has none.
func (s *CouponService) DeleteByCPF(ctx context.Context, cpf string) (int64, error) {
	n, err := s.coupons.DeleteByCPF(ctx, cpf)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: no coupons for cpf %s", ErrCouponNotFound, cpf)
	}
	return n, nil
}

// DeleteByCNPJ removes every coupon of a restaurant and returns the count.
func (s *CouponService) DeleteByCNPJ(ctx context.Context, cnpj string) (int64, error) {
	n, err := s.coupons.DeleteByCNPJ(ctx, cnpj)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: no coupons for cnpj %s", ErrCouponNotFound, cnpj)
	}
	return n, nil
}
