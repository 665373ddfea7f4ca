package model

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/fiscal-coupon-api/pkg/document"
)

// DateLayout is the wire format of purchase dates.
const DateLayout = "2006-01-02"

// MaxAmount is the exclusive upper bound of a coupon amount; valor is NUMERIC(12,2).
const MaxAmount = 10000000000

// ValidAmount reports whether v fits the valor column unchanged: at least one
// cent, below MaxAmount and with no more than two decimal places.
func ValidAmount(v float64) bool {
	return v >= 0.01 && v < MaxAmount && v == math.Round(v*100)/100
}

// Coupon represents a fiscal coupon (cupom fiscal). Customer and restaurant
// names are copies taken at purchase time.
type Coupon struct {
	ID             uuid.UUID
	Amount         float64
	PurchaseDate   time.Time
	ClientCPF      string
	ClientName     string
	RestaurantCNPJ string
	TradeName      string
	CreatedAt      time.Time
}

// CouponResponse is the API representation of a coupon
type CouponResponse struct {
	ID             string  `json:"id"`
	Amount         float64 `json:"valor"`
	Date           string  `json:"data"`
	ClientCPF      string  `json:"cpfCliente"`
	ClientName     string  `json:"nomeCliente"`
	RestaurantCNPJ string  `json:"cnpjRestaurante"`
	TradeName      string  `json:"nomeFantasia"`
}

// Response converts the coupon to its API representation.
func (c *Coupon) Response() CouponResponse {
	return CouponResponse{
		ID:             c.ID.String(),
		Amount:         c.Amount,
		Date:           c.PurchaseDate.Format(DateLayout),
		ClientCPF:      c.ClientCPF,
		ClientName:     c.ClientName,
		RestaurantCNPJ: c.RestaurantCNPJ,
		TradeName:      c.TradeName,
	}
}

// CouponResponses converts a slice, returning an empty slice (not nil) for no coupons.
func CouponResponses(coupons []Coupon) []CouponResponse {
	out := make([]CouponResponse, 0, len(coupons))
	for i := range coupons {
		out = append(out, coupons[i].Response())
	}
	return out
}

// CreateCouponRequest is the DTO for POST /cupons
type CreateCouponRequest struct {
	Amount         *float64 `json:"valor" validate:"required,gt=0,lt=10000000000,cents"`
	Date           string   `json:"data" validate:"required,datetime=2006-01-02"`
	ClientCPF      string   `json:"cpfCliente" validate:"required,cpf"`
	ClientName     string   `json:"nomeCliente" validate:"required,notblank,max=50"`
	RestaurantCNPJ string   `json:"cnpjRestaurante" validate:"required,cnpj"`
	TradeName      string   `json:"nomeFantasia" validate:"required,notblank,max=50"`
}

func (r *CreateCouponRequest) Normalize() {
	r.Date = strings.TrimSpace(r.Date)
	r.ClientCPF = document.Digits(r.ClientCPF)
	r.ClientName = strings.TrimSpace(r.ClientName)
	r.RestaurantCNPJ = document.Digits(r.RestaurantCNPJ)
	r.TradeName = strings.TrimSpace(r.TradeName)
}

// Coupon builds the coupon to insert. The caller assigns the ID.
func (r *CreateCouponRequest) Coupon() (*Coupon, error) {
	if r.Amount == nil {
		return nil, fmt.Errorf("amount is required")
	}
	if !ValidAmount(*r.Amount) {
		return nil, fmt.Errorf("amount %v cannot be stored as a positive value with two decimal places", *r.Amount)
	}
	date, err := time.Parse(DateLayout, r.Date)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", r.Date, err)
	}
	return &Coupon{
		Amount:         *r.Amount,
		PurchaseDate:   date,
		ClientCPF:      r.ClientCPF,
		ClientName:     r.ClientName,
		RestaurantCNPJ: r.RestaurantCNPJ,
		TradeName:      r.TradeName,
	}, nil
}

// UpdateCouponRequest is the DTO for PUT /cupons/:id
type UpdateCouponRequest struct {
	Amount         *float64 `json:"valor" validate:"omitnil,gt=0,lt=10000000000,cents"`
	Date           *string  `json:"data" validate:"omitnil,datetime=2006-01-02"`
	ClientCPF      *string  `json:"cpfCliente" validate:"omitnil,cpf"`
	ClientName     *string  `json:"nomeCliente" validate:"omitnil,notblank,max=50"`
	RestaurantCNPJ *string  `json:"cnpjRestaurante" validate:"omitnil,cnpj"`
	TradeName      *string  `json:"nomeFantasia" validate:"omitnil,notblank,max=50"`
}

func (r *UpdateCouponRequest) Normalize() {
	r.Date = trimPtr(r.Date)
	r.ClientCPF = digitsPtr(r.ClientCPF)
	r.ClientName = trimPtr(r.ClientName)
	r.RestaurantCNPJ = digitsPtr(r.RestaurantCNPJ)
	r.TradeName = trimPtr(r.TradeName)
}

// Patch converts the request into typed columns to update.
func (r *UpdateCouponRequest) Patch() (CouponPatch, error) {
	if r.Amount != nil && !ValidAmount(*r.Amount) {
		return CouponPatch{}, fmt.Errorf("amount %v cannot be stored as a positive value with two decimal places", *r.Amount)
	}
	p := CouponPatch{
		Amount:         r.Amount,
		ClientCPF:      r.ClientCPF,
		ClientName:     r.ClientName,
		RestaurantCNPJ: r.RestaurantCNPJ,
		TradeName:      r.TradeName,
	}
	if r.Date != nil {
		date, err := time.Parse(DateLayout, *r.Date)
		if err != nil {
			return CouponPatch{}, fmt.Errorf("parse date %q: %w", *r.Date, err)
		}
		p.PurchaseDate = &date
	}
	return p, nil
}

// CouponPatch holds the coupon columns to change; nil fields are left as is.
type CouponPatch struct {
	Amount         *float64
	PurchaseDate   *time.Time
	ClientCPF      *string
	ClientName     *string
	RestaurantCNPJ *string
	TradeName      *string
}

func (p CouponPatch) Empty() bool {
	return p.Amount == nil && p.PurchaseDate == nil && !p.TouchesReferences()
}

// TouchesReferences reports whether the patch changes the client or
// restaurant a coupon points to, or the names copied from them.
func (p CouponPatch) TouchesReferences() bool {
	return p.ClientCPF != nil || p.ClientName != nil || p.RestaurantCNPJ != nil || p.TradeName != nil
}

// ApplyTo returns a copy of c with the patch applied.
func (p CouponPatch) ApplyTo(c Coupon) Coupon {
	if p.Amount != nil {
		c.Amount = *p.Amount
	}
	if p.PurchaseDate != nil {
		c.PurchaseDate = *p.PurchaseDate
	}
	if p.ClientCPF != nil {
		c.ClientCPF = *p.ClientCPF
	}
	if p.ClientName != nil {
		c.ClientName = *p.ClientName
	}
	if p.RestaurantCNPJ != nil {
		c.RestaurantCNPJ = *p.RestaurantCNPJ
	}
	if p.TradeName != nil {
		c.TradeName = *p.TradeName
	}
	return c
}
