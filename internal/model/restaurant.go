package model

import (
	"strings"
	"time"

	"github.com/fairyhunter13/fiscal-coupon-api/pkg/document"
)

// Restaurant represents a business identified by CNPJ
type Restaurant struct {
	CNPJ      string    `json:"cnpj"`
	TradeName string    `json:"nomeFantasia"`
	CreatedAt time.Time `json:"-"`
}

// CreateRestaurantRequest is the DTO for POST /restaurantes
type CreateRestaurantRequest struct {
	TradeName string `json:"nomeFantasia" validate:"required,notblank,max=50"`
	CNPJ      string `json:"cnpj" validate:"required,cnpj"`
}

func (r *CreateRestaurantRequest) Normalize() {
	r.TradeName = strings.TrimSpace(r.TradeName)
	r.CNPJ = document.Digits(r.CNPJ)
}

// UpdateRestaurantRequest is the DTO for PUT /restaurantes/:cnpj
type UpdateRestaurantRequest struct {
	TradeName *string `json:"nomeFantasia" validate:"omitnil,notblank,max=50"`
	CNPJ      *string `json:"cnpj" validate:"omitnil,cnpj"`
}

func (r *UpdateRestaurantRequest) Normalize() {
	r.TradeName = trimPtr(r.TradeName)
	r.CNPJ = digitsPtr(r.CNPJ)
}

func (r *UpdateRestaurantRequest) Patch() RestaurantPatch {
	return RestaurantPatch{TradeName: r.TradeName, CNPJ: r.CNPJ}
}

// RestaurantPatch holds the restaurant columns to change.
type RestaurantPatch struct {
	TradeName *string
	CNPJ      *string
}

func (p RestaurantPatch) Empty() bool {
	return p.TradeName == nil && p.CNPJ == nil
}
