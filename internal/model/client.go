package model

import (
	"strings"
	"time"

	"github.com/fairyhunter13/fiscal-coupon-api/pkg/document"
)

// Client represents a customer identified by CPF
type Client struct {
	CPF       string    `json:"cpf"`
	Name      string    `json:"nome"`
	CreatedAt time.Time `json:"-"` // Not exposed in API
}

// CreateClientRequest is the DTO for POST /clientes
type CreateClientRequest struct {
	Name string `json:"nome" validate:"required,notblank,max=50"`
	CPF  string `json:"cpf" validate:"required,cpf"`
}

// Normalize trims the name and strips punctuation from the CPF.
func (r *CreateClientRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.CPF = document.Digits(r.CPF)
}

// UpdateClientRequest is the DTO for PUT /clientes/:cpf.
// Pointers distinguish an omitted field from one sent empty.
type UpdateClientRequest struct {
	Name *string `json:"nome" validate:"omitnil,notblank,max=50"`
	CPF  *string `json:"cpf" validate:"omitnil,cpf"`
}

// Normalize trims the name and strips punctuation from the CPF, when present.
func (r *UpdateClientRequest) Normalize() {
	r.Name = trimPtr(r.Name)
	r.CPF = digitsPtr(r.CPF)
}

// Patch returns the columns to update.
func (r *UpdateClientRequest) Patch() ClientPatch {
	return ClientPatch{Name: r.Name, CPF: r.CPF}
}

// ClientPatch holds the client columns to change; nil fields are left as is.
type ClientPatch struct {
	Name *string
	CPF  *string
}

// Empty reports whether the patch changes nothing.
func (p ClientPatch) Empty() bool {
	return p.Name == nil && p.CPF == nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func digitsPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := document.Digits(*s)
	return &v
}
