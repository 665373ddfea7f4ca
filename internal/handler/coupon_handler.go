package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/fiscal-coupon-api/internal/model"
	"github.com/fairyhunter13/fiscal-coupon-api/internal/telemetry"
	"github.com/fairyhunter13/fiscal-coupon-api/pkg/document"
)

// CouponServiceInterface defines the interface for coupon business logic.
type CouponServiceInterface interface {
	List(ctx context.Context) ([]model.Coupon, error)
	ListByCPF(ctx context.Context, cpf string) ([]model.Coupon, error)
	ListByCNPJ(ctx context.Context, cnpj string) ([]model.Coupon, error)
	SearchByClientName(ctx context.Context, fragment string) ([]model.Coupon, error)
	SearchByTradeName(ctx context.Context, fragment string) ([]model.Coupon, error)
	GetByID(ctx context.Context, id string) (*model.Coupon, error)
	Create(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error)
	Update(ctx context.Context, id string, req *model.UpdateCouponRequest) (*model.Coupon, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteByCPF(ctx context.Context, cpf string) (int64, error)
	DeleteByCNPJ(ctx context.Context, cnpj string) (int64, error)
}

// CouponHandler handles HTTP requests under /cupons.
type CouponHandler struct {
	service   CouponServiceInterface
	validator *validator.Validate
}

// NewCouponHandler creates a new CouponHandler with the given service and validator.
func NewCouponHandler(svc CouponServiceInterface, v *validator.Validate) *CouponHandler {
	return &CouponHandler{service: svc, validator: v}
}

func (h *CouponHandler) list(c *fiber.Ctx, coupons []model.Coupon, err error) error {
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(model.CouponResponses(coupons))
}

// ListCoupons handles GET /cupons.
func (h *CouponHandler) ListCoupons(c *fiber.Ctx) error {
	coupons, err := h.service.List(c.UserContext())
	return h.list(c, coupons, err)
}

// ListCouponsByCPF handles GET /cupons/cpf/:cpf.
func (h *CouponHandler) ListCouponsByCPF(c *fiber.Ctx) error {
	coupons, err := h.service.ListByCPF(c.UserContext(), document.Digits(c.Params("cpf")))
	return h.list(c, coupons, err)
}

// ListCouponsByCNPJ handles GET /cupons/cnpj/:cnpj.
func (h *CouponHandler) ListCouponsByCNPJ(c *fiber.Ctx) error {
	coupons, err := h.service.ListByCNPJ(c.UserContext(), document.Digits(c.Params("cnpj")))
	return h.list(c, coupons, err)
}

// SearchCouponsByClientName handles GET /cupons/nome-cliente/:nome.
func (h *CouponHandler) SearchCouponsByClientName(c *fiber.Ctx) error {
	name, err := nameParam(c)
	if err != nil {
		return respondError(c, err)
	}
	coupons, err := h.service.SearchByClientName(c.UserContext(), name)
	return h.list(c, coupons, err)
}

// SearchCouponsByTradeName handles GET /cupons/nome-fantasia/:nome.
func (h *CouponHandler) SearchCouponsByTradeName(c *fiber.Ctx) error {
	name, err := nameParam(c)
	if err != nil {
		return respondError(c, err)
	}
	coupons, err := h.service.SearchByTradeName(c.UserContext(), name)
	return h.list(c, coupons, err)
}

// GetCoupon handles GET /cupons/id/:id.
func (h *CouponHandler) GetCoupon(c *fiber.Ctx) error {
	coupon, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(coupon.Response())
}

// CreateCoupon handles POST /cupons. The CPF and CNPJ must already be
// registered under the names given in the body.
func (h *CouponHandler) CreateCoupon(c *fiber.Ctx) error {
	var req model.CreateCouponRequest
	if err := bind(c, h.validator, &req); err != nil {
		telemetry.IncCreateFailed(telemetry.EntityCoupon, failureReason(err))
		return respondError(c, err)
	}

	coupon, err := h.service.Create(c.UserContext(), &req)
	if err != nil {
		telemetry.IncCreateFailed(telemetry.EntityCoupon, failureReason(err))
		return respondError(c, err)
	}

	telemetry.IncCreated(telemetry.EntityCoupon)
	requestLog(c, log.Info()).
		Str("coupon_id", coupon.ID.String()).
		Str("cpf", document.FormatCPF(coupon.ClientCPF)).
		Str("cnpj", document.FormatCNPJ(coupon.RestaurantCNPJ)).
		Msg("coupon created")
	return c.Status(fiber.StatusCreated).JSON(coupon.Response())
}

// UpdateCoupon handles PUT /cupons/:id.
func (h *CouponHandler) UpdateCoupon(c *fiber.Ctx) error {
	var req model.UpdateCouponRequest
	if err := bind(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}

	coupon, err := h.service.Update(c.UserContext(), c.Params("id"), &req)
	if err != nil {
		return respondError(c, err)
	}

	requestLog(c, log.Info()).Str("coupon_id", coupon.ID.String()).Msg("coupon updated")
	return c.JSON(coupon.Response())
}

// DeleteCouponByID handles DELETE /cupons/excluir-cupom-id/:id/permanente.
func (h *CouponHandler) DeleteCouponByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteByID(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}

	telemetry.AddDeleted(telemetry.EntityCoupon, 1)
	requestLog(c, log.Info()).Str("coupon_id", id).Msg("coupon deleted")
	return c.JSON(fiber.Map{
		"message": "Cupom excluido com sucesso!",
		"id":      id,
	})
}

// DeleteCouponsByCPF handles DELETE /cupons/excluir-cupom-cpf/:cpf/permanente.
func (h *CouponHandler) DeleteCouponsByCPF(c *fiber.Ctx) error {
	cpf := document.Digits(c.Params("cpf"))
	n, err := h.service.DeleteByCPF(c.UserContext(), cpf)
	if err != nil {
		return respondError(c, err)
	}

	telemetry.AddDeleted(telemetry.EntityCoupon, n)
	requestLog(c, log.Info()).Str("cpf", document.FormatCPF(cpf)).Int64("removed", n).Msg("coupons deleted by cpf")
	return c.JSON(fiber.Map{
		"message":   "Todos os cupons do cliente foram excluidos!",
		"cpf":       cpf,
		"removidos": n,
	})
}

// DeleteCouponsByCNPJ handles DELETE /cupons/excluir-cupom-cnpj/:cnpj/permanente.
func (h *CouponHandler) DeleteCouponsByCNPJ(c *fiber.Ctx) error {
	cnpj := document.Digits(c.Params("cnpj"))
	n, err := h.service.DeleteByCNPJ(c.UserContext(), cnpj)
	if err != nil {
		return respondError(c, err)
	}

	telemetry.AddDeleted(telemetry.EntityCoupon, n)
	requestLog(c, log.Info()).Str("cnpj", document.FormatCNPJ(cnpj)).Int64("removed", n).Msg("coupons deleted by cnpj")
	return c.JSON(fiber.Map{
		"message":   "Todos os cupons do restaurante foram excluidos!",
		"cnpj":      cnpj,
		"removidos": n,
	})
}
