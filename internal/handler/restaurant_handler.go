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

// RestaurantServiceInterface defines the interface for restaurant business logic.
type RestaurantServiceInterface interface {
	List(ctx context.Context) ([]model.Restaurant, error)
	SearchByTradeName(ctx context.Context, fragment string) ([]model.Restaurant, error)
	GetByCNPJ(ctx context.Context, cnpj string) (*model.Restaurant, error)
	Create(ctx context.Context, req *model.CreateRestaurantRequest) (*model.Restaurant, error)
	Update(ctx context.Context, cnpj string, req *model.UpdateRestaurantRequest) (*model.Restaurant, error)
	DeleteByCNPJ(ctx context.Context, cnpj string) error
	DeleteByTradeName(ctx context.Context, name string) (string, error)
}

// RestaurantHandler handles HTTP requests under /restaurantes.
type RestaurantHandler struct {
	service   RestaurantServiceInterface
	validator *validator.Validate
}

func NewRestaurantHandler(svc RestaurantServiceInterface, v *validator.Validate) *RestaurantHandler {
	return &RestaurantHandler{service: svc, validator: v}
}

func (h *RestaurantHandler) ListRestaurants(c *fiber.Ctx) error {
	restaurants, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(restaurants)
}

func (h *RestaurantHandler) GetRestaurant(c *fiber.Ctx) error {
	restaurant, err := h.service.GetByCNPJ(c.UserContext(), document.Digits(c.Params("cnpj")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(restaurant)
}

func (h *RestaurantHandler) SearchRestaurants(c *fiber.Ctx) error {
	name, err := nameParam(c)
	if err != nil {
		return respondError(c, err)
	}
	restaurants, err := h.service.SearchByTradeName(c.UserContext(), name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(restaurants)
}

func (h *RestaurantHandler) CreateRestaurant(c *fiber.Ctx) error {
	var req model.CreateRestaurantRequest
	if err := bind(c, h.validator, &req); err != nil {
		telemetry.IncCreateFailed(telemetry.EntityRestaurant, failureReason(err))
		return respondError(c, err)
	}

	restaurant, err := h.service.Create(c.UserContext(), &req)
	if err != nil {
		telemetry.IncCreateFailed(telemetry.EntityRestaurant, failureReason(err))
		return respondError(c, err)
	}

	telemetry.IncCreated(telemetry.EntityRestaurant)
	requestLog(c, log.Info()).Str("cnpj", document.FormatCNPJ(restaurant.CNPJ)).Msg("restaurant created")
	return c.Status(fiber.StatusCreated).JSON(restaurant)
}

func (h *RestaurantHandler) UpdateRestaurant(c *fiber.Ctx) error {
	var req model.UpdateRestaurantRequest
	if err := bind(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}

	cnpj := document.Digits(c.Params("cnpj"))
	restaurant, err := h.service.Update(c.UserContext(), cnpj, &req)
	if err != nil {
		return respondError(c, err)
	}

	requestLog(c, log.Info()).Str("cnpj", document.FormatCNPJ(cnpj)).Str("new_cnpj", document.FormatCNPJ(restaurant.CNPJ)).Msg("restaurant updated")
	return c.JSON(restaurant)
}

func (h *RestaurantHandler) DeleteRestaurantByCNPJ(c *fiber.Ctx) error {
	cnpj := document.Digits(c.Params("cnpj"))
	if err := h.service.DeleteByCNPJ(c.UserContext(), cnpj); err != nil {
		return respondError(c, err)
	}

	telemetry.AddDeleted(telemetry.EntityRestaurant, 1)
	requestLog(c, log.Info()).Str("cnpj", document.FormatCNPJ(cnpj)).Msg("restaurant deleted")
	return c.JSON(fiber.Map{
		"message": "Restaurante excluido com sucesso!",
		"cnpj":    cnpj,
	})
}

// DeleteRestaurantByTradeName requires the trade name to match exactly one restaurant.
func (h *RestaurantHandler) DeleteRestaurantByTradeName(c *fiber.Ctx) error {
	name, err := nameParam(c)
	if err != nil {
		return respondError(c, err)
	}

	cnpj, err := h.service.DeleteByTradeName(c.UserContext(), name)
	if err != nil {
		return respondError(c, err)
	}

	telemetry.AddDeleted(telemetry.EntityRestaurant, 1)
	requestLog(c, log.Info()).Str("cnpj", document.FormatCNPJ(cnpj)).Msg("restaurant deleted by trade name")
	return c.JSON(fiber.Map{
		"message":      "Restaurante excluido com sucesso!",
		"nomeFantasia": name,
		"cnpj":         cnpj,
	})
}
