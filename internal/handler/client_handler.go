package handler

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/fiscal-coupon-api/internal/model"
	"github.com/fairyhunter13/fiscal-coupon-api/internal/service"
	"github.com/fairyhunter13/fiscal-coupon-api/internal/telemetry"
	"github.com/fairyhunter13/fiscal-coupon-api/pkg/document"
)

// ClientServiceInterface defines the interface for client business logic.
type ClientServiceInterface interface {
	List(ctx context.Context) ([]model.Client, error)
	SearchByName(ctx context.Context, fragment string) ([]model.Client, error)
	GetByCPF(ctx context.Context, cpf string) (*model.Client, error)
	Create(ctx context.Context, req *model.CreateClientRequest) (*model.Client, error)
	Update(ctx context.Context, cpf string, req *model.UpdateClientRequest) (*model.Client, error)
	DeleteByCPF(ctx context.Context, cpf string) error
	DeleteByName(ctx context.Context, name string) (string, error)
}

// ClientHandler handles HTTP requests under /clientes.
type ClientHandler struct {
	service   ClientServiceInterface
	validator *validator.Validate
}

// NewClientHandler creates a new ClientHandler with the given service and validator.
func NewClientHandler(svc ClientServiceInterface, v *validator.Validate) *ClientHandler {
	return &ClientHandler{service: svc, validator: v}
}

// nameParam returns the trimmed :nome path parameter. Names must be valid
// UTF-8 without NUL bytes; PostgreSQL rejects anything else.
func nameParam(c *fiber.Ctx) (string, error) {
	name := strings.TrimSpace(c.Params("nome"))
	if name == "" {
		return "", fmt.Errorf("%w: nome is required", service.ErrInvalidRequest)
	}
	if !utf8.ValidString(name) || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: nome is not valid text", service.ErrInvalidRequest)
	}
	return name, nil
}

// ListClients handles GET /clientes.
func (h *ClientHandler) ListClients(c *fiber.Ctx) error {
	clients, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(clients)
}

// GetClient handles GET /clientes/cpf/:cpf. Punctuation in the CPF is ignored.
func (h *ClientHandler) GetClient(c *fiber.Ctx) error {
	client, err := h.service.GetByCPF(c.UserContext(), document.Digits(c.Params("cpf")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(client)
}

// SearchClients handles GET /clientes/nome/:nome.
func (h *ClientHandler) SearchClients(c *fiber.Ctx) error {
	name, err := nameParam(c)
	if err != nil {
		return respondError(c, err)
	}
	clients, err := h.service.SearchByName(c.UserContext(), name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(clients)
}

// CreateClient handles POST /clientes.
func (h *ClientHandler) CreateClient(c *fiber.Ctx) error {
	var req model.CreateClientRequest
	if err := bind(c, h.validator, &req); err != nil {
		telemetry.IncCreateFailed(telemetry.EntityClient, failureReason(err))
		return respondError(c, err)
	}

	client, err := h.service.Create(c.UserContext(), &req)
	if err != nil {
		telemetry.IncCreateFailed(telemetry.EntityClient, failureReason(err))
		return respondError(c, err)
	}

	telemetry.IncCreated(telemetry.EntityClient)
	requestLog(c, log.Info()).Str("cpf", document.FormatCPF(client.CPF)).Msg("client created")
	return c.Status(fiber.StatusCreated).JSON(client)
}

// UpdateClient handles PUT /clientes/:cpf. Only fields present in the body change.
func (h *ClientHandler) UpdateClient(c *fiber.Ctx) error {
	var req model.UpdateClientRequest
	if err := bind(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}

	cpf := document.Digits(c.Params("cpf"))
	client, err := h.service.Update(c.UserContext(), cpf, &req)
	if err != nil {
		return respondError(c, err)
	}

	requestLog(c, log.Info()).Str("cpf", document.FormatCPF(cpf)).Str("new_cpf", document.FormatCPF(client.CPF)).Msg("client updated")
	return c.JSON(client)
}

// DeleteClientByCPF handles DELETE /clientes/excluir-clientes-cpf/:cpf/permanente.
func (h *ClientHandler) DeleteClientByCPF(c *fiber.Ctx) error {
	cpf := document.Digits(c.Params("cpf"))
	if err := h.service.DeleteByCPF(c.UserContext(), cpf); err != nil {
		return respondError(c, err)
	}

	telemetry.AddDeleted(telemetry.EntityClient, 1)
	requestLog(c, log.Info()).Str("cpf", document.FormatCPF(cpf)).Msg("client deleted")
	return c.JSON(fiber.Map{
		"message": "Cliente excluido com sucesso!",
		"cpf":     cpf,
	})
}

// DeleteClientByName handles DELETE /clientes/excluir-cliente-nome/:nome/permanente.
// The name must match exactly one client.
func (h *ClientHandler) DeleteClientByName(c *fiber.Ctx) error {
	name, err := nameParam(c)
	if err != nil {
		return respondError(c, err)
	}

	cpf, err := h.service.DeleteByName(c.UserContext(), name)
	if err != nil {
		return respondError(c, err)
	}

	telemetry.AddDeleted(telemetry.EntityClient, 1)
	requestLog(c, log.Info()).Str("cpf", document.FormatCPF(cpf)).Msg("client deleted by name")
	return c.JSON(fiber.Map{
		"message": "Cliente excluido com sucesso!",
		"nome":    name,
		"cpf":     cpf,
	})
}
