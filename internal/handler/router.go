package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// NewApp creates the fiber app with the JSON error boundary installed.
func NewApp(name string) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      name,
		ReadTimeout:  30 * time.Second,  // Max time to read request
		WriteTimeout: 30 * time.Second,  // Max time to write response
		IdleTimeout:  120 * time.Second, // Max time for keep-alive connections
		BodyLimit:    1 * 1024 * 1024,   // 1MB body limit
		UnescapePath: true,              // names in path params arrive percent-encoded
		ErrorHandler: ErrorHandler,
	})
}

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Health      *HealthHandler
	Clients     *ClientHandler
	Restaurants *RestaurantHandler
	Coupons     *CouponHandler
}

// RegisterRoutes mounts the API routes and, last, the catch-all NotFound.
// Middleware and any extra routes (such as /metrics) must be added before.
func RegisterRoutes(app *fiber.App, h Handlers) {
	app.Get("/", h.Health.Root)
	app.Get("/health", h.Health.Check)

	clientes := app.Group("/clientes")
	clientes.Get("/", h.Clients.ListClients)
	clientes.Get("/cpf/:cpf", h.Clients.GetClient)
	clientes.Get("/nome/:nome", h.Clients.SearchClients)
	clientes.Post("/", h.Clients.CreateClient)
	clientes.Put("/:cpf", h.Clients.UpdateClient)
	clientes.Delete("/excluir-clientes-cpf/:cpf/permanente", h.Clients.DeleteClientByCPF)
	clientes.Delete("/excluir-cliente-nome/:nome/permanente", h.Clients.DeleteClientByName)

	restaurantes := app.Group("/restaurantes")
	restaurantes.Get("/", h.Restaurants.ListRestaurants)
	restaurantes.Get("/cnpj/:cnpj", h.Restaurants.GetRestaurant)
	restaurantes.Get("/nome-fantasia/:nome", h.Restaurants.SearchRestaurants)
	restaurantes.Post("/", h.Restaurants.CreateRestaurant)
	restaurantes.Put("/:cnpj", h.Restaurants.UpdateRestaurant)
	restaurantes.Delete("/excluir-restaurantes-cnpj/:cnpj/permanente", h.Restaurants.DeleteRestaurantByCNPJ)
	restaurantes.Delete("/excluir-restaurantes-nome-fantasia/:nome/permanente", h.Restaurants.DeleteRestaurantByTradeName)

	cupons := app.Group("/cupons")
	cupons.Get("/", h.Coupons.ListCoupons)
	cupons.Get("/id/:id", h.Coupons.GetCoupon)
	cupons.Get("/cpf/:cpf", h.Coupons.ListCouponsByCPF)
	cupons.Get("/cnpj/:cnpj", h.Coupons.ListCouponsByCNPJ)
	cupons.Get("/nome-cliente/:nome", h.Coupons.SearchCouponsByClientName)
	cupons.Get("/nome-fantasia/:nome", h.Coupons.SearchCouponsByTradeName)
	cupons.Post("/", h.Coupons.CreateCoupon)
	cupons.Put("/:id", h.Coupons.UpdateCoupon)
	cupons.Delete("/excluir-cupom-id/:id/permanente", h.Coupons.DeleteCouponByID)
	cupons.Delete("/excluir-cupom-cpf/:cpf/permanente", h.Coupons.DeleteCouponsByCPF)
	cupons.Delete("/excluir-cupom-cnpj/:cnpj/permanente", h.Coupons.DeleteCouponsByCNPJ)

	app.Use(NotFound)
}
