package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/product-catalog/internal/transport/http/handler"
)

type Handlers struct {
	Product *handler.ProductHandler
	Health  *handler.HealthHandler
}

func RegisterRoutes(app *fiber.App, h *Handlers) {
	app.Get("/health", h.Health.Check)

	product := app.Group("/product")
	product.Post("", h.Product.Create)
	product.Get("/:id", h.Product.FindByID)
	product.Put("/:id", h.Product.Replace)
	product.Patch("/:id", h.Product.Patch)
	product.Delete("/:id", h.Product.Delete)
}
