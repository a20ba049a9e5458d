package routes

import (
	"Coffee-Shop-Backend/domain"
	"Coffee-Shop-Backend/internal/api/handlers"
	"Coffee-Shop-Backend/internal/api/presenters"
	"Coffee-Shop-Backend/internal/middleware"
	"Coffee-Shop-Backend/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App          *fiber.App
	DrinkHandler handlers.DrinkHandler
	Middleware   middleware.Middleware
	JWTService   jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.GuestRoute()
	c.Drinks()
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return presenters.SuccessResponse(c, fiber.StatusOK, fiber.Map{"message": domain.MessagePong})
	})
}

func (c *Config) Drinks() {
	c.App.Get("/drinks", c.DrinkHandler.GetDrinks)
	c.App.Get("/drinks-detail", c.requires(domain.PermissionGetDrinksDetail), c.DrinkHandler.GetDrinksDetail)
	c.App.Post("/drinks", c.requires(domain.PermissionPostDrinks), c.DrinkHandler.CreateDrink)
	c.App.Patch("/drinks/:id", c.requires(domain.PermissionPatchDrinks), c.DrinkHandler.UpdateDrink)
	c.App.Delete("/drinks/:id", c.requires(domain.PermissionDeleteDrinks), c.DrinkHandler.DeleteDrink)
}

func (c *Config) requires(permission string) fiber.Handler {
	return c.Middleware.AuthMiddleware(c.JWTService, permission)
}
