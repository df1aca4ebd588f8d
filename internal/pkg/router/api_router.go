package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/confessly/confessly/app/controllers"
	"github.com/confessly/confessly/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group("/v1")

	// Anonymous account auth
	auth := v1.Group("/auth")
	auth.Post("/register", controllers.HandleAuthRegister)
	auth.Post("/login", controllers.HandleAuthLogin)
	auth.Post("/logout", middleware.RequireAuth, controllers.HandleAuthLogout)

	// Token ledger
	v1.Post("/tokens", middleware.RequireAuth, controllers.HandleClaimDailyReward)
	v1.Get("/tokens", middleware.RequireAuth, controllers.HandleGetBalance)

	// Admin ledger operations
	admin := v1.Group("/admin", middleware.RequireAdmin)
	admin.Post("/tokens", controllers.HandleAdminGrantTokens)
	admin.Delete("/tokens", controllers.HandleAdminResetTokens)

	// Cosmetics
	users := v1.Group("/users", middleware.RequireAuth)
	users.Post("/username-color", controllers.HandleSetUsernameColor)
	users.Get("/username-color", controllers.HandleGetUsernameColor)
	users.Post("/change-username", controllers.HandleChangeUsername)

	// Confessions
	v1.Post("/confessions", middleware.RequireAuth, controllers.HandleCreateConfession)
	v1.Get("/confessions", controllers.HandleListConfessions)
	v1.Get("/confessions/:uuid", controllers.HandleGetConfession)

	// Public site counters
	v1.Get("/stats", controllers.HandleGetStatistics)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
