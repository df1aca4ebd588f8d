package router

import (
	"github.com/confessly/confessly/app/controllers"
	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	// Social OAuth (goth flow lives outside the JSON API group)
	app.Get("/auth/:provider", gothfiber.BeginAuthHandler)
	app.Get("/auth/:provider/callback", controllers.HandleOAuthCallback)
	app.Get("/logout/:provider", controllers.HandleOAuthLogout)

	// Short share URLs
	app.Get("/c/:sharelink", controllers.HandleConfessionShareLink)
}
