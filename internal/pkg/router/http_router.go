package router

import (
	"github.com/confessly/confessly/app/controllers"
	"github.com/confessly/confessly/internal/pkg/middleware"
	"github.com/confessly/confessly/internal/pkg/oauth"
	"github.com/confessly/confessly/internal/pkg/session"

	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// init oauth providers
	oauth.Setup()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	// Initialize controllers with their services
	controllers.InitializeTokenController()
	controllers.InitializeCosmeticController()

	h.registerPublicRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
