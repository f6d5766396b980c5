package routers

import (
	"coursehub/config"
	"coursehub/middleware"
	authRoutes "coursehub/routers/authRoutes"
	courseRoutes "coursehub/routers/courseRoutes"
	registrationRoutes "coursehub/routers/registrationRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

const bodyLimit = 12 * 1024 * 1024

// NewApp builds the fiber app with every route registered.
func NewApp(limiter *middleware.RateLimiter) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
		BodyLimit:    bodyLimit,
		UnescapePath: true,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: config.AppConfig.CORSOrigin,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	if !config.AppConfig.IsProduction() {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
		}))
	}

	// Uploaded brochures
	app.Static("/uploads", config.AppConfig.UploadDir)

	app.Get("/health", func(c *fiber.Ctx) error {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Server is running", nil)
	})

	authRoutes.SetupAuthRoutes(app, limiter)
	courseRoutes.SetupAdminCourseRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	registrationRoutes.SetupAdminRegistrationRoutes(app)
	registrationRoutes.SetupUserRegistrationRoutes(app)

	return app
}
