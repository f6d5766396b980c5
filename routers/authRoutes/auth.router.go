package authRoutes

import (
	"coursehub/config"
	authControllers "coursehub/controllers/auth"
	"coursehub/middleware"
	authValidators "coursehub/validators/auth"

	"github.com/gofiber/fiber/v2"
)

// SetupAuthRoutes registers admin and participant auth routes. Login
// attempts are throttled per IP by limiter.
func SetupAuthRoutes(app *fiber.App, limiter *middleware.RateLimiter) {
	loginLimit := limiter.Limit("login", config.AppConfig.LoginRateLimit, config.AppConfig.LoginRateWindow)

	adminGroup := app.Group("/admin/auth")
	adminGroup.Post("/login", loginLimit, authValidators.Login(), authControllers.AdminLogin)
	adminGroup.Post("/logout", middleware.JWTMiddleware, middleware.AdminOnly(), authControllers.AdminLogout)
	adminGroup.Get("/profile", middleware.JWTMiddleware, middleware.AdminOnly(), authControllers.AdminProfile)
	adminGroup.Put("/profile", middleware.JWTMiddleware, middleware.AdminOnly(), authValidators.AdminProfile(), authControllers.UpdateAdminProfile)
	adminGroup.Put("/change-password", middleware.JWTMiddleware, middleware.AdminOnly(), authValidators.ChangePassword(), authControllers.ChangeAdminPassword)

	userGroup := app.Group("/user/auth")
	userGroup.Post("/register", authValidators.Signup(), authControllers.Signup)
	userGroup.Post("/login", loginLimit, authValidators.Login(), authControllers.Login)
	userGroup.Get("/profile", middleware.JWTMiddleware, middleware.ParticipantOnly(), authControllers.Profile)
	userGroup.Put("/profile", middleware.JWTMiddleware, middleware.ParticipantOnly(), authValidators.ParticipantProfile(), authControllers.UpdateProfile)
	userGroup.Put("/change-password", middleware.JWTMiddleware, middleware.ParticipantOnly(), authValidators.ChangePassword(), authControllers.ChangePassword)
}
