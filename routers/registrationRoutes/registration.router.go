package registrationRoutes

import (
	controllers "coursehub/controllers/registration"
	"coursehub/middleware"
	validators "coursehub/validators/registration"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminRegistrationRoutes registers the admin registration routes.
// Fixed paths come before the :registrationId ones.
func SetupAdminRegistrationRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin/registrations", middleware.JWTMiddleware, middleware.AdminOnly())

	adminGroup.Get("/export", validators.Filter(), controllers.Export)
	adminGroup.Get("/dashboard/statistics", controllers.DashboardStats)
	adminGroup.Get("/", validators.Filter(), controllers.ListRegistrations)
	adminGroup.Get("/detail/:registrationId", validators.ID(), controllers.RegistrationDetails)

	adminGroup.Patch("/:registrationId/status", validators.ID(), validators.Status(), controllers.UpdateStatus)
	adminGroup.Patch("/:registrationId/cancel", validators.ID(), validators.Cancel(), controllers.AdminCancel)
	adminGroup.Post("/:registrationId/certificate", validators.ID(), validators.Certificate(), controllers.IssueCertificate)
	adminGroup.Get("/:registrationId/payment", validators.ID(), controllers.PaymentDetails)
}

// SetupUserRegistrationRoutes registers the participant registration routes.
func SetupUserRegistrationRoutes(app *fiber.App) {
	userGroup := app.Group("/user/registrations", middleware.JWTMiddleware, middleware.ParticipantOnly())

	userGroup.Post("/", validators.Register(), controllers.Register)
	userGroup.Get("/", validators.MyList(), controllers.MyRegistrations)
	userGroup.Get("/:registrationId", validators.ID(), controllers.MyRegistration)
	userGroup.Post("/:registrationId/payment", validators.ID(), validators.Payment(), controllers.ProcessPayment)
	userGroup.Post("/:registrationId/review", validators.ID(), validators.Review(), controllers.SubmitReview)
	userGroup.Patch("/:registrationId/cancel", validators.ID(), validators.Cancel(), controllers.CancelMine)
	userGroup.Get("/:registrationId/certificate", validators.ID(), controllers.DownloadCertificate)
}
