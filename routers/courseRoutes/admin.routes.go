package courseRoutes

import (
	controllers "coursehub/controllers/course"
	"coursehub/middleware"
	validators "coursehub/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up the admin course management routes.
func SetupAdminCourseRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin/courses", middleware.JWTMiddleware, middleware.AdminOnly())

	adminGroup.Post("/", validators.Course(), controllers.CreateCourse)
	adminGroup.Get("/", validators.List(), controllers.ListCourses)
	adminGroup.Post("/import", validators.ImportFile(), controllers.ImportCourses)

	adminGroup.Get("/:courseId", controllers.GetCourse)
	adminGroup.Put("/:courseId", validators.Course(), controllers.UpdateCourse)
	adminGroup.Delete("/:courseId", controllers.DeleteCourse)
	adminGroup.Patch("/:courseId/activate", controllers.ActivateCourse)
	adminGroup.Patch("/:courseId/deactivate", controllers.DeactivateCourse)
}
