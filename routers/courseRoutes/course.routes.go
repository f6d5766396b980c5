package courseRoutes

import (
	controllers "coursehub/controllers/course"
	validators "coursehub/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up the public catalog routes.
func SetupCourseRoutes(app *fiber.App) {
	userGroup := app.Group("/user/courses")

	userGroup.Get("/", validators.List(), controllers.PublicCourses)
	userGroup.Get("/search", validators.Search(), controllers.SearchCourses)
	userGroup.Get("/type/:serviceType", validators.Page(), controllers.CoursesByType)
	userGroup.Get("/:courseId", controllers.CourseDetails)
	userGroup.Get("/:courseId/reviews", validators.Page(), controllers.CourseReviews)
}
