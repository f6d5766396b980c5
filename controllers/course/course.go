package courseController

import (
	"io"
	"mime/multipart"

	"coursehub/config"
	"coursehub/database"
	"coursehub/logger"
	"coursehub/middleware"
	"coursehub/models"
	"coursehub/services/catalog"
	"coursehub/services/importer"
	"coursehub/utils"
	courseValidator "coursehub/validators/course"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const brochureDir = "brochures"

// storeBrochure saves an uploaded brochure and returns where it is served.
func storeBrochure(file *multipart.FileHeader) (*models.Brochure, error) {
	if file == nil {
		return nil, nil
	}
	rel, err := utils.SaveUploadedFile(file, config.AppConfig.UploadDir, brochureDir)
	if err != nil {
		logger.Error("failed to store brochure", zap.String("file", file.Filename), zap.Error(err))
		return nil, err
	}
	return &models.Brochure{URL: utils.GetFileURL(rel), FileName: file.Filename}, nil
}

func courseInput(r *courseValidator.CourseRequest, createdBy string) catalog.CourseInput {
	in := catalog.CourseInput{
		StartDate:       r.Start,
		EndDate:         r.End,
		Price:           r.Price,
		MaxParticipants: r.MaxParticipants,
		IsActive:        r.IsActive,
		CreatedBy:       createdBy,
	}
	str := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	in.CourseName = str(r.CourseName)
	in.Description = str(r.Description)
	in.Mentor = str(r.Mentor)
	in.ServiceType = str(r.ServiceType)
	in.CourseImage = str(r.CourseImage)
	in.DifficultyLevel = str(r.DifficultyLevel)
	in.Duration = str(r.Duration)
	in.Language = str(r.Language)
	in.StartTime = str(r.StartTime)
	in.EndTime = str(r.EndTime)
	in.BatchType = str(r.BatchType)
	in.CourseType = str(r.CourseType)
	in.Address = str(r.Address)
	if r.DiscountPercentage != nil {
		in.DiscountPercentage = *r.DiscountPercentage
	}
	if r.Brochure != nil {
		in.Brochure = *r.Brochure
	}
	if r.CountryPricing != nil {
		in.CountryPricing = *r.CountryPricing
	}
	return in
}

func coursePatch(r *courseValidator.CourseRequest) catalog.CoursePatch {
	return catalog.CoursePatch{
		CourseName:         r.CourseName,
		Description:        r.Description,
		Mentor:             r.Mentor,
		ServiceType:        r.ServiceType,
		StartDate:          r.Start,
		EndDate:            r.End,
		Price:              r.Price,
		DiscountPercentage: r.DiscountPercentage,
		CourseImage:        r.CourseImage,
		Brochure:           r.Brochure,
		DifficultyLevel:    r.DifficultyLevel,
		Duration:           r.Duration,
		MaxParticipants:    r.MaxParticipants,
		Language:           r.Language,
		StartTime:          r.StartTime,
		EndTime:            r.EndTime,
		BatchType:          r.BatchType,
		CourseType:         r.CourseType,
		Address:            r.Address,
		CountryPricing:     r.CountryPricing,
		IsActive:           r.IsActive,
	}
}

// CreateCourse handles multipart or JSON course creation.
func CreateCourse(c *fiber.Ctx) error {
	reqData := c.Locals(courseValidator.LocalCourse).(*courseValidator.CourseRequest)

	brochure, err := storeBrochure(courseValidator.BrochureFile(c))
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to upload brochure", nil)
	}
	if brochure != nil {
		reqData.Brochure = brochure
	}

	course, err := catalog.Create(c.UserContext(), database.Database.Db, courseInput(reqData, middleware.UserID(c)))
	if err != nil {
		return middleware.HandleError(c, err)
	}

	logger.Info("course created", zap.String("courseId", course.CourseID), zap.String("adminId", middleware.UserID(c)))
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully", course)
}

func UpdateCourse(c *fiber.Ctx) error {
	reqData := c.Locals(courseValidator.LocalCourse).(*courseValidator.CourseRequest)

	brochure, err := storeBrochure(courseValidator.BrochureFile(c))
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to upload brochure", nil)
	}
	if brochure != nil {
		reqData.Brochure = brochure
	}

	course, err := catalog.Update(c.UserContext(), database.Database.Db, c.Params("courseId"), coursePatch(reqData))
	if err != nil {
		return middleware.HandleError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully", course)
}

// ListCourses is the admin listing, active and inactive alike unless
// filtered by isActive.
func ListCourses(c *fiber.Ctx) error {
	reqData := c.Locals(courseValidator.LocalListQuery).(*courseValidator.ListQuery)

	filter := catalog.ListFilter{
		Search:      reqData.Search,
		Mentor:      reqData.Mentor,
		ServiceType: reqData.ServiceType,
		Page:        reqData.Page,
		Limit:       reqData.Limit,
	}
	if reqData.IsActive != "" {
		active := reqData.IsActive == "true"
		filter.IsActive = &active
	}
	return listCourses(c, filter)
}

func listCourses(c *fiber.Ctx, filter catalog.ListFilter) error {
	courses, page, err := catalog.List(c.UserContext(), database.Database.Db, filter)
	if err != nil {
		return middleware.HandleError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses retrieved successfully", fiber.Map{
		"courses":    courses,
		"pagination": page,
	})
}

func GetCourse(c *fiber.Ctx) error {
	course, err := catalog.FindCourse(c.UserContext(), database.Database.Db, c.Params("courseId"))
	if err != nil {
		return middleware.HandleError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course retrieved successfully", course)
}

func DeleteCourse(c *fiber.Ctx) error {
	course, err := catalog.Delete(c.UserContext(), database.Database.Db, c.Params("courseId"))
	if err != nil {
		return middleware.HandleError(c, err)
	}
	logger.Info("course deleted", zap.String("courseId", course.CourseID), zap.String("adminId", middleware.UserID(c)))
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully", nil)
}

func ActivateCourse(c *fiber.Ctx) error {
	return setActive(c, true, "Course activated successfully")
}

func DeactivateCourse(c *fiber.Ctx) error {
	return setActive(c, false, "Course deactivated successfully")
}

func setActive(c *fiber.Ctx, active bool, message string) error {
	course, err := catalog.SetActive(c.UserContext(), database.Database.Db, c.Params("courseId"), active)
	if err != nil {
		return middleware.HandleError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, course)
}

// ImportCourses runs an all-or-nothing spreadsheet import. A rejected batch
// answers 400 with the row errors and stores nothing.
func ImportCourses(c *fiber.Ctx) error {
	file := c.Locals(courseValidator.LocalImportFile).(*multipart.FileHeader)

	src, err := file.Open()
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Unable to read the uploaded file", nil)
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Unable to read the uploaded file", nil)
	}

	rows, err := importer.ReadRows(data, file.Filename)
	if err != nil {
		return middleware.HandleError(c, err)
	}

	report, err := importer.Import(c.UserContext(), database.Database.Db, rows, importer.Options{
		Checker:         importer.NewHTTPChecker(config.AppConfig.BrochureCheckTimeout),
		DefaultCapacity: config.AppConfig.ImportDefaultCapacity,
		CreatedBy:       middleware.UserID(c),
	})
	if err != nil {
		return middleware.HandleError(c, err)
	}
	if report.Rejected() {
		logger.Warn("course import rejected",
			zap.String("file", file.Filename),
			zap.Int("rows", report.TotalRows),
			zap.Int("failed", report.FailedCount))
		return middleware.ErrorResponse(c, fiber.StatusBadRequest,
			"Import failed due to errors in data (All or Nothing policy)", report.Errors)
	}

	logger.Info("courses imported",
		zap.String("file", file.Filename),
		zap.Int("imported", report.ImportedCount),
		zap.String("by", middleware.UserID(c)))
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses imported successfully", report)
}

// PublicCourses lists active courses only.
func PublicCourses(c *fiber.Ctx) error {
	reqData := c.Locals(courseValidator.LocalListQuery).(*courseValidator.ListQuery)

	active := true
	return listCourses(c, catalog.ListFilter{
		Search:      reqData.Search,
		Mentor:      reqData.Mentor,
		ServiceType: reqData.ServiceType,
		IsActive:    &active,
		Page:        reqData.Page,
		Limit:       reqData.Limit,
	})
}

func SearchCourses(c *fiber.Ctx) error {
	reqData := c.Locals(courseValidator.LocalSearch).(*courseValidator.SearchQuery)

	courses, page, err := catalog.Search(c.UserContext(), database.Database.Db, reqData.Q, reqData.Page, reqData.Limit)
	if err != nil {
		return middleware.HandleError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Search results retrieved successfully", fiber.Map{
		"courses":    courses,
		"query":      reqData.Q,
		"pagination": page,
	})
}

func CoursesByType(c *fiber.Ctx) error {
	reqData := c.Locals(courseValidator.LocalPage).(*courseValidator.PageQuery)

	courses, page, err := catalog.ListByType(c.UserContext(), database.Database.Db, c.Params("serviceType"), reqData.Page, reqData.Limit)
	if err != nil {
		return middleware.HandleError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses retrieved successfully", fiber.Map{
		"courses":    courses,
		"pagination": page,
	})
}

func CourseDetails(c *fiber.Ctx) error {
	details, err := catalog.Details(c.UserContext(), database.Database.Db, c.Params("courseId"))
	if err != nil {
		return middleware.HandleError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course details retrieved successfully", details)
}

func CourseReviews(c *fiber.Ctx) error {
	reqData := c.Locals(courseValidator.LocalPage).(*courseValidator.PageQuery)

	reviews, page, err := catalog.Reviews(c.UserContext(), database.Database.Db, c.Params("courseId"), reqData.Page, reqData.Limit)
	if err != nil {
		return middleware.HandleError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course reviews retrieved successfully", fiber.Map{
		"reviews":    reviews,
		"pagination": page,
	})
}
