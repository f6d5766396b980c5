package courseValidator

import (
	"coursehub/middleware"
	"coursehub/models"
	"coursehub/validators/rules"
	"encoding/json"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Locals keys.
const (
	LocalCourse     = "validatedCourse"
	LocalBrochure   = "validatedBrochure"
	LocalListQuery  = "validatedCourseList"
	LocalSearch     = "validatedSearch"
	LocalPage       = "validatedPage"
	LocalImportFile = "validatedImportFile"
)

const maxUploadSize = 10 * 1024 * 1024

var brochureExtensions = map[string]bool{".pdf": true, ".jpg": true, ".jpeg": true, ".png": true}

var importExtensions = map[string]bool{".xlsx": true, ".xlsm": true, ".csv": true}

// CourseRequest is the create and update body. It arrives either as JSON or
// as multipart form data, where countryPricing is a JSON string. Pointer
// fields tell a missing value apart from a zero one.
type CourseRequest struct {
	CourseName         *string                `json:"courseName" form:"courseName"`
	Description        *string                `json:"description" form:"description"`
	Mentor             *string                `json:"mentor" form:"mentor"`
	ServiceType        *string                `json:"serviceType" form:"serviceType"`
	StartDate          *string                `json:"startDate" form:"startDate" validate:"omitempty,date"`
	EndDate            *string                `json:"endDate" form:"endDate" validate:"omitempty,date"`
	Price              *float64               `json:"price" form:"price"`
	DiscountPercentage *float64               `json:"discountPercentage" form:"discountPercentage"`
	CourseImage        *string                `json:"courseImage" form:"courseImage"`
	Brochure           *models.Brochure       `json:"brochure" form:"-"`
	DifficultyLevel    *string                `json:"difficultyLevel" form:"difficultyLevel"`
	Duration           *string                `json:"duration" form:"duration"`
	MaxParticipants    *int                   `json:"maxParticipants" form:"maxParticipants"`
	Language           *string                `json:"language" form:"language"`
	StartTime          *string                `json:"startTime" form:"startTime"`
	EndTime            *string                `json:"endTime" form:"endTime"`
	BatchType          *string                `json:"batchType" form:"batchType"`
	CourseType         *string                `json:"courseType" form:"courseType"`
	Address            *string                `json:"address" form:"address"`
	IsActive           *bool                  `json:"isActive" form:"isActive"`
	CountryPricing     *[]models.CountryPrice `json:"countryPricing" form:"-"`
	CountryPricingJSON string                 `json:"-" form:"countryPricing"`

	// Parsed dates, filled by the validator.
	Start *time.Time `json:"-" form:"-"`
	End   *time.Time `json:"-" form:"-"`
}

type ListQuery struct {
	Search      string `query:"search"`
	Mentor      string `query:"mentor"`
	ServiceType string `query:"serviceType"`
	IsActive    string `query:"isActive" validate:"omitempty,oneof=true false"`
	Page        int    `query:"page" validate:"omitempty,min=1"`
	Limit       int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

type PageQuery struct {
	Page  int `query:"page" validate:"omitempty,min=1"`
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}

type SearchQuery struct {
	Q     string `query:"q"`
	Page  int    `query:"page" validate:"omitempty,min=1"`
	Limit int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

// Course validates a create or update body and an optional brochure file.
func Course() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CourseRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body!", nil)
		}

		if raw := strings.TrimSpace(reqData.CountryPricingJSON); raw != "" {
			var pricing []models.CountryPrice
			if err := json.Unmarshal([]byte(raw), &pricing); err != nil {
				return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid countryPricing format", nil)
			}
			reqData.CountryPricing = &pricing
		}

		errors := rules.Check(reqData)
		if errors == nil {
			errors = map[string]string{}
		}
		if reqData.StartDate != nil {
			reqData.Start, _ = rules.OptionalDate(*reqData.StartDate)
		}
		if reqData.EndDate != nil {
			reqData.End, _ = rules.OptionalDate(*reqData.EndDate)
		}

		if file, err := c.FormFile("brochure"); err == nil {
			ext := strings.ToLower(filepath.Ext(file.Filename))
			switch {
			case !brochureExtensions[ext]:
				errors["brochure"] = "Only .pdf, .jpg, .jpeg, and .png files are allowed!"
			case file.Size > maxUploadSize:
				errors["brochure"] = "Brochure must be at most 10MB"
			default:
				c.Locals(LocalBrochure, file)
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals(LocalCourse, reqData)
		return c.Next()
	}
}

func List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ListQuery)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters!", nil)
		}
		if errors := rules.Check(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals(LocalListQuery, reqData)
		return c.Next()
	}
}

func Page() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(PageQuery)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters!", nil)
		}
		if errors := rules.Check(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals(LocalPage, reqData)
		return c.Next()
	}
}

// Search leaves the minimum query length to the catalog service.
func Search() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SearchQuery)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters!", nil)
		}
		if errors := rules.Check(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals(LocalSearch, reqData)
		return c.Next()
	}
}

// ImportFile requires a spreadsheet upload in the "file" field.
func ImportFile() fiber.Handler {
	return func(c *fiber.Ctx) error {
		file, err := c.FormFile("file")
		if err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Excel file is required", nil)
		}
		if !importExtensions[strings.ToLower(filepath.Ext(file.Filename))] {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Only .xlsx or .csv files are allowed", nil)
		}
		if file.Size > maxUploadSize {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "File must be at most 10MB", nil)
		}
		c.Locals(LocalImportFile, file)
		return c.Next()
	}
}

// BrochureFile returns the validated brochure upload, if any.
func BrochureFile(c *fiber.Ctx) *multipart.FileHeader {
	file, _ := c.Locals(LocalBrochure).(*multipart.FileHeader)
	return file
}
