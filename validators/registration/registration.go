package registrationValidator

import (
	"coursehub/middleware"
	"coursehub/models"
	"coursehub/services/registration"
	"coursehub/validators/rules"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Locals keys.
const (
	LocalRegister    = "validatedRegister"
	LocalPayment     = "validatedPayment"
	LocalReview      = "validatedReview"
	LocalCancel      = "validatedCancel"
	LocalStatus      = "validatedStatus"
	LocalCertificate = "validatedCertificate"
	LocalMyList      = "validatedMyRegistrations"
	LocalAdminList   = "validatedRegistrationFilter"
	LocalID          = "validatedRegistrationId"
)

type RegisterRequest struct {
	CourseID string `json:"courseId"`
}

type PaymentRequest struct {
	PaymentMode string  `json:"paymentMode" validate:"omitempty,paymentMode"`
	PaymentID   string  `json:"paymentId" validate:"max=128"`
	AmountPaid  float64 `json:"amountPaid" validate:"gte=0"`
	Currency    string  `json:"currency" validate:"omitempty,len=3"`
}

type ReviewRequest struct {
	Rating int    `json:"rating"`
	Review string `json:"review" validate:"max=2000"`
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes" validate:"max=2000"`
	Force  bool   `json:"force"`
}

type CertificateRequest struct {
	CertificateURL  string `json:"certificateUrl" validate:"omitempty,url"`
	CertificateName string `json:"certificateName" validate:"max=255"`
}

type MyListQuery struct {
	Status string `query:"status" validate:"omitempty,registrationStatus"`
	Page   int    `query:"page" validate:"omitempty,min=1"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

// FilterQuery drives the admin list and the export.
type FilterQuery struct {
	CourseID      string `query:"courseId"`
	Status        string `query:"status" validate:"omitempty,registrationStatus"`
	PaymentStatus string `query:"paymentStatus" validate:"omitempty,paymentStatus"`
	Search        string `query:"search" validate:"max=255"`
	StartDate     string `query:"startDate" validate:"omitempty,date"`
	EndDate       string `query:"endDate" validate:"omitempty,date"`
	Page          int    `query:"page" validate:"omitempty,min=1"`
	Limit         int    `query:"limit" validate:"omitempty,min=1,max=100"`

	From *time.Time `query:"-"`
	To   *time.Time `query:"-"`
}

func body[T any](key string, optional bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(T)
		if !optional || len(c.Body()) > 0 {
			if err := c.BodyParser(reqData); err != nil {
				return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body!", nil)
			}
		}
		if errors := rules.Check(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals(key, reqData)
		return c.Next()
	}
}

func Register() fiber.Handler { return body[RegisterRequest](LocalRegister, false) }

// Payment checks formats only; missing details are reported by the
// registration service.
func Payment() fiber.Handler { return body[PaymentRequest](LocalPayment, false) }

func Review() fiber.Handler { return body[ReviewRequest](LocalReview, false) }

func Cancel() fiber.Handler { return body[CancelRequest](LocalCancel, true) }

func Certificate() fiber.Handler { return body[CertificateRequest](LocalCertificate, false) }

// Status upper-cases the requested status before handing it on.
func Status() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(StatusRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body!", nil)
		}
		reqData.Status = strings.ToUpper(strings.TrimSpace(reqData.Status))
		if errors := rules.Check(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals(LocalStatus, reqData)
		return c.Next()
	}
}

func MyList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(MyListQuery)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters!", nil)
		}
		if errors := rules.Check(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals(LocalMyList, reqData)
		return c.Next()
	}
}

// Filter parses the admin list and export filters. An endDate covers the
// whole day.
func Filter() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(FilterQuery)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters!", nil)
		}
		if errors := rules.Check(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		reqData.From, _ = rules.OptionalDate(reqData.StartDate)
		if to, _ := rules.OptionalDate(reqData.EndDate); to != nil {
			if len(strings.TrimSpace(reqData.EndDate)) == len("2006-01-02") {
				end := registration.EndOfDay(*to)
				to = &end
			}
			reqData.To = to
		}
		c.Locals(LocalAdminList, reqData)
		return c.Next()
	}
}

// ID rejects registration ids that are not internal ids.
func ID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("registrationId")
		if !models.IsInternalID(id) {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid registration ID", nil)
		}
		c.Locals(LocalID, id)
		return c.Next()
	}
}
