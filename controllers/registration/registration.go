package registrationController

import (
	"coursehub/database"
	"coursehub/middleware"
	"coursehub/services/registration"
	registrationValidator "coursehub/validators/registration"

	"github.com/gofiber/fiber/v2"
)

func registrationID(c *fiber.Ctx) string {
	return c.Locals(registrationValidator.LocalID).(string)
}

func filter(q *registrationValidator.FilterQuery) registration.Filter {
	return registration.Filter{
		CourseRef:     q.CourseID,
		Status:        q.Status,
		PaymentStatus: q.PaymentStatus,
		Search:        q.Search,
		From:          q.From,
		To:            q.To,
		Page:          q.Page,
		Limit:         q.Limit,
	}
}

// Register enrolls the authenticated participant in a course.
func Register(c *fiber.Ctx) error {
	reqData := c.Locals(registrationValidator.LocalRegister).(*registrationValidator.RegisterRequest)

	reg, err := registration.Register(c.UserContext(), database.Database.Db, middleware.UserID(c), reqData.CourseID)
	if err != nil {
		return middleware.HandleError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Registration successful. Please proceed to payment.", reg)
}

func MyRegistrations(c *fiber.Ctx) error {
	reqData := c.Locals(registrationValidator.LocalMyList).(*registrationValidator.MyListQuery)

	regs, page, err := registration.ListForParticipant(c.UserContext(), database.Database.Db,
		middleware.UserID(c), reqData.Status, reqData.Page, reqData.Limit)
	if err != nil {
		return middleware.HandleError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Registrations retrieved successfully", fiber.Map{
		"registrations": regs,
		"pagination":    page,
	})
}

func MyRegistration(c *fiber.Ctx) error {
	reg, err := registration.GetForParticipant(c.UserContext(), database.Database.Db, middleware.UserID(c), registrationID(c))
	if err != nil {
		return middleware.HandleError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Registration details retrieved successfully", reg)
}

func ProcessPayment(c *fiber.Ctx) error {
	reqData := c.Locals(registrationValidator.LocalPayment).(*registrationValidator.PaymentRequest)

	reg, err := registration.ProcessPayment(c.UserContext(), database.Database.Db, middleware.UserID(c), registrationID(c),
		registration.PaymentInput{
			PaymentMode: reqData.PaymentMode,
			PaymentID:   reqData.PaymentID,
			AmountPaid:  reqData.AmountPaid,
			Currency:    reqData.Currency,
		})
	if err != nil {
		return middleware.HandleError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment processed successfully. Registration confirmed!", reg)
}

func SubmitReview(c *fiber.Ctx) error {
	reqData := c.Locals(registrationValidator.LocalReview).(*registrationValidator.ReviewRequest)

	reg, err := registration.SubmitReview(c.UserContext(), database.Database.Db, middleware.UserID(c), registrationID(c),
		reqData.Rating, reqData.Review)
	if err != nil {
		return middleware.HandleError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Review submitted successfully", reg)
}

func CancelMine(c *fiber.Ctx) error {
	return cancel(c, registration.ParticipantActor(middleware.UserID(c)))
}

func DownloadCertificate(c *fiber.Ctx) error {
	cert, err := registration.Certificate(c.UserContext(), database.Database.Db, middleware.UserID(c), registrationID(c))
	if err != nil {
		return middleware.HandleError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate ready for download", cert)
}

func cancel(c *fiber.Ctx, actor registration.Actor) error {
	reqData := c.Locals(registrationValidator.LocalCancel).(*registrationValidator.CancelRequest)

	_, err := registration.Cancel(c.UserContext(), database.Database.Db, registrationID(c), actor, reqData.Reason)
	if err != nil {
		return middleware.HandleError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Registration cancelled successfully", nil)
}

// ListRegistrations is the admin listing.
func ListRegistrations(c *fiber.Ctx) error {
	reqData := c.Locals(registrationValidator.LocalAdminList).(*registrationValidator.FilterQuery)

	regs, page, err := registration.List(c.UserContext(), database.Database.Db, filter(reqData))
	if err != nil {
		return middleware.HandleError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Registrations retrieved successfully", fiber.Map{
		"registrations": regs,
		"pagination":    page,
	})
}

func RegistrationDetails(c *fiber.Ctx) error {
	reg, err := registration.Get(c.UserContext(), database.Database.Db, registrationID(c))
	if err != nil {
		return middleware.HandleError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Registration details retrieved successfully", reg)
}

func UpdateStatus(c *fiber.Ctx) error {
	reqData := c.Locals(registrationValidator.LocalStatus).(*registrationValidator.StatusRequest)

	reg, err := registration.UpdateStatus(c.UserContext(), database.Database.Db, registrationID(c), middleware.UserID(c),
		registration.StatusUpdate{Status: reqData.Status, Notes: reqData.Notes, Force: reqData.Force})
	if err != nil {
		return middleware.HandleError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Registration status updated successfully", reg)
}

func AdminCancel(c *fiber.Ctx) error {
	return cancel(c, registration.AdminActor(middleware.UserID(c)))
}

func IssueCertificate(c *fiber.Ctx) error {
	reqData := c.Locals(registrationValidator.LocalCertificate).(*registrationValidator.CertificateRequest)

	reg, err := registration.IssueCertificate(c.UserContext(), database.Database.Db, registrationID(c),
		reqData.CertificateURL, reqData.CertificateName)
	if err != nil {
		return middleware.HandleError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate issued successfully", reg)
}

func PaymentDetails(c *fiber.Ctx) error {
	details, err := registration.Payment(c.UserContext(), database.Database.Db, registrationID(c))
	if err != nil {
		return middleware.HandleError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment details retrieved successfully", details)
}

func DashboardStats(c *fiber.Ctx) error {
	stats, err := registration.Stats(c.UserContext(), database.Database.Db)
	if err != nil {
		return middleware.HandleError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard statistics retrieved successfully", stats)
}

// Export streams the filtered registrations as an xlsx attachment.
func Export(c *fiber.Ctx) error {
	reqData := c.Locals(registrationValidator.LocalAdminList).(*registrationValidator.FilterQuery)

	data, err := registration.Export(c.UserContext(), database.Database.Db, filter(reqData))
	if err != nil {
		return middleware.HandleError(c, err)
	}

	c.Set(fiber.HeaderContentType, registration.ExportMIME)
	c.Set(fiber.HeaderContentDisposition, "attachment; filename="+registration.ExportFileName)
	return c.Status(fiber.StatusOK).Send(data)
}
