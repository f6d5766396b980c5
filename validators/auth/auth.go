package authValidator

import (
	"coursehub/middleware"
	"coursehub/models"
	"coursehub/validators/rules"

	"github.com/gofiber/fiber/v2"
)

// Locals keys.
const (
	LocalLogin    = "validatedLogin"
	LocalSignup   = "validatedSignup"
	LocalProfile  = "validatedProfile"
	LocalPassword = "validatedPassword"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Name            string `json:"name" validate:"max=255"`
	Email           string `json:"email"`
	Mobile          string `json:"mobile" validate:"omitempty,numeric,min=10,max=15"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	AcceptTerms     bool   `json:"acceptTerms"`
}

type AdminProfileRequest struct {
	Name       string `json:"name" validate:"max=255"`
	Phone      string `json:"phone" validate:"omitempty,max=32"`
	Department string `json:"department" validate:"max=255"`
}

type ParticipantProfileRequest struct {
	Name              string          `json:"name" validate:"max=255"`
	Mobile            string          `json:"mobile" validate:"omitempty,numeric,min=10,max=15"`
	Organization      string          `json:"organization" validate:"max=255"`
	Designation       string          `json:"designation" validate:"max=255"`
	YearsOfExperience *int            `json:"yearsOfExperience" validate:"omitempty,min=0,max=80"`
	Address           *models.Address `json:"address"`
}

type PasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// body parses and validates the JSON body into T and stores it under key.
// Required fields and password rules are enforced by the auth service so
// its messages reach the client unchanged.
func body[T any](key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(T)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body!", nil)
		}
		if errs := rules.Check(reqData); len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}
		c.Locals(key, reqData)
		return c.Next()
	}
}

func Login() fiber.Handler { return body[LoginRequest](LocalLogin) }

func Signup() fiber.Handler { return body[SignupRequest](LocalSignup) }

func AdminProfile() fiber.Handler { return body[AdminProfileRequest](LocalProfile) }

func ParticipantProfile() fiber.Handler { return body[ParticipantProfileRequest](LocalProfile) }

func ChangePassword() fiber.Handler { return body[PasswordRequest](LocalPassword) }
