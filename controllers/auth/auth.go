package authController

import (
	"coursehub/database"
	"coursehub/logger"
	"coursehub/middleware"
	"coursehub/models"
	"coursehub/services/auth"
	authValidator "coursehub/validators/auth"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func issueToken(id, role string) (string, error) {
	token, err := middleware.GenerateJWT(id, role)
	if err != nil {
		logger.Error("failed to sign token", zap.String("id", id), zap.Error(err))
	}
	return token, err
}

// AdminLogin authenticates an admin and returns a token.
func AdminLogin(c *fiber.Ctx) error {
	reqData := c.Locals(authValidator.LocalLogin).(*authValidator.LoginRequest)

	admin, err := auth.AdminLogin(c.UserContext(), database.Database.Db, reqData.Email, reqData.Password)
	if err != nil {
		return middleware.HandleError(c, err)
	}
	token, err := issueToken(admin.ID, admin.Role)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}

	logger.Info("admin logged in", zap.String("adminId", admin.ID), zap.String("ip", c.IP()))
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful", fiber.Map{
		"token": token,
		"admin": fiber.Map{
			"id":    admin.ID,
			"name":  admin.Name,
			"email": admin.Email,
			"role":  admin.Role,
		},
	})
}

// AdminLogout is stateless; the client drops its token.
func AdminLogout(c *fiber.Ctx) error {
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Logout successful", nil)
}

func AdminProfile(c *fiber.Ctx) error {
	admin, err := auth.Admin(c.UserContext(), database.Database.Db, middleware.UserID(c))
	if err != nil {
		return middleware.HandleError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile retrieved successfully", admin)
}

func UpdateAdminProfile(c *fiber.Ctx) error {
	reqData := c.Locals(authValidator.LocalProfile).(*authValidator.AdminProfileRequest)

	admin, err := auth.UpdateAdminProfile(c.UserContext(), database.Database.Db, middleware.UserID(c), auth.AdminProfile{
		Name:       reqData.Name,
		Phone:      reqData.Phone,
		Department: reqData.Department,
	})
	if err != nil {
		return middleware.HandleError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated successfully", admin)
}

func ChangeAdminPassword(c *fiber.Ctx) error {
	reqData := c.Locals(authValidator.LocalPassword).(*authValidator.PasswordRequest)

	err := auth.ChangeAdminPassword(c.UserContext(), database.Database.Db, middleware.UserID(c), passwordChange(reqData))
	if err != nil {
		return middleware.HandleError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password changed successfully", nil)
}

// Signup registers a participant and logs them in.
func Signup(c *fiber.Ctx) error {
	reqData := c.Locals(authValidator.LocalSignup).(*authValidator.SignupRequest)

	participant, err := auth.RegisterParticipant(c.UserContext(), database.Database.Db, auth.SignupInput{
		Name:            reqData.Name,
		Email:           reqData.Email,
		Mobile:          reqData.Mobile,
		Password:        reqData.Password,
		ConfirmPassword: reqData.ConfirmPassword,
		AcceptTerms:     reqData.AcceptTerms,
	})
	if err != nil {
		return middleware.HandleError(c, err)
	}
	token, err := issueToken(participant.ID, models.RoleUser)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Registration successful", fiber.Map{
		"token":       token,
		"participant": participantSummary(participant),
	})
}

func Login(c *fiber.Ctx) error {
	reqData := c.Locals(authValidator.LocalLogin).(*authValidator.LoginRequest)

	participant, err := auth.ParticipantLogin(c.UserContext(), database.Database.Db, reqData.Email, reqData.Password)
	if err != nil {
		return middleware.HandleError(c, err)
	}
	token, err := issueToken(participant.ID, models.RoleUser)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}

	logger.Info("participant logged in", zap.String("participantId", participant.ID), zap.String("ip", c.IP()))
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful", fiber.Map{
		"token":       token,
		"participant": participantSummary(participant),
	})
}

func Profile(c *fiber.Ctx) error {
	participant, err := auth.Participant(c.UserContext(), database.Database.Db, middleware.UserID(c))
	if err != nil {
		return middleware.HandleError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile retrieved successfully", participant)
}

func UpdateProfile(c *fiber.Ctx) error {
	reqData := c.Locals(authValidator.LocalProfile).(*authValidator.ParticipantProfileRequest)

	participant, err := auth.UpdateParticipantProfile(c.UserContext(), database.Database.Db, middleware.UserID(c), auth.ParticipantProfile{
		Name:              reqData.Name,
		Mobile:            reqData.Mobile,
		Organization:      reqData.Organization,
		Designation:       reqData.Designation,
		YearsOfExperience: reqData.YearsOfExperience,
		Address:           reqData.Address,
	})
	if err != nil {
		return middleware.HandleError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated successfully", participant)
}

func ChangePassword(c *fiber.Ctx) error {
	reqData := c.Locals(authValidator.LocalPassword).(*authValidator.PasswordRequest)

	err := auth.ChangeParticipantPassword(c.UserContext(), database.Database.Db, middleware.UserID(c), passwordChange(reqData))
	if err != nil {
		return middleware.HandleError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password changed successfully", nil)
}

func passwordChange(r *authValidator.PasswordRequest) auth.PasswordChange {
	return auth.PasswordChange{
		CurrentPassword: r.CurrentPassword,
		NewPassword:     r.NewPassword,
		ConfirmPassword: r.ConfirmPassword,
	}
}

func participantSummary(p *models.Participant) fiber.Map {
	return fiber.Map{"id": p.ID, "name": p.Name, "email": p.Email}
}
