package middleware

import (
	"coursehub/database"
	"coursehub/logger"
	"coursehub/models"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminOnly admits active admins and super admins. It must run after
// JWTMiddleware.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminID := UserID(c)
		if adminID == "" {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "No user found in request", nil)
		}
		if Role(c) == models.RoleUser {
			return JsonResponse(c, fiber.StatusForbidden, false, "Insufficient permissions", nil)
		}

		var admin models.Admin
		err := database.Database.Db.WithContext(c.UserContext()).First(&admin, "id = ?", adminID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return JsonResponse(c, fiber.StatusNotFound, false, "Admin not found", nil)
			}
			logger.Error("admin lookup failed", zap.String("adminId", adminID), zap.Error(err))
			return JsonResponse(c, fiber.StatusInternalServerError, false, "Server error while checking permissions!", nil)
		}
		if !admin.IsActive {
			return JsonResponse(c, fiber.StatusForbidden, false, "Admin account is inactive", nil)
		}
		if !admin.CanManage() {
			return JsonResponse(c, fiber.StatusForbidden, false, "Insufficient permissions", nil)
		}
		return c.Next()
	}
}

// ParticipantOnly admits tokens issued to participants.
func ParticipantOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if UserID(c) == "" {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "No user found in request", nil)
		}
		if Role(c) != models.RoleUser {
			return JsonResponse(c, fiber.StatusForbidden, false, "Access denied", nil)
		}
		return c.Next()
	}
}
