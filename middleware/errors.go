package middleware

import (
	"coursehub/apperrors"
	"coursehub/database"
	"coursehub/logger"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HandleError translates a service error into the failure envelope.
func HandleError(c *fiber.Ctx, err error) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) && appErr.Kind != apperrors.Other && appErr.Kind != apperrors.Internal {
		return ErrorResponse(c, appErr.Kind.StatusCode(), appErr.Error(), nil)
	}
	if field := database.DuplicateColumn(err); field != "" {
		return ErrorResponse(c, fiber.StatusBadRequest, field+" already exists", nil)
	}
	switch {
	case database.IsDuplicateKey(err):
		return ErrorResponse(c, fiber.StatusBadRequest, "Duplicate value already exists", nil)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrorResponse(c, fiber.StatusNotFound, "Resource not found", nil)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ErrorResponse(c, fiberErr.Code, fiberErr.Message, nil)
	}

	logger.Error("request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))
	return ErrorResponse(c, fiber.StatusInternalServerError, "Internal Server Error", nil)
}

// ErrorHandler plugs HandleError into fiber.Config.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return HandleError(c, err)
}
