package presenters

import (
	"Coffee-Shop-Backend/domain"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SuccessResponse writes {"success": true, ...payload}.
func SuccessResponse(c *fiber.Ctx, statusCode int, payload fiber.Map) error {
	body := fiber.Map{"success": true}
	for key, value := range payload {
		body[key] = value
	}
	return c.Status(statusCode).JSON(body)
}

// ErrorResponse writes {"success": false, "error": statusCode, "message": message}.
func ErrorResponse(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"success": false,
		"error":   statusCode,
		"message": message,
	})
}

func AuthErrorResponse(c *fiber.Ctx, err *domain.AuthError) error {
	return ErrorResponse(c, err.StatusCode(), err.Message)
}

// ErrorHandler renders errors that escape handlers and middleware in the
// same body shape as handler errors.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var authErr *domain.AuthError
		if errors.As(err, &authErr) {
			return AuthErrorResponse(c, authErr)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ErrorResponse(c, fiberErr.Code, messageFor(fiberErr))
		}

		logger.Error("unhandled error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageInternalServerError)
	}
}

func messageFor(err *fiber.Error) string {
	switch err.Code {
	case fiber.StatusNotFound:
		return domain.MessageResourceNotFound
	case fiber.StatusUnprocessableEntity:
		return domain.MessageUnprocessable
	case fiber.StatusMethodNotAllowed:
		return domain.MessageMethodNotAllowed
	case fiber.StatusTooManyRequests:
		return domain.MessageTooManyRequests
	case fiber.StatusInternalServerError:
		return domain.MessageInternalServerError
	default:
		return err.Message
	}
}
