package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"pdao-records/internal/domain"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
		message = fe.Message
	case errors.Is(err, domain.ErrNotFound):
		code, message = fiber.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrInvalidState):
		code, message = fiber.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrMissingReason), errors.Is(err, domain.ErrInvalidInput):
		code, message = fiber.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrForbidden):
		code, message = fiber.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrStoreFailure):
		code, message = fiber.StatusServiceUnavailable, "Storage temporarily unavailable"
	}

	traceID := uuid.New().String()[:8]
	if code >= fiber.StatusInternalServerError {
		log.WithError(err).WithFields(log.Fields{
			"trace_id": traceID,
			"method":   c.Method(),
			"path":     c.Path(),
		}).Error("request failed")
	}

	return c.Status(code).JSON(ErrorResponse{
		Code:    errorCode(code),
		Message: message,
		TraceID: traceID,
	})
}

func errorCode(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusConflict:
		return "CONFLICT"
	case fiber.StatusUnprocessableEntity:
		return "VALIDATION_ERROR"
	case fiber.StatusServiceUnavailable:
		return "SERVICE_UNAVAILABLE"
	default:
		return "INTERNAL_ERROR"
	}
}

func BadRequest(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusBadRequest, message)
}

func Unauthorized(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusUnauthorized, message)
}

func Forbidden(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusForbidden, message)
}
