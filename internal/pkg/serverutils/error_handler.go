package serverutils

import (
	"ai-journaling-be/internal/pkg/apperrors"

	"github.com/gofiber/fiber/v2"
)

type errorBody struct {
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// ErrorHandlerMiddleware converts errors returned from handlers into JSON
// responses. Typed app errors keep their status code and retryable flag;
// anything else is a generic 500.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		if appErr, ok := apperrors.AsAppError(err); ok {
			return ctx.Status(appErr.Code).JSON(errorBody{
				Message:   appErr.Error(),
				Retryable: appErr.Retryable,
			})
		}

		if fiberErr, ok := err.(*fiber.Error); ok {
			return ctx.Status(fiberErr.Code).JSON(errorBody{
				Message:   fiberErr.Message,
				Retryable: fiberErr.Code >= 500,
			})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(errorBody{
			Message:   err.Error(),
			Retryable: true,
		})
	}
}
