package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/chainraise/backend/internal/apperrors"
	"github.com/chainraise/backend/internal/http/dto"
	"github.com/chainraise/backend/internal/middleware"
)

// respondError maps the error taxonomy onto HTTP statuses. Typed errors
// reach the caller instead of being swallowed; only the shape, not the
// upstream detail, leaks for gateway failures.
func respondError(c *fiber.Ctx, err error) error {
	reqID, _ := c.Locals(middleware.CtxRequestID).(string)

	var (
		validationErr *apperrors.ValidationError
		txErr         *apperrors.TransactionError
		readErr       *apperrors.ReadError
	)

	switch {
	case errors.Is(err, apperrors.ErrInFlight):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: err.Error(), RequestID: reqID})
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: validationErr.Error(), RequestID: reqID})
	case errors.As(err, &txErr):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: txErr.Error(), RequestID: reqID})
	case errors.As(err, &readErr):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: "ledger read failed", RequestID: reqID})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error", RequestID: reqID})
	}
}
