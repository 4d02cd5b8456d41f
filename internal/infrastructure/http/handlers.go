package httpapi

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	paymentApplication "github.com/rcarvalho-pb/payment_gateway-go/internal/application/payment"
	"github.com/rcarvalho-pb/payment_gateway-go/internal/domain/payment"
	"github.com/rcarvalho-pb/payment_gateway-go/internal/infra/logging"
)

type PaymentService interface {
	Process(ctx context.Context, suppliedID string, req payment.Request) (payment.Outcome, error)
	Lookup(id string) (*payment.Record, error)
}

type PaymentHandler struct {
	Service PaymentService
	Logger  logging.Logger
}

func (h *PaymentHandler) ProcessPayment(c *fiber.Ctx) error {
	var req PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	outcome, err := h.Service.Process(c.UserContext(), c.Get(IdempotencyHeader), req.toDomain())
	switch {
	case errors.Is(err, paymentApplication.ErrDuplicatePayment):
		return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{Error: "Duplicate request detected"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return c.Status(fiber.StatusRequestTimeout).JSON(ErrorResponse{Error: "request cancelled"})
	case err != nil:
		h.Logger.Error("payment processing failed", map[string]any{
			"error": err.Error(),
		})
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "internal error"})
	}

	switch o := outcome.(type) {
	case payment.Done:
		return c.Status(fiber.StatusOK).JSON(newPaymentResponse(o.Record))
	case payment.Rejected:
		return c.Status(fiber.StatusBadRequest).JSON(newRejectedResponse(o))
	}

	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "internal error"})
}

func (h *PaymentHandler) GetPayment(c *fiber.Ctx) error {
	rec, err := h.Service.Lookup(c.Params("id"))
	if errors.Is(err, payment.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "payment not found"})
	}
	if err != nil {
		h.Logger.Error("payment lookup failed", map[string]any{
			"payment-id": c.Params("id"),
			"error":      err.Error(),
		})
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "internal error"})
	}

	return c.Status(fiber.StatusOK).JSON(newPaymentResponse(*rec))
}
