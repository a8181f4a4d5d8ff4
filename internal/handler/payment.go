package handler

import (
	"mediastore-checkout/internal/dto"
	"mediastore-checkout/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	checkoutService service.CheckoutService
}

func NewPaymentHandler(checkoutService service.CheckoutService) *PaymentHandler {
	return &PaymentHandler{
		checkoutService: checkoutService,
	}
}

// ConfirmOTP answers 200 for a wrong code; the body says "failed".
func (h *PaymentHandler) ConfirmOTP(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	paymentID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.ConfirmOTPRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.checkoutService.ConfirmOTP(ctx, userID, paymentID, req.OTP)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) History(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	payments, err := h.checkoutService.History(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, payments)
}
