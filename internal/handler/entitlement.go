package handler

import (
	"mediastore-checkout/internal/dto"
	"mediastore-checkout/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

type EntitlementHandler struct {
	entitlementService service.EntitlementService
}

func NewEntitlementHandler(entitlementService service.EntitlementService) *EntitlementHandler {
	return &EntitlementHandler{
		entitlementService: entitlementService,
	}
}

func (h *EntitlementHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	entitlements, err := h.entitlementService.List(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, entitlements)
}

func (h *EntitlementHandler) CanAccess(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	productID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	ok, err := h.entitlementService.CanAccess(ctx, userID, productID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.AccessResponse{ProductID: productID, CanAccess: ok})
}
