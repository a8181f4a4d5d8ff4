package handler

import (
	"mediastore-checkout/internal/dto"
	"mediastore-checkout/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	cartService     service.CartService
	checkoutService service.CheckoutService
}

func NewOrderHandler(cartService service.CartService, checkoutService service.CheckoutService) *OrderHandler {
	return &OrderHandler{
		cartService:     cartService,
		checkoutService: checkoutService,
	}
}

func (h *OrderHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	order, err := h.cartService.GetCart(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.CartResponse{Cart: order})
}

func (h *OrderHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	var req dto.AddItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	order, err := h.cartService.AddItem(ctx, userID, req.ProductID, req.Quantity)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	itemID, err := idParam(c, "itemId")
	if err != nil {
		return err
	}

	var req dto.UpdateItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	item, order, err := h.cartService.UpdateItemQuantity(ctx, userID, itemID, *req.Quantity)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.UpdateItemResponse{Item: item, Order: order})
}

func (h *OrderHandler) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	itemID, err := idParam(c, "itemId")
	if err != nil {
		return err
	}

	order, err := h.cartService.RemoveItem(ctx, userID, itemID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.CartResponse{Cart: order})
}

func (h *OrderHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	var req dto.CheckoutRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.checkoutService.Checkout(ctx, userID, req.OrderID, req.Provider)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}
