package server

import (
	"context"
	"mediastore-checkout/internal/handler"
	authmw "mediastore-checkout/internal/middleware"
	"mediastore-checkout/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo               *echo.Echo
	jwtSecret          []byte
	orderHandler       *handler.OrderHandler
	paymentHandler     *handler.PaymentHandler
	entitlementHandler *handler.EntitlementHandler
}

func NewServer(
	cartService service.CartService,
	checkoutService service.CheckoutService,
	entitlementService service.EntitlementService,
	jwtSecret []byte,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.ErrorHandler

	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:               e,
		jwtSecret:          jwtSecret,
		orderHandler:       handler.NewOrderHandler(cartService, checkoutService),
		paymentHandler:     handler.NewPaymentHandler(checkoutService),
		entitlementHandler: handler.NewEntitlementHandler(entitlementService),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	authed := api.Group("", authmw.AuthMiddleware(s.jwtSecret))

	// -------- cart / orders --------
	orders := authed.Group("/orders")
	orders.GET("/cart", s.orderHandler.GetCart)
	orders.POST("/items", s.orderHandler.AddItem)
	orders.PUT("/items/:itemId", s.orderHandler.UpdateItem)
	orders.DELETE("/items/:itemId", s.orderHandler.RemoveItem)
	orders.POST("/checkout", s.orderHandler.Checkout)

	// -------- payments --------
	authed.POST("/payments/:id/confirm-otp", s.paymentHandler.ConfirmOTP)
	authed.GET("/payment-history", s.paymentHandler.History)

	// -------- entitlements --------
	authed.GET("/entitlements", s.entitlementHandler.List)
	authed.GET("/products/:id/access", s.entitlementHandler.CanAccess)
}

func (s *Server) Handler() *echo.Echo {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
