package handler

import (
	"net/http"

	"shopifly/internal/cart"
	"shopifly/internal/config"
	"shopifly/internal/invoice"
	"shopifly/internal/middleware"
	"shopifly/internal/repository"
	"shopifly/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /ordersのHTTP
type OrderHandler struct {
	uc    *usecase.OrderUsecase
	carts *cart.Manager
}

// DI
func NewOrderHandler(uc *usecase.OrderUsecase, carts *cart.Manager) *OrderHandler {
	return &OrderHandler{uc: uc, carts: carts}
}

type PlaceOrderRequest struct {
	ShipName       string `json:"ship_name"`
	ShipPostalCode string `json:"ship_postal_code"`
	ShipPrefecture string `json:"ship_prefecture"`
	ShipCity       string `json:"ship_city"`
	ShipLine1      string `json:"ship_line1"`
	ShipLine2      string `json:"ship_line2"`
	ShipPhone      string `json:"ship_phone"`
}

// /orders を登録
func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/orders")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))

	g.POST("", h.placeOrder)
	g.GET("", h.listMyOrders)
	g.GET("/:id", h.getMyOrder)
	g.GET("/:id/invoice", h.downloadInvoice)
}

func (h *OrderHandler) placeOrder(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	//同じキーの再送は同じ注文を返す
	idemKey := c.Request().Header.Get("X-Idempotency-Key")
	if idemKey == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "X-Idempotency-Key required"})
	}

	var req PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	//このユーザーのカートストア
	store, err := h.carts.ForSession(userID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.PlaceOrder(c.Request().Context(), userID, store, usecase.PlaceOrderInput{
		Shipping: usecase.ShippingInput{
			Name:       req.ShipName,
			PostalCode: req.ShipPostalCode,
			Prefecture: req.ShipPrefecture,
			City:       req.ShipCity,
			Line1:      req.ShipLine1,
			Line2:      req.ShipLine2,
			Phone:      req.ShipPhone,
		},
		IdempotencyKey: idemKey,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) listMyOrders(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ListMyOrders(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) getMyOrder(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	orderID := c.Param("id")
	if orderID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.GetMyOrderDetail(c.Request().Context(), userID, orderID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) downloadInvoice(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	orderID := c.Param("id")
	if orderID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	order, items, err := h.uc.FindMyOrderWithItems(c.Request().Context(), userID, orderID)
	if err != nil {
		return writeError(c, err)
	}

	pdf, err := invoice.Render(order, items)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="invoice-`+orderID+`.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
