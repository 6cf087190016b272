package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"shopifly/internal/cart"
	"shopifly/internal/config"
	"shopifly/internal/middleware"
	"shopifly/internal/repository"
	"shopifly/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cartのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

// 数量はjson.Numberで受けて整数だけ通す（1.5のような値は400）。
// addでは省略可で、省略時は1個として扱う。
type AddCartRequest struct {
	ProductID string        `json:"product_id"`
	Quantity  QuantityField `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity json.Number `json:"quantity"`
}

// QuantityField はフィールドの有無を覚えるjson.Number。
// 省略とnullを区別する（nullは指定した上で不正、なので400）。
type QuantityField struct {
	set bool
	num json.Number
}

func (q *QuantityField) UnmarshalJSON(data []byte) error {
	q.set = true
	if string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, &q.num)
}

// Value は省略時にdefを返し、指定時は整数として検証する。
func (q QuantityField) Value(def int64) (int64, error) {
	if !q.set {
		return def, nil
	}
	return parseQuantity(q.num)
}

// /cart, /cart/{productId} を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/cart")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))

	g.GET("", h.getCart)
	g.POST("", h.addToCart)
	g.DELETE("", h.clearCart)
	g.PATCH("/:product_id", h.patchItem)
	g.DELETE("/:product_id", h.deleteItem)
}

func (h *CartHandler) getCart(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.GetCart(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addToCart(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	qty, err := req.Quantity.Value(1)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid quantity"})
	}

	out, err := h.uc.AddToCart(c.Request().Context(), userID, usecase.AddCartInput{
		ProductID: req.ProductID,
		Quantity:  qty,
	})
	return h.writeCart(c, out, err)
}

func (h *CartHandler) patchItem(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	productID := c.Param("product_id")
	if productID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	qty, err := parseQuantity(req.Quantity)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid quantity"})
	}

	out, err := h.uc.UpdateCartItem(c.Request().Context(), userID, productID, usecase.UpdateCartItemInput{
		Quantity: qty,
	})
	return h.writeCart(c, out, err)
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	productID := c.Param("product_id")
	if productID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
	}

	out, err := h.uc.RemoveCartItem(c.Request().Context(), userID, productID)
	return h.writeCart(c, out, err)
}

func (h *CartHandler) clearCart(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ClearCart(c.Request().Context(), userID)
	return h.writeCart(c, out, err)
}

// 永続化書き込みだけ失敗した場合、メモリ上のカートは更新済みなので200で返す。
// 次の操作時に全量を書き直すのでここでは警告ログだけ残す。
func (h *CartHandler) writeCart(c echo.Context, out cart.Snapshot, err error) error {
	if err != nil {
		var pe *cart.PersistError
		if errors.As(err, &pe) {
			c.Logger().Warnf("cart persist failed: %v", pe)
			return c.JSON(http.StatusOK, out)
		}
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 整数のみ許可。小数や数値以外は弾く。
func parseQuantity(n json.Number) (int64, error) {
	if n.String() == "" {
		return 0, errors.New("quantity required")
	}
	return n.Int64()
}
