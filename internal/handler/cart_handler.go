package handler

import (
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/i18n"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type currencySource interface {
	Selected() model.Country
}

// /cartのHTTP。ログイン不要（カートは端末ごと）。
type CartHandler struct {
	uc       *usecase.CartUsecase
	currency currencySource
	lang     languageSource
}

// DI
func NewCartHandler(uc *usecase.CartUsecase, currency currencySource, lang languageSource) *CartHandler {
	return &CartHandler{uc: uc, currency: currency, lang: lang}
}

type AddCartRequest struct {
	ProductID int64 `json:"productId"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// /cart, /cart/{id} を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/cart")

	g.GET("", h.getCart)
	g.POST("", h.addToCart)
	g.DELETE("", h.clear)
	g.PATCH("/:id", h.patchItem)
	g.POST("/:id/gift", h.toggleGift)
	g.DELETE("/:id", h.deleteItem)
}

// 変更後は毎回いまの通貨で合計を返す
func (h *CartHandler) summary(c echo.Context) error {
	tr := i18n.New(h.lang.Language())
	return c.JSON(http.StatusOK, h.uc.Summary(h.currency.Selected(), tr.Tag()))
}

func (h *CartHandler) getCart(c echo.Context) error {
	return h.summary(c)
}

func (h *CartHandler) addToCart(c echo.Context) error {
	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if _, err := h.uc.AddProduct(c.Request().Context(), req.ProductID); err != nil {
		return writeError(c, err)
	}
	return h.summary(c)
}

func (h *CartHandler) patchItem(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	h.uc.SetQuantity(c.Request().Context(), id, req.Quantity)
	return h.summary(c)
}

func (h *CartHandler) toggleGift(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	h.uc.ToggleGiftFlag(c.Request().Context(), id)
	return h.summary(c)
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	h.uc.RemoveItem(c.Request().Context(), id)
	return h.summary(c)
}

func (h *CartHandler) clear(c echo.Context) error {
	h.uc.Clear(c.Request().Context())
	return h.summary(c)
}
