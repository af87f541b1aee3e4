package handler

import (
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/i18n"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /orders（自分の請求）と /checkout
type OrderHandler struct {
	bills    *usecase.BillUsecase
	checkout *usecase.CheckoutUsecase
	lang     languageSource
}

// DI
func NewOrderHandler(bills *usecase.BillUsecase, checkout *usecase.CheckoutUsecase, lang languageSource) *OrderHandler {
	return &OrderHandler{bills: bills, checkout: checkout, lang: lang}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo) {
	auth := middleware.RequireLogin()

	orders := e.Group("/orders", auth)
	orders.GET("", h.listMine)
	orders.GET("/:id", h.detail)

	checkout := e.Group("/checkout", auth)
	checkout.POST("", h.start)
	checkout.POST("/complete", h.complete)
	checkout.POST("/status", h.updateStatus)
}

// BillView は請求に翻訳済みのステータスを付けたもの。
type BillView struct {
	model.Bill
	StatusLabel string `json:"statusLabel"`
}

func billViews(bills []model.Bill, tr *i18n.Translator) []BillView {
	out := make([]BillView, 0, len(bills))
	for _, b := range bills {
		out = append(out, billView(b, tr))
	}
	return out
}

func billView(b model.Bill, tr *i18n.Translator) BillView {
	label := string(b.Status)
	if key := "billStatus." + strings.ToLower(string(b.Status)); tr.Has(key) {
		label = tr.T(key)
	}
	return BillView{Bill: b, StatusLabel: label}
}

func (h *OrderHandler) listMine(c echo.Context) error {
	list, err := h.bills.Mine(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, billViews(list, i18n.New(h.lang.Language())))
}

func (h *OrderHandler) detail(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	b, err := h.bills.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	// 他人の請求は見せない（管理者は除く）
	userID, _ := c.Get(middleware.CtxUserIDKey).(int64)
	role, _ := c.Get(middleware.CtxUserRoleKey).(string)
	if b.UserID != 0 && b.UserID != userID && !strings.EqualFold(role, string(model.RoleAdmin)) {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	}

	return c.JSON(http.StatusOK, billView(b, i18n.New(h.lang.Language())))
}

func (h *OrderHandler) start(c echo.Context) error {
	var req usecase.CheckoutInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.checkout.Start(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) complete(c echo.Context) error {
	var req usecase.CompleteInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.checkout.Complete(c.Request().Context(), req); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "completed"})
}

func (h *OrderHandler) updateStatus(c echo.Context) error {
	var req model.UpdatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.checkout.UpdateStatus(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
