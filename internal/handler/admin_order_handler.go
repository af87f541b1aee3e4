package handler

import (
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/i18n"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 管理者の請求操作
type AdminOrderHandler struct {
	uc   *usecase.BillUsecase
	lang languageSource
}

// DI
func NewAdminOrderHandler(uc *usecase.BillUsecase, lang languageSource) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc, lang: lang}
}

func (h *AdminOrderHandler) RegisterRoutes(e *echo.Echo) {
	admin := e.Group("/admin/bills", middleware.RequireRole(string(model.RoleAdmin)))

	admin.GET("", h.list)
	admin.PUT("/:id/status", h.updateStatus)
	admin.DELETE("/:id", h.delete)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	list, err := h.uc.AdminList(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, billViews(list, i18n.New(h.lang.Language())))
}

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req usecase.AdminUpdateBillStatusInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.AdminUpdateStatus(c.Request().Context(), id, req); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}

func (h *AdminOrderHandler) delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.AdminDelete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}
