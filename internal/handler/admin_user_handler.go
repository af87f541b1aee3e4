package handler

import (
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminUserHandler struct {
	uc *usecase.ProfileUsecase
}

func NewAdminUserHandler(uc *usecase.ProfileUsecase) *AdminUserHandler {
	return &AdminUserHandler{uc: uc}
}

func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo) {
	admin := e.Group("/admin/users", middleware.RequireRole(string(model.RoleAdmin)))

	admin.GET("", h.list)
	admin.GET("/:id", h.get)
	admin.DELETE("/:id", h.delete)
}

func (h *AdminUserHandler) list(c echo.Context) error {
	out, err := h.uc.AdminListUsers(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminUserHandler) get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user_id"})
	}

	out, err := h.uc.AdminGetUser(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminUserHandler) delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user_id"})
	}

	actorID, _ := c.Get(middleware.CtxUserIDKey).(int64)
	if err := h.uc.AdminDeleteUser(c.Request().Context(), actorID, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}
