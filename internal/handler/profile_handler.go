package handler

import (
	"errors"
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /profile（ログイン必須）
type ProfileHandler struct {
	uc *usecase.ProfileUsecase
}

// DI
func NewProfileHandler(uc *usecase.ProfileUsecase) *ProfileHandler {
	return &ProfileHandler{uc: uc}
}

func (h *ProfileHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/profile", middleware.RequireLogin())

	g.GET("", h.get)
	g.PUT("", h.update)
	g.GET("/products", h.products)
}

func (h *ProfileHandler) get(c echo.Context) error {
	out, err := h.uc.Get(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProfileHandler) products(c echo.Context) error {
	out, err := h.uc.Products(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// multipart: username, email, avatar（任意）
func (h *ProfileHandler) update(c echo.Context) error {
	in := model.UserUpdate{
		Username: c.FormValue("username"),
		Email:    c.FormValue("email"),
	}

	if fh, err := c.FormFile("avatar"); err == nil {
		up, err := readUpload(fh)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid avatar"})
		}
		in.Avatar = &up
	} else if !errors.Is(err, http.ErrMissingFile) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid multipart form"})
	}

	out, err := h.uc.Update(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
