package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type FavoriteHandler struct {
	favorites *usecase.FavoriteUsecase
	catalog   *usecase.CatalogUsecase
}

// DI
func NewFavoriteHandler(favorites *usecase.FavoriteUsecase, catalog *usecase.CatalogUsecase) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites, catalog: catalog}
}

func (h *FavoriteHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/favorites", h.list)
	e.POST("/favorites/:id/toggle", h.toggle)
}

type ToggleFavoriteResponse struct {
	ProductID  int64  `json:"productId"`
	IsFavorite bool   `json:"isFavorite"`
	State      string `json:"state"`
}

// 未ログインなら空の一覧
func (h *FavoriteHandler) list(c echo.Context) error {
	out, err := h.catalog.Favorites(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *FavoriteHandler) toggle(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	on, err := h.favorites.Toggle(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ToggleFavoriteResponse{
		ProductID:  id,
		IsFavorite: on,
		State:      h.favorites.State(id).String(),
	})
}
