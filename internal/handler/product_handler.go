package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"storefront/internal/i18n"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error    string   `json:"error"`
	Errors   []string `json:"errors,omitempty"`
	Details  []string `json:"details,omitempty"`
	Redirect string   `json:"redirect,omitempty"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{
			Error:    he.Message,
			Errors:   he.Errors,
			Details:  he.Details,
			Redirect: he.Redirect,
		})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func parseID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

type languageSource interface {
	Language() string
}

// CatalogResponse は一覧。空のときは翻訳済みのメッセージを付ける。
type CatalogResponse struct {
	Items   []usecase.GameView `json:"items"`
	Count   int                `json:"count"`
	Empty   string             `json:"emptyMessage,omitempty"`
	Heading string             `json:"heading"`
}

// /catalog, /products の公開API
type ProductHandler struct {
	catalog  *usecase.CatalogUsecase
	products *usecase.ProductUsecase
	lang     languageSource
}

// DI
func NewProductHandler(catalog *usecase.CatalogUsecase, products *usecase.ProductUsecase, lang languageSource) *ProductHandler {
	return &ProductHandler{catalog: catalog, products: products, lang: lang}
}

// 公開商品のルートを登録
func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/catalog", h.list)
	e.GET("/catalog/genres", h.genres)
	e.GET("/catalog/stream", h.stream)
	e.GET("/products/:id", h.detail)
	e.GET("/products/:id/files", h.files)
}

func (h *ProductHandler) filter(c echo.Context) (usecase.CatalogFilter, error) {
	return usecase.ParseCatalogFilter(
		c.QueryParam("search"),
		c.QueryParam("genre"),
		c.QueryParam("sale"),
		c.QueryParam("sort"),
	)
}

func (h *ProductHandler) response(f usecase.CatalogFilter, items []usecase.GameView) CatalogResponse {
	tr := i18n.New(h.lang.Language())
	out := CatalogResponse{Items: items, Count: len(items), Heading: tr.T(headingKey(f.Sale))}
	if len(items) == 0 {
		out.Items = []usecase.GameView{}
		out.Empty = tr.T("noGames")
	}
	return out
}

func headingKey(s usecase.SaleBucket) string {
	switch s {
	case usecase.Sale50Plus:
		return "off50"
	case usecase.Sale30Plus:
		return "off30"
	case usecase.SaleUnder10:
		return "under10"
	case usecase.SaleFreeOnly:
		return "freeGames"
	default:
		return "allGames"
	}
}

func (h *ProductHandler) list(c echo.Context) error {
	f, err := h.filter(c)
	if err != nil {
		return writeError(c, err)
	}

	items, err := h.catalog.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, h.response(f, items))
}

func (h *ProductHandler) genres(c echo.Context) error {
	out, err := h.catalog.Genres(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// stream は一覧を Server-Sent Events で流す。キャッシュが無効化されるたびに1件。
func (h *ProductHandler) stream(c echo.Context) error {
	f, err := h.filter(c)
	if err != nil {
		return writeError(c, err)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)

	ctx := c.Request().Context()
	for items := range h.catalog.Watch(ctx, f) {
		b, err := json.Marshal(h.response(f, items))
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(res, "event: catalog\ndata: %s\n\n", b); err != nil {
			return nil
		}
		res.Flush()
	}
	return nil
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	p, err := h.catalog.Product(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) files(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.products.Files(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
