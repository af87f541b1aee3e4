package server

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/repository"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Handlers はルートを持つハンドラ一式。
type Handlers struct {
	Auth         *handler.AuthHandler
	Product      *handler.ProductHandler
	AdminProduct *handler.AdminProductHandler
	Cart         *handler.CartHandler
	Favorite     *handler.FavoriteHandler
	Preference   *handler.PreferenceHandler
	Profile      *handler.ProfileHandler
	Order        *handler.OrderHandler
	AdminOrder   *handler.AdminOrderHandler
	AdminUser    *handler.AdminUserHandler
}

// NewRouter は echo にミドルウェアと全ルートを登録する。
func NewRouter(h Handlers, tokens repository.TokenRepository, log *logrus.Entry) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.Session(tokens))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	h.Auth.RegisterRoutes(e)
	h.Product.RegisterRoutes(e)
	h.AdminProduct.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e)
	h.Favorite.RegisterRoutes(e)
	h.Preference.RegisterRoutes(e)
	h.Profile.RegisterRoutes(e)
	h.Order.RegisterRoutes(e)
	h.AdminOrder.RegisterRoutes(e)
	h.AdminUser.RegisterRoutes(e)

	return e
}
