package handler

import (
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/i18n"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 通貨と表示設定
type PreferenceHandler struct {
	currency *usecase.CurrencyUsecase
	settings *usecase.SettingsUsecase
}

// DI
func NewPreferenceHandler(currency *usecase.CurrencyUsecase, settings *usecase.SettingsUsecase) *PreferenceHandler {
	return &PreferenceHandler{currency: currency, settings: settings}
}

func (h *PreferenceHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/currency", h.getCurrency)
	e.GET("/currency/options", h.options)
	e.PUT("/currency", h.selectCurrency)

	e.GET("/settings", h.getSettings)
	e.PUT("/settings", h.updateSettings)
}

type SelectCurrencyRequest struct {
	NameKey string `json:"nameKey"`
}

// CountryOption は選択肢。Label は表示言語の国名。
type CountryOption struct {
	model.Country
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

func (h *PreferenceHandler) getCurrency(c echo.Context) error {
	return c.JSON(http.StatusOK, h.currency.Selected())
}

func (h *PreferenceHandler) options(c echo.Context) error {
	tr := i18n.New(h.settings.Language())
	selected := h.currency.Selected().NameKey

	list := h.currency.Options()
	out := make([]CountryOption, 0, len(list))
	for _, co := range list {
		out = append(out, CountryOption{
			Country:  co,
			Label:    tr.T("countries." + co.NameKey),
			Selected: co.NameKey == selected,
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PreferenceHandler) selectCurrency(c echo.Context) error {
	var req SelectCurrencyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.currency.Select(c.Request().Context(), req.NameKey)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PreferenceHandler) getSettings(c echo.Context) error {
	return c.JSON(http.StatusOK, h.settings.Get())
}

func (h *PreferenceHandler) updateSettings(c echo.Context) error {
	var req usecase.UpdateSettingsInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.settings.Update(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
