package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RequireRole は context の role が一致するか確認する（大文字小文字は無視）。
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id, ok := c.Get(CtxUserIDKey).(int64); !ok || id <= 0 {
				return c.JSON(http.StatusUnauthorized, loginRequired())
			}

			got, _ := c.Get(CtxUserRoleKey).(string)
			if !strings.EqualFold(got, role) {
				return c.JSON(http.StatusForbidden, errorJSON(strings.ToLower(role)+" only"))
			}

			return next(c)
		}
	}
}
