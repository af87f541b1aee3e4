package middleware

import (
	"net/http"

	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey   = "user_id"   // int64
	CtxUserRoleKey = "user_role" // string
)

// Session は保存済みトークンのクレームを読んで context に入れる。
// 署名の検証はストアAPI側なので、ここでは拒否しない。
func Session(tokens repository.TokenRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := tokens.Token(c.Request().Context())
			if !ok {
				return next(c)
			}

			s, err := usecase.ParseSession(token)
			if err != nil {
				return next(c)
			}

			//contextへ保存
			c.Set(CtxUserIDKey, s.UserID)
			c.Set(CtxUserRoleKey, string(s.Role))

			return next(c)
		}
	}
}

// RequireLogin は Session が user_id を入れていなければ 401。
func RequireLogin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := c.Get(CtxUserIDKey).(int64)
			if !ok || id <= 0 {
				return c.JSON(http.StatusUnauthorized, loginRequired())
			}
			return next(c)
		}
	}
}

type errorResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

func loginRequired() errorResponse {
	return errorResponse{Error: "login required", Redirect: "/login"}
}
