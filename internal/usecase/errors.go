package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"storefront/internal/infra/api"
	"storefront/internal/querycache"
	repo "storefront/internal/repository"
)

// HTTPError はハンドラでそのままレスポンスにするエラー。
type HTTPError struct {
	Status   int
	Message  string
	Errors   []string // フィールドごとのメッセージ
	Details  []string
	Redirect string // 401 のとき "/login"
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// ErrLoginRequired はログインが必要な操作をトークン無しで呼んだとき。
var ErrLoginRequired = &HTTPError{
	Status:   http.StatusUnauthorized,
	Message:  "login required",
	Redirect: "/login",
}

// fromAPIError はストアAPIのエラーをUI向けの HTTPError に変換する。
func fromAPIError(err error, fallback string) error {
	if err == nil {
		return nil
	}
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	if errors.Is(err, querycache.ErrSkipped) {
		return ErrLoginRequired
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return NewHTTPError(http.StatusServiceUnavailable, "request cancelled")
	}

	ae, ok := api.AsError(err)
	if !ok {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, fallback)
	}

	he := &HTTPError{Message: ae.Message, Errors: ae.Errors, Details: ae.Details}
	if he.Message == "" {
		he.Message = fallback
	}

	switch ae.Kind {
	case api.KindAuthorization:
		he.Status = http.StatusUnauthorized
		if ae.Status == http.StatusForbidden {
			he.Status = http.StatusForbidden
		} else {
			he.Redirect = "/login"
		}
	case api.KindValidation:
		he.Status = http.StatusBadRequest
		if ae.Status == http.StatusConflict || ae.Status == http.StatusUnprocessableEntity {
			he.Status = ae.Status
		}
	case api.KindNotFound:
		he.Status = http.StatusNotFound
	case api.KindTimeout:
		he.Status = http.StatusGatewayTimeout
	case api.KindNetwork:
		he.Status = http.StatusServiceUnavailable
	default:
		// サーバエラー・不正なレスポンス
		he.Status = http.StatusBadGateway
	}
	return he
}
