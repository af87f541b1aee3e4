package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
)

// Kind はAPIエラーの分類。
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindTimeout
	KindAuthorization
	KindValidation
	KindNotFound
	KindServer
	KindInvalidResponse
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindAuthorization:
		return "authorization"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	case KindInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// Retryable は一時的なエラー（通信エラー・タイムアウト）だけ true。
func (k Kind) Retryable() bool {
	return k == KindNetwork || k == KindTimeout
}

// ErrAuthorizationRequired はトークンが無い/401 のとき Error.Err に入る。
var ErrAuthorizationRequired = errors.New("authorization required")

// Error はエンベロープの message / errors / details を保持する。
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Errors  []string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (%d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError は err から *Error を取り出す。
func AsError(err error) (*Error, bool) {
	var ae *Error
	ok := errors.As(err, &ae)
	return ae, ok
}

func IsKind(err error, kind Kind) bool {
	ae, ok := AsError(err)
	return ok && ae.Kind == kind
}

func authorizationError() *Error {
	msg := ErrAuthorizationRequired.Error()
	return &Error{
		Kind:    KindAuthorization,
		Status:  http.StatusUnauthorized,
		Message: msg,
		Errors:  []string{msg},
		Err:     ErrAuthorizationRequired,
	}
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuthorization
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusNotFound:
		return KindNotFound
	default:
		return KindServer
	}
}

func statusMessage(status int) string {
	if t := http.StatusText(status); t != "" {
		return t
	}
	return fmt.Sprintf("HTTP %d", status)
}
