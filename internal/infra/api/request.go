package api

import (
	"net/http"
	"time"
)

// BodyType はボディのエンコード方法。
type BodyType int

const (
	BodyJSON BodyType = iota // オブジェクトをJSON
	BodyForm                 // multipart/form-data
	BodyRaw                  // プリミティブをそのままJSON（42, "pi_123"）
)

// Request は1回のAPI呼び出し。
type Request struct {
	Path     string
	Method   string
	Body     any
	BodyType BodyType
	Params   map[string]any
	WithAuth bool
	Headers  http.Header

	// 0 / nil ならExecutorの既定値
	Timeout time.Duration
	Retries *int
}

// Retries は Request.Retries 用のヘルパー。
func Retries(n int) *int {
	return &n
}
