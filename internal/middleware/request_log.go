package middleware

import (
	"time"

	"storefront/internal/metrics"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const (
	HeaderRequestID = "X-Request-ID"
	CtxRequestIDKey = "request_id"
)

// RequestLogger はリクエストIDを振って、1リクエスト1行でログを出す。
func RequestLogger(log *logrus.Entry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			rid := c.Request().Header.Get(HeaderRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Set(CtxRequestIDKey, rid)
			c.Response().Header().Set(HeaderRequestID, rid)

			err := next(c)
			if err != nil {
				// echo のエラーハンドラでステータスを確定させる
				c.Error(err)
			}

			status := c.Response().Status
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			metrics.RecordHTTPRequest(c.Request().Method, route, status)

			entry := log.WithFields(logrus.Fields{
				"request_id": rid,
				"method":     c.Request().Method,
				"path":       c.Request().URL.Path,
				"status":     status,
				"latency_ms": time.Since(start).Milliseconds(),
			})
			switch {
			case status >= 500:
				entry.WithError(err).Error("request")
			case status >= 400:
				entry.Warn("request")
			default:
				entry.Debug("request")
			}
			return nil
		}
	}
}
