// Package api is the request executor for the storefront REST API.
//
// It builds requests (query params, JSON/multipart/raw bodies, bearer
// token), applies a per-attempt timeout, retries network errors and
// timeouts with exponential backoff and normalizes the
// {success, message, data, errors, details} envelope.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"storefront/internal/metrics"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const (
	DefaultTimeout    = 15 * time.Second
	DefaultRetryDelay = 300 * time.Millisecond
)

// TokenStore は保存済みの bearer トークンへのアクセス。
type TokenStore interface {
	Token(ctx context.Context) (string, bool)
	ClearToken(ctx context.Context) error
}

// Requester は Executor の抽象（リポジトリのテスト用）。
type Requester interface {
	Execute(ctx context.Context, req Request) (Response, error)
}

// Response は正規化済みのレスポンス。
// JSONなら Data、JSONでなければ Text（空ボディは "OK"）。
type Response struct {
	Status    int
	Data      json.RawMessage
	Text      string
	Message   string
	Enveloped bool
}

type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenStore
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
	Logger     *logrus.Entry
}

type Executor struct {
	baseURL    string
	client     *http.Client
	tokens     TokenStore
	timeout    time.Duration
	retries    int
	retryDelay time.Duration
	log        *logrus.Entry

	sleep func(ctx context.Context, d time.Duration) error
}

func New(cfg Config) (*Executor, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("api: BaseURL is required")
	}
	if cfg.Retries < 0 {
		return nil, errors.New("api: Retries must be >= 0")
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
			},
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Executor{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		client:     client,
		tokens:     cfg.Tokens,
		timeout:    timeout,
		retries:    cfg.Retries,
		retryDelay: delay,
		log:        log.WithField("component", "api"),
		sleep:      sleepCtx,
	}, nil
}

// Execute は1回の論理リクエストを実行する（必要ならリトライする）。
func (e *Executor) Execute(ctx context.Context, req Request) (Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	fullURL := e.baseURL + req.Path
	if qs := EncodeParams(req.Params).Encode(); qs != "" {
		fullURL += "?" + qs
	}

	payload, contentType, err := encodeBody(req.Body, req.BodyType)
	if err != nil {
		return Response{}, &Error{Kind: KindValidation, Message: "invalid request body", Err: err}
	}

	headers := http.Header{}
	headers.Set("Accept", contentTypeJSON)
	headers.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		headers.Set("Content-Type", contentType)
	}

	// トークン必須なのに無ければ送らずに失敗
	if req.WithAuth {
		token, ok := e.token(ctx)
		if !ok {
			return Response{}, authorizationError()
		}
		headers.Set("Authorization", "Bearer "+token)
	}
	for k, vs := range req.Headers {
		headers[http.CanonicalHeaderKey(k)] = vs
	}

	timeout := e.timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	retries := e.retries
	if req.Retries != nil && *req.Retries >= 0 {
		retries = *req.Retries
	}

	log := e.log.WithFields(logrus.Fields{
		"method":     method,
		"path":       req.Path,
		"request_id": headers.Get("X-Request-ID"),
	})

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			// base × 2^(n) （n は0始まりのリトライ回数）
			delay := e.retryDelay << (attempt - 1)
			metrics.RecordAPIRetry()
			log.WithFields(logrus.Fields{"attempt": attempt, "delay": delay}).WithError(lastErr).Warn("retrying request")
			if err := e.sleep(ctx, delay); err != nil {
				lastErr = &Error{Kind: KindNetwork, Message: "request cancelled", Err: err}
				break
			}
		}

		resp, err := e.attempt(ctx, method, fullURL, headers, payload, timeout, req.WithAuth)
		if err == nil {
			metrics.RecordAPIRequest(method, resp.Status, time.Since(start))
			log.WithField("status", resp.Status).Debug("request done")
			return resp, nil
		}
		lastErr = err

		ae, ok := AsError(err)
		if !ok || !ae.Kind.Retryable() || ctx.Err() != nil {
			break
		}
	}

	status := 0
	if ae, ok := AsError(lastErr); ok {
		status = ae.Status
	}
	metrics.RecordAPIRequest(method, status, time.Since(start))
	log.WithField("status", status).WithError(lastErr).Info("request failed")
	return Response{}, lastErr
}

func (e *Executor) attempt(
	ctx context.Context,
	method, fullURL string,
	headers http.Header,
	payload []byte,
	timeout time.Duration,
	withAuth bool,
) (Response, error) {
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	hr, err := http.NewRequestWithContext(actx, method, fullURL, body)
	if err != nil {
		return Response{}, &Error{Kind: KindValidation, Message: "invalid request", Err: err}
	}
	hr.Header = headers.Clone()

	res, err := e.client.Do(hr)
	if err != nil {
		return Response{}, transportError(ctx, actx, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return Response{}, transportError(ctx, actx, err)
	}

	return e.decode(ctx, res.StatusCode, res.Header.Get("Content-Type"), raw, withAuth)
}

func (e *Executor) decode(ctx context.Context, status int, contentType string, raw []byte, withAuth bool) (Response, error) {
	ok := status >= 200 && status < 300

	// 401: トークンを消して終了（リトライしない）
	if status == http.StatusUnauthorized && withAuth {
		if e.tokens != nil {
			if err := e.tokens.ClearToken(ctx); err != nil {
				e.log.WithError(err).Warn("clear token failed")
			}
		}
		return Response{}, authorizationError()
	}

	// JSON以外（204・ファイルなど）はエンベロープを通さない
	if status == http.StatusNoContent || !isJSON(contentType) {
		text := string(raw)
		if !ok {
			msg := text
			if msg == "" {
				msg = statusMessage(status)
			}
			return Response{}, &Error{Kind: kindForStatus(status), Status: status, Message: msg, Errors: []string{msg}}
		}
		if text == "" {
			text = "OK"
		}
		return Response{Status: status, Text: text}, nil
	}

	if !gjson.ValidBytes(raw) {
		msg := "invalid JSON response"
		return Response{}, &Error{Kind: KindInvalidResponse, Status: status, Message: msg, Errors: []string{msg}}
	}

	env, enveloped := parseEnvelope(raw)
	if !enveloped {
		// ラップされていないエンドポイントは生JSONをそのままデータとして扱う
		if ok {
			return Response{Status: status, Data: json.RawMessage(raw)}, nil
		}
		msg, errs := rawErrorMessage(raw)
		if msg == "" {
			msg = statusMessage(status)
		}
		if len(errs) == 0 {
			errs = []string{msg}
		}
		return Response{}, &Error{Kind: kindForStatus(status), Status: status, Message: msg, Errors: errs}
	}

	if !ok || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = statusMessage(status)
		}
		errs := env.Errors
		if errs == nil {
			errs = env.Details
		}
		if errs == nil {
			errs = []string{msg}
		}
		kind := kindForStatus(status)
		if ok {
			kind = KindValidation
		}
		return Response{}, &Error{Kind: kind, Status: status, Message: msg, Errors: errs, Details: env.Details}
	}

	return Response{Status: status, Data: env.Data, Message: env.Message, Enveloped: true}, nil
}

func (e *Executor) token(ctx context.Context) (string, bool) {
	if e.tokens == nil {
		return "", false
	}
	t, ok := e.tokens.Token(ctx)
	if !ok || strings.TrimSpace(t) == "" {
		return "", false
	}
	return t, true
}

// transportError は通信エラーをタイムアウトとそれ以外に分ける。
func transportError(parent, attempt context.Context, err error) error {
	if parent.Err() != nil {
		return &Error{Kind: KindNetwork, Message: "request cancelled", Err: err}
	}
	var ne net.Error
	if errors.Is(attempt.Err(), context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return &Error{Kind: KindTimeout, Message: "request timed out", Err: err}
	}
	return &Error{Kind: KindNetwork, Message: err.Error(), Err: err}
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(contentType, "application/json")
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do は Execute してデータを T にデコードする。
// データが無い場合は T のゼロ値。T が string なら非JSONのテキストを返す。
func Do[T any](ctx context.Context, r Requester, req Request) (T, error) {
	var out T
	resp, err := r.Execute(ctx, req)
	if err != nil {
		return out, err
	}

	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		if s, ok := any(&out).(*string); ok {
			*s = resp.Text
		}
		return out, nil
	}

	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return out, &Error{Kind: KindInvalidResponse, Status: resp.Status, Message: "unexpected response shape", Err: err}
	}
	return out, nil
}
