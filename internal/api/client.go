// Package api предоставляет клиент REST-бэкенда приложения заказов.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader передаёт ключ идемпотентности для запросов, создающих заказы.
const IdempotencyKeyHeader = "Idempotency-Key"

const maxErrorBody = 64 << 10

// ErrNotConfigured возвращается, если у клиента не задан адрес бэкенда.
var ErrNotConfigured = errors.New("api client not configured")

// Options задаёт параметры HTTP-клиента.
type Options struct {
	Timeout  time.Duration
	RetryMax int
	Logger   *zap.Logger
}

// Client инкапсулирует HTTP-взаимодействие с бэкендом. Идемпотентные запросы
// повторяются при сетевых ошибках и ответах 5xx, POST отправляется один раз.
type Client struct {
	baseURL string
	retry   *retryablehttp.Client
	logger  *zap.Logger
}

// NewClient создаёт клиент бэкенда по указанному адресу.
func NewClient(baseURL string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.RetryMax < 0 {
		opts.RetryMax = 0
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	base := strings.TrimRight(baseURL, "/")
	if base != "" && !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = opts.Timeout

	rc := retryablehttp.NewClient()
	rc.HTTPClient = httpClient
	rc.RetryMax = opts.RetryMax
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = time.Second
	rc.Logger = leveledLogger{opts.Logger.Sugar()}
	// ответ с ошибкой нужен вызывающему целиком, а не как "giving up after N attempts"
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		baseURL: base,
		retry:   rc,
		logger:  opts.Logger,
	}
}

// Request описывает один вызов бэкенда.
type Request struct {
	Method         string
	Path           string
	Body           any
	IdempotencyKey string
}

// Do выполняет запрос и декодирует тело успешного ответа в out (если out не nil).
// Ответ не из диапазона 2xx возвращается как *RequestError, сбой передачи как *NetworkError.
func (c *Client) Do(ctx context.Context, r Request, out any) error {
	if c == nil || c.baseURL == "" {
		return ErrNotConfigured
	}

	var body []byte
	if r.Body != nil {
		b, err := json.Marshal(r.Body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = b
	}

	url := c.baseURL + r.Path

	resp, err := c.send(ctx, r, url, body)
	if err != nil {
		var cerr *clientError
		if errors.As(err, &cerr) {
			return cerr.err
		}
		return &NetworkError{Method: r.Method, Path: r.Path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		rerr := newRequestError(resp.StatusCode, raw)
		c.logger.Debug("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.Path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", rerr.Message),
		)
		return rerr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Method: r.Method, Path: r.Path, Err: fmt.Errorf("read response: %w", err)}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &DecodeError{Path: r.Path, Err: err}
	}

	return nil
}

// clientError отделяет ошибки построения запроса от сетевых.
type clientError struct{ err error }

func (e *clientError) Error() string { return e.err.Error() }

func (c *Client) send(ctx context.Context, r Request, url string, body []byte) (*http.Response, error) {
	if isIdempotent(r.Method) {
		var rawBody interface{}
		if body != nil {
			rawBody = body
		}
		req, err := retryablehttp.NewRequestWithContext(ctx, r.Method, url, rawBody)
		if err != nil {
			return nil, &clientError{fmt.Errorf("create request: %w", err)}
		}
		setHeaders(req.Header, r, body != nil)
		return c.retry.Do(req)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, url, bytes.NewReader(body))
	if err != nil {
		return nil, &clientError{fmt.Errorf("create request: %w", err)}
	}
	setHeaders(req.Header, r, body != nil)
	return c.retry.HTTPClient.Do(req)
}

func setHeaders(h http.Header, r Request, hasBody bool) {
	h.Set("Accept", "application/json")
	if hasBody {
		h.Set("Content-Type", "application/json")
	}
	if r.IdempotencyKey != "" {
		h.Set(IdempotencyKeyHeader, r.IdempotencyKey)
	}
}

func isIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions:
		return true
	}
	return false
}

type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, keysAndValues...)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.s.Warnw(msg, keysAndValues...)
}
