// Package apiclient 食谱后端 REST API 客户端
//
// 每次调用都会重新读取服务器地址；未配置时直接返回 ErrUnconfigured，不发起网络请求。
// 客户端不做重试，不做退避，失败原样返回给调用方。
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/houzhh15/recetas/pkg/logger"
	"github.com/houzhh15/recetas/pkg/metrics"
)

// DefaultTimeout 单次请求时限，从请求开始计时
const DefaultTimeout = 10 * time.Second

// URLSource 服务器地址来源，由调用方注入
type URLSource interface {
	GetServerURL() (string, bool, error)
}

// TokenSource 登录令牌来源；仅在显式启用时使用
type TokenSource interface {
	Token() (string, bool, error)
}

// Client 食谱 API 客户端，可并发使用
type Client struct {
	source     URLSource
	httpClient *http.Client
	timeout    time.Duration
	tokens     TokenSource
	logger     *slog.Logger
}

// Option 客户端选项
type Option func(*Client)

// WithHTTPClient 替换底层 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout 覆盖请求时限，非正数忽略
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger 注入日志
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTokenSource 在请求中附带 Authorization: Bearer <token>
// 默认不附带：后端契约尚未确定是否需要
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// New 创建客户端
func New(source URLSource, opts ...Option) *Client {
	c := &Client{
		source:     source,
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Timeout 返回当前请求时限
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Do 发送任意请求并返回原始响应体
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	return c.do(ctx, "request", method, path, query, body)
}

// do 解析地址、发送请求、分类错误
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any) (json.RawMessage, error) {
	base, ok, err := c.source.GetServerURL()
	if err != nil {
		return nil, fmt.Errorf("%s: resolve server URL: %w", op, err)
	}
	if !ok {
		metrics.RecordClientRequest(op, metrics.OutcomeUnconfigured)
		return nil, fmt.Errorf("%s: %w", op, ErrUnconfigured)
	}

	target, err := buildURL(base, path, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal request body: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	// 调用方的截止时间更早时，超时不归因于客户端时限
	ownDeadline := true
	if parent, ok := ctx.Deadline(); ok && !parent.After(time.Now().Add(c.timeout)) {
		ownDeadline = false
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		tok, ok, err := c.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("%s: read token: %w", op, err)
		}
		if ok {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	data, status, err := c.roundTrip(req)
	elapsed := time.Since(start)
	metrics.RecordClientDuration(op, elapsed.Seconds())

	if err != nil {
		metrics.RecordClientRequest(op, metrics.OutcomeNetworkError)
		netErr := &NetworkError{Op: op, Err: err}
		if isTimeout(ctx, err) {
			netErr.Timeout = true
			if ownDeadline {
				netErr.Limit = c.timeout
			}
		}
		c.logger.Debug("api_request_failed",
			"rid", reqID,
			"op", op,
			"method", method,
			"url", target,
			"latency_ms", elapsed.Milliseconds(),
			"timeout", netErr.Timeout,
			"error", err,
		)
		return nil, netErr
	}

	c.logger.Debug("api_request",
		"rid", reqID,
		"op", op,
		"method", method,
		"url", target,
		"status", status,
		"latency_ms", elapsed.Milliseconds(),
	)

	if status < 200 || status > 299 {
		metrics.RecordClientRequest(op, metrics.OutcomeHTTPError)
		return nil, &HTTPError{Op: op, Status: status, Body: data, Message: errorMessage(data)}
	}

	metrics.RecordClientRequest(op, metrics.OutcomeSuccess)
	return data, nil
}

// roundTrip 发送请求并完整读取响应体；读取中途超时同样视为网络错误
func (c *Client) roundTrip(req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	return data, resp.StatusCode, nil
}

func buildURL(base, path string, query url.Values) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/") + path)
	if err != nil {
		return "", fmt.Errorf("invalid server URL %q: %w", base, err)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
