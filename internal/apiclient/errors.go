package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

// ErrUnconfigured 未保存服务器地址，请求未发出
var ErrUnconfigured = errors.New("server URL not set")

// HTTPError 服务器返回了非 2xx 响应
type HTTPError struct {
	Op     string
	Status int
	// Body 服务器返回的原始响应体
	Body []byte
	// Message 响应体中的 error（或 mensaje）字段，没有时为空
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.Status, e.Message)
	}
	if len(e.Body) > 0 {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.Status, truncate(string(e.Body), 200))
	}
	return fmt.Sprintf("%s: HTTP %d", e.Op, e.Status)
}

// DecodeBody 将响应体解析到 v
func (e *HTTPError) DecodeBody(v any) error {
	return json.Unmarshal(e.Body, v)
}

// NetworkError 未收到任何 HTTP 响应：连接失败、DNS 失败、超时或被取消
type NetworkError struct {
	Op      string
	Timeout bool
	// Limit 客户端自身时限到期时的时限；调用方 context 先到期时为 0
	Limit time.Duration
	Err   error
}

func (e *NetworkError) Error() string {
	if e.Timeout {
		if e.Limit > 0 {
			return fmt.Sprintf("%s: request timed out after %s", e.Op, e.Limit)
		}
		return fmt.Sprintf("%s: request deadline exceeded: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// StatusCode 从错误中取出 HTTP 状态码；非 HTTPError 时 ok 为 false
func StatusCode(err error) (int, bool) {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status, true
	}
	return 0, false
}

// IsTimeout 是否为超时导致的失败
func IsTimeout(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne) && ne.Timeout
}

// errorMessage 提取 {"error": "..."} 或 {"mensaje": "..."}，非字符串字段忽略
func errorMessage(body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	for _, key := range []string{"error", "mensaje"} {
		var s string
		if raw, ok := fields[key]; ok && json.Unmarshal(raw, &s) == nil && s != "" {
			return s
		}
	}
	return ""
}

// truncate 按字符截断，不拆分多字节字符
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
