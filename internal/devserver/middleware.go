package devserver

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/houzhh15/recetas/pkg/metrics"
)

const (
	ctxRequestID = "request_id"
	ctxUser      = "user"
)

// anonymous 未携带令牌时的身份；可写，所有者为空
var anonymous = User{Rol: RoleChef}

// RequestLogger 写入结构化请求日志并注入 request_id
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(ctxRequestID, reqID)
		c.Writer.Header().Set("X-Request-ID", reqID)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordServerRequest(route, c.Request.Method, strconv.Itoa(c.Writer.Status()))

		log.Info("http_request",
			"rid", reqID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

// Authenticate 解析 Bearer 令牌并注入当前用户
//
// 令牌无效一律 401；缺少令牌时 required 为 true 返回 401，否则以匿名身份继续
func Authenticate(tokens *TokenIssuer, store *Store, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if required {
				unauthorizedResponse(c, "missing token")
				c.Abort()
				return
			}
			c.Set(ctxUser, anonymous)
			c.Next()
			return
		}

		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			unauthorizedResponse(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := tokens.ParseToken(tokenStr)
		if err != nil {
			unauthorizedResponse(c, "invalid token")
			c.Abort()
			return
		}
		u, found := store.User(claims.Email)
		if !found {
			unauthorizedResponse(c, "unknown user")
			c.Abort()
			return
		}
		c.Set(ctxUser, u)
		c.Next()
	}
}

// currentUser 获取当前用户
func currentUser(c *gin.Context) User {
	if v, exists := c.Get(ctxUser); exists {
		if u, ok := v.(User); ok {
			return u
		}
	}
	return anonymous
}
