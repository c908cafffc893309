package devserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// errorResponse 返回错误响应
func errorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"error": message,
	})
}

// notFoundResponse 返回 404 响应
func notFoundResponse(c *gin.Context, resource string) {
	errorResponse(c, http.StatusNotFound, resource+" not found")
}

// badRequestResponse 返回 400 响应
func badRequestResponse(c *gin.Context, message string) {
	errorResponse(c, http.StatusBadRequest, message)
}

// unauthorizedResponse 返回 401 响应
func unauthorizedResponse(c *gin.Context, message string) {
	if message == "" {
		message = "unauthorized"
	}
	errorResponse(c, http.StatusUnauthorized, message)
}

// forbiddenResponse 返回 403 响应
func forbiddenResponse(c *gin.Context, message string) {
	if message == "" {
		message = "forbidden"
	}
	errorResponse(c, http.StatusForbidden, message)
}

// conflictResponse 返回 409 响应
func conflictResponse(c *gin.Context, message string) {
	errorResponse(c, http.StatusConflict, message)
}

// internalErrorResponse 返回 500 响应
func internalErrorResponse(c *gin.Context, message string) {
	errorResponse(c, http.StatusInternalServerError, message)
}
