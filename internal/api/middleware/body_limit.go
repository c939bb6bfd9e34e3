package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"educareer/backend/pkg/response"
)

// CodePayloadTooLarge 请求体超限
const CodePayloadTooLarge = 10006

// BodyLimit 请求体大小限制中间件
// 声明的 Content-Length 超限时直接拒绝；否则用 MaxBytesReader 包装，
// 读取越界由 handler 通过 *http.MaxBytesError 识别
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "Request body too large")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
