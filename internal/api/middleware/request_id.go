package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"educareer/backend/pkg/events"
)

// CtxRequestID 请求 ID 在 gin.Context 中的键
const CtxRequestID = "request_id"

// requestIDMaxLen 限制外部传入的 Request-ID 最大长度，防止日志注入
const requestIDMaxLen = 64

// RequestID 请求追踪 ID 中间件
// 从请求头 X-Request-ID 读取，若不存在则自动生成 UUID。
// 同时写入 request context，异步任务据此关联日志
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" || len(rid) > requestIDMaxLen {
			rid = uuid.New().String()
		}

		c.Set(CtxRequestID, rid)
		c.Header("X-Request-ID", rid)
		c.Request = c.Request.WithContext(events.WithRequestID(c.Request.Context(), rid))

		c.Next()
	}
}
