package handler

import (
	"github.com/gin-gonic/gin"

	"educareer/backend/internal/api/middleware"
	"educareer/backend/internal/model"
	"educareer/backend/pkg/jwt"
	"educareer/backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	s := c.GetString(middleware.CtxUserID)
	if s == "" {
		response.Unauthorized(c, response.CodeUnauthorized, "Not authenticated")
		return "", false
	}
	return s, true
}

// MustGetClaims 提取当前请求的 Token 声明（注销时使用）
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(middleware.CtxClaims)
	if !exists {
		response.Unauthorized(c, response.CodeUnauthorized, "Not authenticated")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, response.CodeUnauthorized, "Not authenticated")
		return nil, false
	}
	return claims, true
}

// CurrentUser 中间件加载的用户记录；未认证时返回 nil
func CurrentUser(c *gin.Context) *model.User {
	v, exists := c.Get(middleware.CtxUser)
	if !exists {
		return nil
	}
	u, _ := v.(*model.User)
	return u
}
