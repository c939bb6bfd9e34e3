package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"educareer/backend/internal/model"
	"educareer/backend/internal/service"
	"educareer/backend/pkg/jwt"
	"educareer/backend/pkg/response"
)

// 认证信息在 gin.Context 中的键
const (
	CtxUserID = "user_id"
	CtxUser   = "user"
	CtxClaims = "claims"
)

// Authenticator JWTAuth 依赖的鉴权能力（service.AuthService 实现）
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, *jwt.Claims, error)
}

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取 Token，解析并加载用户，
// 用户与声明只注入当前请求的上下文
func JWTAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, response.CodeUnauthorized, "No token, authorization denied")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Unauthorized(c, response.CodeUnauthorized, "Invalid authorization header")
			c.Abort()
			return
		}

		user, claims, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			switch {
			case errors.Is(err, service.ErrTokenRevoked):
				response.Unauthorized(c, response.CodeUnauthorized, "Token has been revoked")
			case errors.Is(err, service.ErrUserNotFound):
				response.Unauthorized(c, response.CodeUnauthorized, "User not found")
			default:
				response.Unauthorized(c, response.CodeUnauthorized, "Token is not valid")
			}
			c.Abort()
			return
		}

		c.Set(CtxUserID, user.UserID)
		c.Set(CtxUser, user)
		c.Set(CtxClaims, claims)

		c.Next()
	}
}
