package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storyhub/internal/core/auth"
	"storyhub/internal/domain"
	resp "storyhub/internal/transport/http/response"
)

// IdentityResolver 把 token 还原成在库用户（唯一认证咽喉）
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*domain.User, error)
}

// AuthJWT 认证（+ 可选管理员门禁）。失败统一 401，不透出具体原因；
// 已认证但非管理员 → 403。
func AuthJWT(r IdentityResolver, requireAdmin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		u, err := r.Resolve(c.Request.Context(), strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			// 只有 token 本身的问题才算未认证；存储故障是服务端错误，不能伪装成 401
			if errors.Is(err, auth.ErrTokenExpired) || errors.Is(err, auth.ErrTokenInvalid) {
				c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "invalid or expired token"))
				return
			}
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeServerError, "auth backend unavailable"))
			return
		}
		if requireAdmin && !u.IsAdmin {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeForbidden, "forbidden"))
			return
		}
		c.Set("user", u)
		c.Set("userId", u.ID)
		c.Set("username", u.Username)
		c.Set("isAdmin", u.IsAdmin)
		c.Next()
	}
}

// CurrentUser 取出 AuthJWT 放进上下文的用户
func CurrentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get("user"); ok {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}
