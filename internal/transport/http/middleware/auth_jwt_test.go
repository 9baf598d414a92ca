package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyhub/internal/core/auth"
	"storyhub/internal/domain"
	resp "storyhub/internal/transport/http/response"
)

type stubResolver struct {
	user *domain.User
	err  error
}

func (s *stubResolver) Resolve(context.Context, string) (*domain.User, error) {
	return s.user, s.err
}

func doAuthed(t *testing.T, r *stubResolver, requireAdmin bool, token string) resp.Resp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	e := gin.New()
	e.Use(AuthJWT(r, requireAdmin))
	e.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, resp.OK(gin.H{"ok": 1})) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var out resp.Resp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestAuthJWTTokenFailures(t *testing.T) {
	// 缺 token → 401
	out := doAuthed(t, &stubResolver{}, false, "")
	assert.Equal(t, resp.CodeUnauthorized, out.Code)

	// token 无效/过期 → 401
	for _, e := range []error{auth.ErrTokenInvalid, auth.ErrTokenExpired} {
		out = doAuthed(t, &stubResolver{err: e}, false, "tok")
		assert.Equal(t, resp.CodeUnauthorized, out.Code)
	}
}

// 存储层故障不是认证失败：必须报 500，不能让客户端误以为要重新登录
func TestAuthJWTStorageFailureIsServerError(t *testing.T) {
	out := doAuthed(t, &stubResolver{err: errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")}, false, "tok")
	assert.Equal(t, resp.CodeServerError, out.Code)

	// 管理端同样
	out = doAuthed(t, &stubResolver{err: errors.New("driver: bad connection")}, true, "tok")
	assert.Equal(t, resp.CodeServerError, out.Code)
}

func TestAuthJWTAdminGate(t *testing.T) {
	regular := &domain.User{ID: "u1", Username: "alice"}
	out := doAuthed(t, &stubResolver{user: regular}, true, "tok")
	assert.Equal(t, resp.CodeForbidden, out.Code)

	admin := &domain.User{ID: "a1", Username: "admin", IsAdmin: true}
	out = doAuthed(t, &stubResolver{user: admin}, true, "tok")
	assert.Equal(t, resp.CodeOK, out.Code)
}
